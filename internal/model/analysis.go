package model

import (
	"time"

	"gorm.io/gorm"
)

// AnalysisStatus represents the lifecycle of an address analysis
type AnalysisStatus int

const (
	AnalysisStatusPending AnalysisStatus = iota
	AnalysisStatusReady
	AnalysisStatusFailed
)

// AnalysisPG is the GORM snapshot of an analysis for PostgreSQL storage.
// Geometry is stored as a GeoJSON polygon string, the same shape the session
// publishes to the display layer.
type AnalysisPG struct {
	ID          string         `gorm:"primaryKey"`
	Address     string         `gorm:"size:512;not null"`
	CountryCode string         `gorm:"size:8"`
	Lat         float64        `gorm:"not null"`
	Lng         float64        `gorm:"not null"`
	Status      AnalysisStatus `gorm:"not null"`
	Geometry    string         `gorm:"type:text"`

	AreaMeters2        float64
	NumberOfPanels     int
	PeakPowerKwc       float64
	EstimatedEnergyKwh float64
	NetBenefit25Years  float64
	CarbonOffsetKgYear float64
	PricePerKwh        float64
	PriceIsFallback    bool

	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name
func (AnalysisPG) TableName() string {
	return "analyses"
}
