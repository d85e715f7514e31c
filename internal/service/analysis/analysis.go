package analysis

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"solarsight/internal/drawing"
	"solarsight/internal/model"
)

// Analysis is the in-memory aggregate of one address analysis: resolved
// location, provider data, the drawing session and the derived numbers.
type Analysis struct {
	ID          string               `json:"id"`
	Address     string               `json:"address"`
	Location    model.GeoPoint       `json:"location"`
	CountryCode string               `json:"country_code"`
	Status      model.AnalysisStatus `json:"status"`

	Insights *model.BuildingInsights `json:"insights,omitempty"`
	Rate     model.ElectricityRate   `json:"rate"`

	Session    drawing.Session           `json:"session"`
	Metrics    model.ZoneMetrics         `json:"metrics"`
	Projection model.FinancialProjection `json:"projection"`

	// Generation guards against stale asynchronous results: a price
	// response resolved after a newer Analyze call is discarded.
	Generation uint64 `json:"generation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToPG flattens the analysis into its PostgreSQL snapshot.
func (a *Analysis) ToPG() *model.AnalysisPG {
	return &model.AnalysisPG{
		ID:          a.ID,
		Address:     a.Address,
		CountryCode: a.CountryCode,
		Lat:         a.Location.Lat,
		Lng:         a.Location.Lng,
		Status:      a.Status,
		Geometry:    a.geometryJSON(),

		AreaMeters2:        a.Metrics.AreaMeters2,
		NumberOfPanels:     a.Metrics.NumberOfPanels,
		PeakPowerKwc:       a.Metrics.PeakPowerKwc,
		EstimatedEnergyKwh: a.Metrics.EstimatedEnergyKwh,
		NetBenefit25Years:  a.Projection.NetBenefit25Years,
		CarbonOffsetKgYear: a.Projection.CarbonOffsetKgYear,
		PricePerKwh:        a.Projection.PricePerKwh,
		PriceIsFallback:    a.Projection.PriceIsFallback,

		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// geometryJSON renders the drawn polygon with its holes as a GeoJSON string.
// Empty when nothing was drawn.
func (a *Analysis) geometryJSON() string {
	if !a.Session.HasPolygon() {
		return ""
	}

	polygon := orb.Polygon{model.RingFromPoints(a.Session.Points)}
	for _, hole := range a.Session.Holes {
		polygon = append(polygon, model.RingFromPoints(hole))
	}

	raw, err := json.Marshal(geojson.NewGeometry(polygon))
	if err != nil {
		return ""
	}
	return string(raw)
}
