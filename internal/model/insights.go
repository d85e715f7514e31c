package model

import "time"

// RoofSegmentStats describes one planar piece of roof as reported by the
// building insights provider: uniform pitch/azimuth, its area and a quantile
// distribution of annual sunshine hours.
type RoofSegmentStats struct {
	PitchDegrees      float64   `json:"pitch_degrees"`
	AzimuthDegrees    float64   `json:"azimuth_degrees"`
	AreaMeters2       float64   `json:"area_meters2"`
	SunshineQuantiles []float64 `json:"sunshine_quantiles"`
	Center            GeoPoint  `json:"center"`
	BoundsSW          GeoPoint  `json:"bounds_sw"`
	BoundsNE          GeoPoint  `json:"bounds_ne"`
}

// HighQuantile returns the high-percentile sunshine bucket used for the
// efficiency ratio. The top bucket is skipped because it only holds outliers.
func (s RoofSegmentStats) HighQuantile() float64 {
	n := len(s.SunshineQuantiles)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return s.SunshineQuantiles[0]
	}
	return s.SunshineQuantiles[n-2]
}

// SolarPanelConfig is one whole-roof panel layout reported by the provider.
type SolarPanelConfig struct {
	PanelsCount       int     `json:"panels_count"`
	YearlyEnergyDcKwh float64 `json:"yearly_energy_dc_kwh"`
}

// BuildingInsights is the in-memory model of a building insights response.
type BuildingInsights struct {
	Center                     GeoPoint           `json:"center"`
	BoundsSW                   GeoPoint           `json:"bounds_sw"`
	BoundsNE                   GeoPoint           `json:"bounds_ne"`
	MaxArrayAreaMeters2        float64            `json:"max_array_area_meters2"`
	MaxArrayAnnualEnergyKwh    float64            `json:"max_array_annual_energy_kwh"`
	MaxSunshineHoursPerYear    float64            `json:"max_sunshine_hours_per_year"`
	CarbonOffsetFactorKgPerMwh float64            `json:"carbon_offset_factor_kg_per_mwh"`
	RoofSegments               []RoofSegmentStats `json:"roof_segments"`
	PanelConfigs               []SolarPanelConfig `json:"panel_configs"`
	ImageryDate                time.Time          `json:"imagery_date"`
	ImageryQuality             string             `json:"imagery_quality"`
}

// HasSolarPotential reports whether the response carries enough data to
// analyze the roof at all. Missing segments or a zero array area are terminal
// for the address, not retryable.
func (b *BuildingInsights) HasSolarPotential() bool {
	if b == nil {
		return false
	}
	return len(b.RoofSegments) > 0 && b.MaxArrayAreaMeters2 > 0
}
