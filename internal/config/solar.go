package config

// IncentiveTier is one bracket of the one-time installation incentive
// schedule. The rate applies to the whole installed power when peak power is
// at most MaxPowerKwc.
type IncentiveTier struct {
	MaxPowerKwc float64
	RatePerKwc  float64
}

// SolarConfig gathers every constant the metrics and financial pipelines use.
// Defaults are France-specific; regional deployments override the object as a
// whole instead of patching scattered literals.
type SolarConfig struct {
	// Panel geometry and rating
	PanelWidthMeters  float64
	PanelHeightMeters float64
	PanelPowerWatts   float64

	// Share of a drawn zone assumed installable
	UtilizationRate float64

	// Efficiency defaults for roof-segment matching
	DefaultEfficiency   float64
	PitchMatchTolerance float64

	// Snap-to-close tolerance for the drawing state machine, meters
	SnapToleranceMeters float64

	// Financial constants
	CostPerKwc           float64
	MaintenancePerKwcYr  float64
	IncentiveTiers       []IncentiveTier
	IncentiveCap         float64
	ResaleMarkdown       float64
	DegradationRate      float64
	PriceInflationRate   float64
	DiscountRate         float64
	AnalysisHorizonYears int

	// Guard against unit-conversion errors upstream
	MaxAnnualRevenue float64

	// Grid carbon intensity, kg CO2 per kWh, used when the insights
	// provider does not report a factor
	GridCO2FactorKgPerKwh float64
}

// PanelAreaMeters2 returns the footprint of a single panel.
func (c SolarConfig) PanelAreaMeters2() float64 {
	return c.PanelWidthMeters * c.PanelHeightMeters
}

// DefaultSolarConfig returns the canonical constant set. Earlier revisions of
// the estimator disagreed on panel rating and utilization; 450 W panels and a
// 0.9 utilization rate are the retained values.
func DefaultSolarConfig() SolarConfig {
	return SolarConfig{
		PanelWidthMeters:  1.7,
		PanelHeightMeters: 1.0,
		PanelPowerWatts:   450,

		UtilizationRate: 0.9,

		DefaultEfficiency:   0.85,
		PitchMatchTolerance: 5.0,

		SnapToleranceMeters: 3.0,

		CostPerKwc:          2200,
		MaintenancePerKwcYr: 25,
		IncentiveTiers: []IncentiveTier{
			{MaxPowerKwc: 3, RatePerKwc: 300},
			{MaxPowerKwc: 9, RatePerKwc: 230},
			{MaxPowerKwc: 36, RatePerKwc: 200},
			{MaxPowerKwc: 100, RatePerKwc: 100},
		},
		IncentiveCap:         10000,
		ResaleMarkdown:       0.6,
		DegradationRate:      0.005,
		PriceInflationRate:   0.03,
		DiscountRate:         0.04,
		AnalysisHorizonYears: 25,

		MaxAnnualRevenue: 100000,

		GridCO2FactorKgPerKwh: 0.055,
	}
}
