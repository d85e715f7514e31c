package model

// ZoneMetrics is the derived technical estimate for an installation zone.
// Recomputed on every polygon change, never persisted on its own.
type ZoneMetrics struct {
	AreaMeters2        float64 `json:"area_meters2"`
	UsableAreaMeters2  float64 `json:"usable_area_meters2"`
	NumberOfPanels     int     `json:"number_of_panels"`
	PeakPowerKwc       float64 `json:"peak_power_kwc"`
	EfficiencyFactor   float64 `json:"efficiency_factor"`
	EstimatedEnergyKwh float64 `json:"estimated_energy_kwh"`
	PitchDegrees       float64 `json:"pitch_degrees"`
}

// ScenarioProjection holds the yearly revenue figures for one sale scenario.
type ScenarioProjection struct {
	GrossRevenue float64 `json:"gross_revenue"`
	NetRevenue   float64 `json:"net_revenue"`
	PaybackYears float64 `json:"payback_years"`
}

// FinancialProjection is the derived financial estimate for an installation.
type FinancialProjection struct {
	InstallationCost    float64            `json:"installation_cost"`
	IncentiveAmount     float64            `json:"incentive_amount"`
	InstallationCostNet float64            `json:"installation_cost_net"`
	Resale              ScenarioProjection `json:"resale"`
	SelfConsumption     ScenarioProjection `json:"self_consumption"`
	NetBenefit25Years   float64            `json:"net_benefit_25_years"`
	CarbonOffsetKgYear  float64            `json:"carbon_offset_kg_year"`
	PricePerKwh         float64            `json:"price_per_kwh"`
	PriceIsFallback     bool               `json:"price_is_fallback"`
}
