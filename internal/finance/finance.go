// Package finance computes revenue scenarios, payback and the 25-year
// discounted net benefit of an installation. The pipeline is a total
// function: missing or non-positive inputs degrade to zero or conservative
// defaults with diagnostic logging, never an error.
package finance

import (
	"log"
	"math"

	"solarsight/internal/config"
	"solarsight/internal/model"
)

// Project derives the full financial projection from zone metrics and the
// current electricity rate.
func Project(m model.ZoneMetrics, rate model.ElectricityRate, ins *model.BuildingInsights, cfg config.SolarConfig) model.FinancialProjection {
	p := model.FinancialProjection{
		PricePerKwh:     rate.PricePerKwh,
		PriceIsFallback: rate.IsFallback,
	}

	price := rate.PricePerKwh
	if price <= 0 || math.IsNaN(price) {
		log.Printf("finance: non-positive electricity price %v for %q, projecting zero revenue", rate.PricePerKwh, rate.CountryCode)
		price = 0
	}

	energy := m.EstimatedEnergyKwh
	if energy <= 0 || math.IsNaN(energy) {
		energy = 0
	}

	p.InstallationCost = clamp(m.PeakPowerKwc * cfg.CostPerKwc)
	p.IncentiveAmount = Incentive(m.PeakPowerKwc, cfg)
	p.InstallationCostNet = clamp(p.InstallationCost - p.IncentiveAmount)

	maintenance := clamp(m.PeakPowerKwc * cfg.MaintenancePerKwcYr)

	p.Resale = scenario(energy, price*cfg.ResaleMarkdown, maintenance, p.InstallationCostNet, cfg)
	p.SelfConsumption = scenario(energy, price, maintenance, p.InstallationCostNet, cfg)

	p.NetBenefit25Years = netBenefit(energy, price, maintenance, p.InstallationCostNet, cfg)
	p.CarbonOffsetKgYear = CarbonOffset(energy, ins, cfg)

	return p
}

// Incentive computes the one-time installation incentive from the tiered
// schedule, capped by the configured maximum. Power above the last bracket
// earns nothing.
func Incentive(peakPowerKwc float64, cfg config.SolarConfig) float64 {
	if peakPowerKwc <= 0 || math.IsNaN(peakPowerKwc) {
		return 0
	}

	for _, tier := range cfg.IncentiveTiers {
		if peakPowerKwc <= tier.MaxPowerKwc {
			amount := peakPowerKwc * tier.RatePerKwc
			if cfg.IncentiveCap > 0 && amount > cfg.IncentiveCap {
				amount = cfg.IncentiveCap
			}
			return amount
		}
	}
	return 0
}

// CarbonOffset is the yearly avoided emission in kg CO2. The provider's
// factor (reported per MWh) wins over the configured regional constant.
func CarbonOffset(energyKwh float64, ins *model.BuildingInsights, cfg config.SolarConfig) float64 {
	factor := cfg.GridCO2FactorKgPerKwh
	if ins != nil && ins.CarbonOffsetFactorKgPerMwh > 0 {
		factor = ins.CarbonOffsetFactorKgPerMwh / 1000
	}
	return clamp(energyKwh * factor)
}

// scenario computes one sale scenario. When net revenue is not positive the
// payback reported is the full analysis horizon, as a conservative ceiling.
func scenario(energyKwh, pricePerKwh, maintenance, costNet float64, cfg config.SolarConfig) model.ScenarioProjection {
	gross := clamp(energyKwh * pricePerKwh)
	if cfg.MaxAnnualRevenue > 0 && gross > cfg.MaxAnnualRevenue {
		log.Printf("finance: yearly revenue %.0f exceeds sanity cap, clamping", gross)
		gross = cfg.MaxAnnualRevenue
	}

	net := gross - maintenance

	payback := float64(cfg.AnalysisHorizonYears)
	if net > 0 && costNet > 0 {
		payback = costNet / net
		if payback > float64(cfg.AnalysisHorizonYears) {
			payback = float64(cfg.AnalysisHorizonYears)
		}
	}
	if costNet == 0 && net > 0 {
		payback = 0
	}

	return model.ScenarioProjection{
		GrossRevenue: gross,
		NetRevenue:   net,
		PaybackYears: payback,
	}
}

// netBenefit iterates the analysis horizon: production degrades, the
// electricity price inflates, each year's profit is discounted to present
// value. The result is the accumulated discounted profit minus the net
// installation cost.
func netBenefit(energyKwh, pricePerKwh, maintenance, costNet float64, cfg config.SolarConfig) float64 {
	production := energyKwh
	price := pricePerKwh

	var accumulated float64
	for year := 1; year <= cfg.AnalysisHorizonYears; year++ {
		production *= 1 - cfg.DegradationRate
		price *= 1 + cfg.PriceInflationRate

		revenue := clamp(production * price)
		if cfg.MaxAnnualRevenue > 0 && revenue > cfg.MaxAnnualRevenue {
			revenue = cfg.MaxAnnualRevenue
		}

		profit := revenue - maintenance
		accumulated += profit / math.Pow(1+cfg.DiscountRate, float64(year))
	}

	return accumulated - costNet
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
