// Package metrics turns an installation area and roof pitch into panel
// counts, peak power and a yearly energy estimate using the building
// insights roof-segment data.
package metrics

import (
	"math"

	"solarsight/internal/config"
	"solarsight/internal/model"
)

// Compute derives ZoneMetrics from an area, a pitch and the roof-segment
// data. Absent or malformed solar data degrades to zero-valued metrics;
// this function never fails.
func Compute(areaM2, pitchDeg float64, ins *model.BuildingInsights, cfg config.SolarConfig) model.ZoneMetrics {
	m := model.ZoneMetrics{
		AreaMeters2:  clampNonNegative(areaM2),
		PitchDegrees: pitchDeg,
	}

	m.UsableAreaMeters2 = clampNonNegative(m.AreaMeters2 * cfg.UtilizationRate)

	panelArea := cfg.PanelAreaMeters2()
	if panelArea > 0 {
		m.NumberOfPanels = int(math.Floor(m.UsableAreaMeters2 / panelArea))
	}
	if m.NumberOfPanels < 0 {
		m.NumberOfPanels = 0
	}

	m.PeakPowerKwc = clampNonNegative(float64(m.NumberOfPanels) * cfg.PanelPowerWatts / 1000)
	m.EfficiencyFactor = EfficiencyFactor(pitchDeg, ins, cfg)

	if ins == nil || !ins.HasSolarPotential() {
		return m
	}

	energy := ins.MaxSunshineHoursPerYear * m.PeakPowerKwc * m.EfficiencyFactor

	// Energy is bounded above by the provider's whole-roof annual maximum.
	if limit := ins.MaxArrayAnnualEnergyKwh; limit > 0 && energy > limit {
		energy = limit
	}

	m.EstimatedEnergyKwh = clampNonNegative(energy)
	return m
}

// EfficiencyFactor is the ratio of the pitch-matched roof segment's
// high-percentile sunshine quantile to the best segment's same quantile.
// Falls back to the configured default when no segment matches the pitch
// within tolerance or the segment data is unusable.
func EfficiencyFactor(pitchDeg float64, ins *model.BuildingInsights, cfg config.SolarConfig) float64 {
	if ins == nil || len(ins.RoofSegments) == 0 {
		return cfg.DefaultEfficiency
	}

	var best float64
	for _, seg := range ins.RoofSegments {
		if q := seg.HighQuantile(); q > best {
			best = q
		}
	}
	if best <= 0 {
		return cfg.DefaultEfficiency
	}

	matched, ok := matchSegmentByPitch(pitchDeg, ins.RoofSegments, cfg.PitchMatchTolerance)
	if !ok {
		return cfg.DefaultEfficiency
	}

	ratio := matched.HighQuantile() / best
	if math.IsNaN(ratio) || ratio <= 0 {
		return cfg.DefaultEfficiency
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// AveragePitch returns the area-weighted average pitch over all roof
// segments, or 0 when no segment data exists.
func AveragePitch(ins *model.BuildingInsights) float64 {
	if ins == nil || len(ins.RoofSegments) == 0 {
		return 0
	}

	var weighted, total float64
	for _, seg := range ins.RoofSegments {
		if seg.AreaMeters2 <= 0 {
			continue
		}
		weighted += seg.PitchDegrees * seg.AreaMeters2
		total += seg.AreaMeters2
	}
	if total <= 0 {
		return 0
	}
	return weighted / total
}

// matchSegmentByPitch picks the segment whose pitch is closest to the
// requested pitch, within tolerance degrees.
func matchSegmentByPitch(pitchDeg float64, segments []model.RoofSegmentStats, tolerance float64) (model.RoofSegmentStats, bool) {
	bestDelta := math.Inf(1)
	var matched model.RoofSegmentStats

	for _, seg := range segments {
		delta := math.Abs(seg.PitchDegrees - pitchDeg)
		if delta < bestDelta {
			bestDelta = delta
			matched = seg
		}
	}

	if bestDelta > tolerance {
		return model.RoofSegmentStats{}, false
	}
	return matched, true
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return 0
	}
	return v
}
