package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"solarsight/internal/config"
	"solarsight/internal/model"
)

func testInsights() *model.BuildingInsights {
	return &model.BuildingInsights{
		MaxArrayAreaMeters2:     120,
		MaxArrayAnnualEnergyKwh: 60000,
		MaxSunshineHoursPerYear: 1100,
		RoofSegments: []model.RoofSegmentStats{
			{
				PitchDegrees:      30,
				AzimuthDegrees:    180,
				AreaMeters2:       80,
				SunshineQuantiles: []float64{200, 400, 600, 800, 900, 1000, 1050, 1080, 1100},
			},
			{
				PitchDegrees:      15,
				AzimuthDegrees:    0,
				AreaMeters2:       40,
				SunshineQuantiles: []float64{100, 200, 300, 400, 500, 600, 650, 700, 800},
			},
		},
	}
}

func TestComputeBasics(t *testing.T) {
	cfg := config.DefaultSolarConfig()
	m := Compute(100, 30, testInsights(), cfg)

	assert.InDelta(t, 90.0, m.UsableAreaMeters2, 1e-9)
	assert.Equal(t, int(math.Floor(90/1.7)), m.NumberOfPanels)
	assert.InDelta(t, float64(m.NumberOfPanels)*0.45, m.PeakPowerKwc, 1e-9)
	assert.Greater(t, m.EstimatedEnergyKwh, 0.0)
}

func TestComputeScalesWithArea(t *testing.T) {
	cfg := config.DefaultSolarConfig()
	ins := testInsights()

	small := Compute(50, 30, ins, cfg)
	large := Compute(100, 30, ins, cfg)

	assert.GreaterOrEqual(t, large.NumberOfPanels, small.NumberOfPanels)
	assert.GreaterOrEqual(t, large.EstimatedEnergyKwh, small.EstimatedEnergyKwh)
}

func TestComputeEnergyBoundedByRoofMaximum(t *testing.T) {
	cfg := config.DefaultSolarConfig()
	ins := testInsights()
	ins.MaxArrayAnnualEnergyKwh = 5000

	m := Compute(1e6, 30, ins, cfg)

	assert.LessOrEqual(t, m.EstimatedEnergyKwh, 5000.0)
}

func TestComputeWithoutSolarData(t *testing.T) {
	cfg := config.DefaultSolarConfig()

	m := Compute(100, 30, nil, cfg)

	assert.Zero(t, m.EstimatedEnergyKwh)
	assert.Greater(t, m.NumberOfPanels, 0)
}

func TestComputeClampsMalformedInput(t *testing.T) {
	cfg := config.DefaultSolarConfig()

	assert.Zero(t, Compute(-50, 30, testInsights(), cfg).UsableAreaMeters2)
	assert.Zero(t, Compute(math.NaN(), 30, testInsights(), cfg).UsableAreaMeters2)
	assert.Zero(t, Compute(math.NaN(), 30, testInsights(), cfg).NumberOfPanels)
}

func TestEfficiencyMatchedSegment(t *testing.T) {
	cfg := config.DefaultSolarConfig()

	// Pitch 30 matches the best segment: ratio 1
	assert.InDelta(t, 1.0, EfficiencyFactor(30, testInsights(), cfg), 1e-9)

	// Pitch 15 matches the weaker segment: 700/1080
	assert.InDelta(t, 700.0/1080.0, EfficiencyFactor(15, testInsights(), cfg), 1e-9)
}

func TestEfficiencyDefaultWhenNoMatch(t *testing.T) {
	cfg := config.DefaultSolarConfig()

	// No segment within 5 degrees of pitch 50
	assert.InDelta(t, cfg.DefaultEfficiency, EfficiencyFactor(50, testInsights(), cfg), 1e-9)

	// Absent or malformed segment data
	assert.InDelta(t, cfg.DefaultEfficiency, EfficiencyFactor(30, nil, cfg), 1e-9)

	empty := &model.BuildingInsights{RoofSegments: []model.RoofSegmentStats{{PitchDegrees: 30}}}
	assert.InDelta(t, cfg.DefaultEfficiency, EfficiencyFactor(30, empty, cfg), 1e-9)
}

func TestAveragePitchAreaWeighted(t *testing.T) {
	expected := (30.0*80 + 15.0*40) / 120.0

	assert.InDelta(t, expected, AveragePitch(testInsights()), 1e-9)
	assert.Zero(t, AveragePitch(nil))
}
