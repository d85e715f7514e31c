package analysis

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarsight/internal/config"
	"solarsight/internal/drawing"
	"solarsight/internal/model"
	"solarsight/internal/service/geocode"
	"solarsight/internal/service/insights"
	"solarsight/internal/service/price"
)

const testGeocodeResponse = `{
	"status": "OK",
	"results": [{
		"geometry": {"location": {"lat": 48.85665, "lng": 2.3523}},
		"address_components": [
			{"short_name": "FR", "types": ["country", "political"]}
		]
	}]
}`

const testInsightsResponse = `{
	"center": {"latitude": 48.85665, "longitude": 2.3523},
	"boundingBox": {
		"sw": {"latitude": 48.8565, "longitude": 2.3521},
		"ne": {"latitude": 48.8568, "longitude": 2.3525}
	},
	"imageryQuality": "HIGH",
	"solarPotential": {
		"maxArrayAreaMeters2": 100,
		"maxArrayAnnualEnergyKwh": 50000,
		"maxSunshineHoursPerYear": 1100,
		"carbonOffsetFactorKgPerMwh": 55,
		"roofSegmentStats": [{
			"pitchDegrees": 30,
			"azimuthDegrees": 180,
			"stats": {
				"areaMeters2": 100,
				"sunshineQuantiles": [200, 500, 800, 1000, 1100, 1100]
			},
			"center": {"latitude": 48.85665, "longitude": 2.3523},
			"boundingBox": {
				"sw": {"latitude": 48.8565, "longitude": 2.3521},
				"ne": {"latitude": 48.8568, "longitude": 2.3525}
			}
		}]
	}
}`

// newTestService wires the full pipeline against local httptest servers. The
// price endpoint is empty, so the static fallback table is always used.
func newTestService(t *testing.T) *AnalysisService {
	t.Helper()

	geocodeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testGeocodeResponse))
	}))
	t.Cleanup(geocodeServer.Close)

	insightsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testInsightsResponse))
	}))
	t.Cleanup(insightsServer.Close)

	return NewAnalysisService(
		geocode.NewGeocodeService(geocodeServer.URL, "test-key"),
		insights.NewInsightsService(insightsServer.URL, "test-key"),
		price.NewPriceService(""),
		config.DefaultSolarConfig(),
	)
}

// squarePoints is a roughly 11x15 meter rectangle on the test building.
func squarePoints() []model.GeoPoint {
	return []model.GeoPoint{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3524},
		{Lat: 48.8566, Lng: 2.3524},
	}
}

func analyzeAndDrawSquare(t *testing.T, s *AnalysisService) *Analysis {
	t.Helper()

	a, err := s.Analyze(context.Background(), "10 rue de Rivoli, Paris")
	require.NoError(t, err)

	_, err = s.StartDrawing(a.ID)
	require.NoError(t, err)

	for _, p := range squarePoints() {
		_, _, err = s.Click(a.ID, p)
		require.NoError(t, err)
	}

	a, err = s.Finish(a.ID)
	require.NoError(t, err)
	return a
}

func TestAnalyzePipeline(t *testing.T) {
	s := newTestService(t)

	a, err := s.Analyze(context.Background(), "10 rue de Rivoli, Paris")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, model.AnalysisStatusReady, a.Status)
	assert.Equal(t, "FR", a.CountryCode)
	assert.True(t, a.Rate.IsFallback)
	assert.InDelta(t, price.FallbackRate("FR"), a.Rate.PricePerKwh, 1e-9)

	// Nothing drawn yet: the whole usable roof is estimated
	assert.InDelta(t, 100, a.Metrics.AreaMeters2, 1e-9)
	assert.Greater(t, a.Metrics.NumberOfPanels, 0)
	assert.Greater(t, a.Projection.NetBenefit25Years, 0.0)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestDrawSquareRecomputesMetrics(t *testing.T) {
	s := newTestService(t)
	a := analyzeAndDrawSquare(t, s)

	// A 0.0001 x 0.0002 degree rectangle at this latitude
	assert.Greater(t, a.Metrics.AreaMeters2, 140.0)
	assert.Less(t, a.Metrics.AreaMeters2, 190.0)

	// Panel count follows directly from the usable area
	usable := a.Metrics.AreaMeters2 * 0.9
	assert.InDelta(t, usable, a.Metrics.UsableAreaMeters2, 1e-9)
	assert.Equal(t, int(math.Floor(usable/1.7)), a.Metrics.NumberOfPanels)
	assert.InDelta(t, float64(a.Metrics.NumberOfPanels)*0.45, a.Metrics.PeakPowerKwc, 1e-9)

	// The centroid sits on the single pitch-30 segment
	assert.InDelta(t, 1.0, a.Metrics.EfficiencyFactor, 1e-9)
}

func TestHoleReducesArea(t *testing.T) {
	s := newTestService(t)
	a := analyzeAndDrawSquare(t, s)
	full := a.Metrics.AreaMeters2

	a, err := s.BeginHole(a.ID)
	require.NoError(t, err)
	assert.Equal(t, drawing.ModeDrawingHole, a.Session.Mode)

	hole := []model.GeoPoint{
		{Lat: 48.85663, Lng: 2.35225},
		{Lat: 48.85666, Lng: 2.35225},
		{Lat: 48.85666, Lng: 2.35232},
		{Lat: 48.85663, Lng: 2.35232},
	}
	for _, p := range hole {
		_, _, err = s.Click(a.ID, p)
		require.NoError(t, err)
	}

	a, err = s.CompleteHole(a.ID)
	require.NoError(t, err)

	require.Len(t, a.Session.Holes, 1)
	assert.Less(t, a.Metrics.AreaMeters2, full)
	assert.Greater(t, a.Metrics.AreaMeters2, 0.0)
}

func TestUndoRedoRecomputes(t *testing.T) {
	s := newTestService(t)
	a := analyzeAndDrawSquare(t, s)
	fullArea := a.Metrics.AreaMeters2

	// Undo drops the last vertex, leaving a triangle of roughly half the area
	a, err := s.Undo(a.ID)
	require.NoError(t, err)
	assert.Less(t, a.Metrics.AreaMeters2, fullArea)
	assert.Greater(t, a.Metrics.AreaMeters2, 0.0)

	a, err = s.Redo(a.ID)
	require.NoError(t, err)
	assert.InDelta(t, fullArea, a.Metrics.AreaMeters2, 1e-9)
}

func TestListenersFireOnMutation(t *testing.T) {
	s := newTestService(t)

	var lastArea *float64
	areaCalls := 0
	s.OnAreaChange(func(id string, areaM2 *float64) {
		lastArea = areaM2
		areaCalls++
	})

	infoCalls := 0
	s.OnTechnicalInfoChange(func(id string, m model.ZoneMetrics, p model.FinancialProjection) {
		infoCalls++
	})

	a := analyzeAndDrawSquare(t, s)

	assert.Greater(t, areaCalls, 0)
	assert.Equal(t, areaCalls, infoCalls)
	require.NotNil(t, lastArea)
	assert.InDelta(t, a.Metrics.AreaMeters2, *lastArea, 1e-9)

	// Clearing publishes a null area
	_, err := s.Clear(a.ID)
	require.NoError(t, err)
	assert.Nil(t, lastArea)
}

func TestClickWhileIdleRejected(t *testing.T) {
	s := newTestService(t)

	a, err := s.Analyze(context.Background(), "10 rue de Rivoli, Paris")
	require.NoError(t, err)

	_, _, err = s.Click(a.ID, model.GeoPoint{Lat: 48.8566, Lng: 2.3522})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBeginHoleWithoutPolygonRejected(t *testing.T) {
	s := newTestService(t)

	a, err := s.Analyze(context.Background(), "10 rue de Rivoli, Paris")
	require.NoError(t, err)

	_, err = s.BeginHole(a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUnknownAnalysis(t *testing.T) {
	s := newTestService(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.StartDrawing("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyzePropagatesGeocodeFailure(t *testing.T) {
	geocodeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer geocodeServer.Close()

	s := NewAnalysisService(
		geocode.NewGeocodeService(geocodeServer.URL, "test-key"),
		insights.NewInsightsService("http://127.0.0.1:0", "test-key"),
		price.NewPriceService(""),
		config.DefaultSolarConfig(),
	)

	_, err := s.Analyze(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, geocode.ErrNoResult)
}

func TestSnapshotCarriesGeometry(t *testing.T) {
	s := newTestService(t)
	a := analyzeAndDrawSquare(t, s)

	snapshot := a.ToPG()

	assert.Equal(t, a.ID, snapshot.ID)
	assert.InDelta(t, a.Metrics.AreaMeters2, snapshot.AreaMeters2, 1e-9)
	assert.Contains(t, snapshot.Geometry, `"Polygon"`)
}
