package analysis

import (
	"solarsight/internal/finance"
	"solarsight/internal/metrics"
	"solarsight/internal/model"
	"solarsight/internal/service/insights"
)

// recompute runs the full derivation cascade for an analysis: net area,
// pitch from the matched roof segment, zone metrics, financial projection,
// then listener notification. Caller holds s.mu.
func (s *AnalysisService) recompute(a *Analysis) {
	session := a.Session

	var areaM2 float64
	var pitch float64

	if session.HasPolygon() {
		areaM2 = session.NetArea()
		pitch = s.pitchAt(a, session.Centroid())
	} else if a.Insights.HasSolarPotential() {
		// Nothing drawn yet: estimate over the whole usable roof
		areaM2 = a.Insights.MaxArrayAreaMeters2
		pitch = metrics.AveragePitch(a.Insights)
	}

	a.Metrics = metrics.Compute(areaM2, pitch, a.Insights, s.solarCfg)
	a.Projection = finance.Project(a.Metrics, a.Rate, a.Insights, s.solarCfg)

	s.notify(a)
}

// pitchAt resolves the roof pitch at a point through the segment index,
// falling back to the area-weighted average pitch.
func (s *AnalysisService) pitchAt(a *Analysis, p model.GeoPoint) float64 {
	idx, exists := s.indexes[a.ID]
	if !exists {
		// Restored from Redis; rebuild lazily
		idx = insights.NewSegmentIndex(a.Insights)
		s.indexes[a.ID] = idx
	}

	if segment, ok := idx.Match(p); ok {
		return segment.PitchDegrees
	}
	return metrics.AveragePitch(a.Insights)
}

// notify publishes the derived numbers to all registered listeners. Callbacks
// run synchronously on the mutating call, same as the UI event loop would.
func (s *AnalysisService) notify(a *Analysis) {
	var areaPtr *float64
	if a.Session.HasPolygon() {
		area := a.Metrics.AreaMeters2
		areaPtr = &area
	}

	for _, fn := range s.areaListeners {
		fn(a.ID, areaPtr)
	}
	for _, fn := range s.infoListeners {
		fn(a.ID, a.Metrics, a.Projection)
	}
}
