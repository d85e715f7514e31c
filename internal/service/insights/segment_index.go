package insights

import (
	"log"

	"github.com/dhconnelly/rtreego"

	"solarsight/internal/geometry"
	"solarsight/internal/model"
)

// segmentSpatial wraps a roof segment for R-tree indexing
type segmentSpatial struct {
	segment model.RoofSegmentStats
}

// Bounds implements the rtreego.Spatial interface using the segment's
// provider-reported bounding box.
func (s *segmentSpatial) Bounds() rtreego.Rect {
	minX, minY := s.segment.BoundsSW.Lng, s.segment.BoundsSW.Lat
	maxX, maxY := s.segment.BoundsNE.Lng, s.segment.BoundsNE.Lat

	width := maxX - minX
	height := maxY - minY
	if width <= 0 {
		width = 1e-7
	}
	if height <= 0 {
		height = 1e-7
	}

	rect, _ := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{width, height},
	)

	return rect
}

// SegmentIndex answers "which roof segment does this point belong to" for
// one building's insights. Segment counts are small, but bounding boxes
// overlap at ridges, so candidates are filtered by center distance.
type SegmentIndex struct {
	tree     *rtreego.Rtree
	segments []model.RoofSegmentStats
}

// NewSegmentIndex builds the spatial index over a building's roof segments.
func NewSegmentIndex(ins *model.BuildingInsights) *SegmentIndex {
	idx := &SegmentIndex{
		tree: rtreego.NewTree(2, 2, 8),
	}
	if ins == nil {
		return idx
	}

	idx.segments = ins.RoofSegments
	for _, seg := range ins.RoofSegments {
		idx.tree.Insert(&segmentSpatial{segment: seg})
	}
	return idx
}

// Match returns the roof segment the point most plausibly belongs to: the
// candidate whose bounding box contains the point and whose center is
// nearest. Falls back to the globally nearest segment when no box matches.
func (idx *SegmentIndex) Match(p model.GeoPoint) (model.RoofSegmentStats, bool) {
	if len(idx.segments) == 0 {
		return model.RoofSegmentStats{}, false
	}

	searchRect, err := rtreego.NewRect(
		rtreego.Point{p.Lng, p.Lat},
		[]float64{1e-7, 1e-7},
	)
	if err != nil {
		log.Printf("insights: invalid search rect: %v", err)
		return model.RoofSegmentStats{}, false
	}

	candidates := idx.tree.SearchIntersect(searchRect)

	best, found := model.RoofSegmentStats{}, false
	bestDistance := 0.0
	for _, item := range candidates {
		seg := item.(*segmentSpatial).segment
		d := geometry.PointDistance(p, seg.Center)
		if !found || d < bestDistance {
			best, bestDistance, found = seg, d, true
		}
	}
	if found {
		return best, true
	}

	// Point outside every bounding box: nearest center wins
	for _, seg := range idx.segments {
		d := geometry.PointDistance(p, seg.Center)
		if !found || d < bestDistance {
			best, bestDistance, found = seg, d, true
		}
	}
	return best, found
}
