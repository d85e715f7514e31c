// Package geometry converts polygon vertex lists into physical measurements.
// All areas are square meters, all distances meters, all angles degrees.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"solarsight/internal/model"
	"solarsight/internal/util"
)

// Area computes the geodesic surface area of a simple polygon given as an
// ordered ring of vertices, implicitly closed. Degenerate input (fewer than
// three distinct vertices, collinear rings) yields 0, never an error.
func Area(points []model.GeoPoint) float64 {
	if countDistinct(points) < 3 {
		return 0
	}

	ring := model.RingFromPoints(points)
	area := math.Abs(geo.Area(ring))
	if math.IsNaN(area) || math.IsInf(area, 0) {
		return 0
	}
	return area
}

// Perimeter sums great-circle distances between consecutive vertices. The
// path is treated as open; callers close the ring explicitly if needed.
func Perimeter(points []model.GeoPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += PointDistance(points[i-1], points[i])
	}
	return total
}

// PointDistance returns the great-circle distance between two points in
// meters. Also used for snap-to-close detection while drawing.
func PointDistance(a, b model.GeoPoint) float64 {
	return util.HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// NetArea subtracts the combined area of exclusion holes from the main
// polygon's area, floored at zero. Holes are not geometrically validated to
// lie inside the main ring; the subtraction is purely arithmetic.
func NetArea(main []model.GeoPoint, holes [][]model.GeoPoint) float64 {
	net := Area(main)
	for _, hole := range holes {
		net -= Area(hole)
	}
	if net < 0 {
		return 0
	}
	return net
}

// Centroid returns the arithmetic centroid of a vertex list. Good enough for
// roof-segment matching; not an area-weighted polygon centroid.
func Centroid(points []model.GeoPoint) model.GeoPoint {
	if len(points) == 0 {
		return model.GeoPoint{}
	}

	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}

	n := float64(len(points))
	return model.GeoPoint{Lat: lat / n, Lng: lng / n}
}

// Contains reports whether a point lies inside the polygon (ray cast).
func Contains(polygon orb.Polygon, p model.GeoPoint) bool {
	return planar.PolygonContains(polygon, p.ToOrb())
}

// countDistinct counts vertices that differ from every earlier vertex. A ring
// closed by repeating vertex 0 must not count the repetition.
func countDistinct(points []model.GeoPoint) int {
	distinct := 0
	for i, p := range points {
		seen := false
		for j := 0; j < i; j++ {
			if points[j] == p {
				seen = true
				break
			}
		}
		if !seen {
			distinct++
		}
	}
	return distinct
}
