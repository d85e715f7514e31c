package model

import (
	"github.com/paulmach/orb"
)

// GeoPoint is a WGS84 coordinate in degrees. Immutable once created.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToOrb converts the point to an orb.Point ([lon, lat] order).
func (p GeoPoint) ToOrb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// RingFromPoints builds a closed orb.Ring from an ordered vertex list.
// The closing point is appended when the caller has not closed the ring.
func RingFromPoints(points []GeoPoint) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, p.ToOrb())
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// PolygonFromPoints builds a single-ring orb.Polygon from a vertex list.
func PolygonFromPoints(points []GeoPoint) orb.Polygon {
	return orb.Polygon{RingFromPoints(points)}
}

// ClonePoints returns a deep copy of a vertex list. Drawing history snapshots
// must not alias the live vertex slice.
func ClonePoints(points []GeoPoint) []GeoPoint {
	if points == nil {
		return nil
	}
	cloned := make([]GeoPoint, len(points))
	copy(cloned, points)
	return cloned
}
