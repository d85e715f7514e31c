package util

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371000.0

// HaversineDistance returns the great-circle distance between two
// coordinates in meters.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert coordinates from degrees to S2 points
	point1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lng1))
	point2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lng2))

	// Calculate angle between points
	angle := s1.Angle(s2.ChordAngleBetweenPoints(point1, point2).Angle())

	// Convert angle to distance on Earth's surface
	return angle.Radians() * earthRadiusMeters
}

// MetersToDegrees converts a distance in meters to longitude degrees at a
// given latitude. Used to size spatial index search rectangles.
func MetersToDegrees(meters float64, latitude float64) float64 {
	latRad := latitude * math.Pi / 180.0

	// For longitude: depends on latitude
	metersPerDegree := earthRadiusMeters * math.Pi / 180.0 * math.Cos(latRad)
	if metersPerDegree == 0 {
		return 0
	}

	return meters / metersPerDegree
}
