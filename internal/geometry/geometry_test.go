package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solarsight/internal/model"
)

// parisSquare is a ~11m x ~15m rectangle near the center of Paris.
func parisSquare() []model.GeoPoint {
	return []model.GeoPoint{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3524},
		{Lat: 48.8566, Lng: 2.3524},
	}
}

// interiorSquare lies strictly inside parisSquare.
func interiorSquare() []model.GeoPoint {
	return []model.GeoPoint{
		{Lat: 48.85663, Lng: 2.35225},
		{Lat: 48.85667, Lng: 2.35225},
		{Lat: 48.85667, Lng: 2.35235},
		{Lat: 48.85663, Lng: 2.35235},
	}
}

func TestAreaParisSquare(t *testing.T) {
	area := Area(parisSquare())

	// 0.0001 deg of latitude is ~11.1m, 0.0002 deg of longitude at this
	// latitude is ~14.7m, so the geodesic area lands near 163 m2
	assert.Greater(t, area, 140.0)
	assert.Less(t, area, 190.0)
}

func TestAreaDegenerateInputs(t *testing.T) {
	assert.Zero(t, Area(nil))
	assert.Zero(t, Area([]model.GeoPoint{}))
	assert.Zero(t, Area([]model.GeoPoint{{Lat: 48.8566, Lng: 2.3522}}))
	assert.Zero(t, Area([]model.GeoPoint{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3522},
	}))

	// Repeated vertices do not count as distinct
	assert.Zero(t, Area([]model.GeoPoint{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3522},
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3522},
	}))
}

func TestAreaMonotonicity(t *testing.T) {
	small := parisSquare()

	// Same rectangle stretched further east: strictly contains the original
	larger := []model.GeoPoint{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3527},
		{Lat: 48.8566, Lng: 2.3527},
	}

	assert.GreaterOrEqual(t, Area(larger), Area(small))
}

func TestAreaClosedRingIdempotence(t *testing.T) {
	open := parisSquare()
	closed := append(model.ClonePoints(open), open[0])

	assert.InDelta(t, Area(open), Area(closed), 1e-9)
}

func TestPerimeterDegenerateInputs(t *testing.T) {
	assert.Zero(t, Perimeter(nil))
	assert.Zero(t, Perimeter([]model.GeoPoint{{Lat: 48.8566, Lng: 2.3522}}))
}

func TestPerimeterOpenPath(t *testing.T) {
	points := []model.GeoPoint{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8567, Lng: 2.3522},
	}

	// 0.0001 deg of latitude is ~11.1m
	assert.InDelta(t, 11.1, Perimeter(points), 0.2)
}

func TestPointDistanceSymmetry(t *testing.T) {
	a := model.GeoPoint{Lat: 48.8566, Lng: 2.3522}
	b := model.GeoPoint{Lat: 48.8567, Lng: 2.3524}

	assert.InDelta(t, PointDistance(a, b), PointDistance(b, a), 1e-9)
	assert.Zero(t, PointDistance(a, a))
}

func TestNetAreaSubtractsHoles(t *testing.T) {
	main := parisSquare()
	hole := interiorSquare()

	net := NetArea(main, [][]model.GeoPoint{hole})

	assert.InDelta(t, Area(main)-Area(hole), net, 1e-9)
	assert.Greater(t, net, 0.0)
}

func TestNetAreaNeverNegative(t *testing.T) {
	// The hole is larger than the main polygon
	net := NetArea(interiorSquare(), [][]model.GeoPoint{parisSquare(), parisSquare()})

	assert.Zero(t, net)
}

func TestCentroidOfSquare(t *testing.T) {
	c := Centroid(parisSquare())

	assert.InDelta(t, 48.85665, c.Lat, 1e-9)
	assert.InDelta(t, 2.3523, c.Lng, 1e-9)
}

func TestCentroidEmpty(t *testing.T) {
	assert.Equal(t, model.GeoPoint{}, Centroid(nil))
}
