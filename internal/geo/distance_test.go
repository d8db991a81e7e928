package geo_test

import (
	"math"
	"testing"

	"restaurant_map/internal/geo"
	"restaurant_map/internal/models"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		name string
		a, b models.LngLat
		want float64
		tol  float64
	}{
		{"same point", models.LngLat{Lng: -73.99, Lat: 40.73}, models.LngLat{Lng: -73.99, Lat: 40.73}, 0, 1e-9},
		{"one degree of latitude", models.LngLat{Lng: 0, Lat: 0}, models.LngLat{Lng: 0, Lat: 1}, 111195, 5},
		{"manhattan blocks", models.LngLat{Lng: -73.99, Lat: 40.73}, models.LngLat{Lng: -73.98, Lat: 40.74}, 1395.1, 1},
		{"antimeridian", models.LngLat{Lng: 179.5, Lat: 0}, models.LngLat{Lng: -179.5, Lat: 0}, 111195, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := geo.Distance(tc.a, tc.b)
			if math.Abs(got-tc.want) > tc.tol {
				t.Errorf("Distance = %.2f, want %.2f ± %.2f", got, tc.want, tc.tol)
			}
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := models.LngLat{Lng: -73.856077, Lat: 40.848447}
	b := models.LngLat{Lng: -73.961704, Lat: 40.662942}
	if d1, d2 := geo.Distance(a, b), geo.Distance(b, a); math.Abs(d1-d2) > 1e-6 {
		t.Errorf("Distance not symmetric: %f vs %f", d1, d2)
	}
}
