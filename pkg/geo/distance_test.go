package geo

import (
	"math"
	"testing"
)

func TestCalculateHaversineDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolKm                  float64
	}{
		{"same point", 41.1171, 16.8719, 41.1171, 16.8719, 0, 1e-9},
		{"one hundredth degree of latitude", 41.0, 16.8, 41.01, 16.8, 1.11195, 1e-3},
		{"bari to polignano", 41.1171, 16.8719, 40.9956, 17.2186, 31.9, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateHaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.tolKm {
				t.Fatalf("got %f km, want %f km", got, tt.wantKm)
			}
		})
	}
}

func TestEuclideanDegreeDistance(t *testing.T) {
	a := NewCoordinate(41.0, 16.8)
	b := NewCoordinate(41.03, 16.84)

	got := EuclideanDegreeDistance(a, b)
	if math.Abs(got-0.05) > 1e-12 {
		t.Fatalf("got %f, want 0.05", got)
	}
	if EuclideanDegreeDistance(a, a) != 0 {
		t.Fatalf("distance to self must be 0")
	}
}

func TestCumulativeDistances(t *testing.T) {
	coords := []Coordinate{
		NewCoordinate(41.00, 16.80),
		NewCoordinate(41.01, 16.80),
		NewCoordinate(41.03, 16.80),
	}

	cum := CumulativeDistances(coords)
	if len(cum) != 3 {
		t.Fatalf("got %d entries, want 3", len(cum))
	}
	if cum[0] != 0 {
		t.Fatalf("first entry: got %f, want 0", cum[0])
	}

	d1 := CalculateHaversineDistance(41.00, 16.80, 41.01, 16.80) * 1000
	d2 := CalculateHaversineDistance(41.01, 16.80, 41.03, 16.80) * 1000
	if math.Abs(cum[1]-d1) > 1e-6 {
		t.Fatalf("second entry: got %f, want %f", cum[1], d1)
	}
	if math.Abs(cum[2]-(d1+d2)) > 1e-6 {
		t.Fatalf("third entry: got %f, want %f", cum[2], d1+d2)
	}

	if got := TotalLengthMeters(coords); math.Abs(got-(d1+d2)) > 1e-6 {
		t.Fatalf("total length: got %f, want %f", got, d1+d2)
	}
	if got := TotalLengthMeters(coords[:1]); got != 0 {
		t.Fatalf("single point length: got %f, want 0", got)
	}
}

func TestInterpolate(t *testing.T) {
	a := NewCoordinate(41.1000, 16.8000)
	b := NewCoordinate(41.1100, 16.8100)

	start := Interpolate(a, b, 0)
	if math.Abs(start.GetLat()-a.GetLat()) > 1e-9 || math.Abs(start.GetLon()-a.GetLon()) > 1e-9 {
		t.Fatalf("t=0 must return the start point, got %+v", start)
	}

	end := Interpolate(a, b, 1)
	if math.Abs(end.GetLat()-b.GetLat()) > 1e-9 || math.Abs(end.GetLon()-b.GetLon()) > 1e-9 {
		t.Fatalf("t=1 must return the end point, got %+v", end)
	}

	// for points this close the great circle midpoint matches the planar one
	mid := Interpolate(a, b, 0.5)
	if math.Abs(mid.GetLat()-41.105) > 1e-5 || math.Abs(mid.GetLon()-16.805) > 1e-5 {
		t.Fatalf("midpoint: got %+v", mid)
	}
}

func TestPolylineRoundTrip(t *testing.T) {
	coords := []Coordinate{
		NewCoordinate(41.11710, 16.87190),
		NewCoordinate(41.12000, 16.86500),
		NewCoordinate(41.12800, 16.86900),
	}

	enc := PolylineFromCoords(coords)
	if enc == "" {
		t.Fatal("encoded polyline must not be empty")
	}

	decoded, err := CoordsFromPolyline(enc)
	if err != nil {
		t.Fatalf("decode polyline: %v", err)
	}
	if len(decoded) != len(coords) {
		t.Fatalf("got %d coords, want %d", len(decoded), len(coords))
	}
	for i := range coords {
		if math.Abs(decoded[i].GetLat()-coords[i].GetLat()) > 1e-5 ||
			math.Abs(decoded[i].GetLon()-coords[i].GetLon()) > 1e-5 {
			t.Fatalf("coord %d: got %+v, want %+v", i, decoded[i], coords[i])
		}
	}
}

func TestBearingTo(t *testing.T) {
	tests := []struct {
		name        string
		lat1, lon1  float64
		lat2, lon2  float64
		wantBearing float64
	}{
		{"due north", 41.0, 16.8, 42.0, 16.8, 0},
		{"due east", 0.0, 16.8, 0.0, 17.8, 90},
		{"due south", 42.0, 16.8, 41.0, 16.8, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingTo(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			diff := math.Abs(got - tt.wantBearing)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > 0.5 {
				t.Fatalf("got %f, want %f", got, tt.wantBearing)
			}
		})
	}
}
