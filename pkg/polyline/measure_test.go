package polyline

import (
	"math"
	"testing"
)

func TestDistanceAlong_OnRoute(t *testing.T) {
	// A straight north-south line, roughly 33 km long.
	coords := []Coordinate{
		{Lat: 52.0, Lon: 4.0},
		{Lat: 52.1, Lon: 4.0},
		{Lat: 52.2, Lon: 4.0},
		{Lat: 52.3, Lon: 4.0},
	}

	// A vertex partway along measures the cumulative distance to it.
	along, offset := DistanceAlong(coords, Coordinate{Lat: 52.2, Lon: 4.0})
	wantAlong := Length(coords[:3])
	if math.Abs(along-wantAlong) > 1 {
		t.Errorf("along = %.1f, want %.1f", along, wantAlong)
	}
	if offset > 1 {
		t.Errorf("offset = %.1f, want ~0", offset)
	}

	// A point between vertices projects onto the segment.
	along, offset = DistanceAlong(coords, Coordinate{Lat: 52.15, Lon: 4.0})
	if along <= Length(coords[:2]) || along >= Length(coords[:3]) {
		t.Errorf("along = %.1f, want between segment bounds", along)
	}
	if offset > 1 {
		t.Errorf("offset = %.1f, want ~0", offset)
	}
}

func TestDistanceAlong_OffRoute(t *testing.T) {
	coords := []Coordinate{
		{Lat: 52.0, Lon: 4.0},
		{Lat: 52.2, Lon: 4.0},
	}

	// ~0.1 degrees of longitude east of the midpoint, about 6.8 km off.
	along, offset := DistanceAlong(coords, Coordinate{Lat: 52.1, Lon: 4.1})
	half := Length(coords) / 2
	if math.Abs(along-half) > 100 {
		t.Errorf("along = %.1f, want ~%.1f", along, half)
	}
	if offset < 6000 || offset > 8000 {
		t.Errorf("offset = %.1f, want ~6800", offset)
	}
}

func TestDistanceAlong_BeforeStartClampsToZero(t *testing.T) {
	coords := []Coordinate{
		{Lat: 52.0, Lon: 4.0},
		{Lat: 52.2, Lon: 4.0},
	}

	along, _ := DistanceAlong(coords, Coordinate{Lat: 51.9, Lon: 4.0})
	if along != 0 {
		t.Errorf("along = %.1f, want 0 for a point before the start", along)
	}
}

func TestDistanceAlong_Degenerate(t *testing.T) {
	along, offset := DistanceAlong(nil, Coordinate{Lat: 52, Lon: 4})
	if along != 0 || offset != 0 {
		t.Errorf("empty polyline: got %.1f/%.1f, want 0/0", along, offset)
	}

	single := []Coordinate{{Lat: 52.0, Lon: 4.0}}
	along, offset = DistanceAlong(single, Coordinate{Lat: 52.1, Lon: 4.0})
	if along != 0 {
		t.Errorf("single point along = %.1f, want 0", along)
	}
	if offset < 11000 || offset > 11300 {
		t.Errorf("single point offset = %.1f, want ~11100", offset)
	}
}
