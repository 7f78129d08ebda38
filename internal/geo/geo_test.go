package geo

import (
	"math"
	"testing"

	"supportcarr/internal/types"
)

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Point
		radius    float64
		want      float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Point{Lat: 25.033, Lng: 121.565},
			b:         types.Point{Lat: 25.033, Lng: 121.565},
			radius:    EarthRadiusKm,
			want:      0,
			tolerance: 0.001,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			a:         types.Point{Lat: 40.7128, Lng: -74.0060},
			b:         types.Point{Lat: 34.0522, Lng: -118.2437},
			radius:    EarthRadiusKm,
			want:      3944,
			tolerance: 50,
		},
		{
			name:      "downtown LA to Echo Park area in miles (~4.5mi)",
			a:         types.Point{Lat: 34.0522, Lng: -118.2437},
			b:         types.Point{Lat: 34.10, Lng: -118.30},
			radius:    EarthRadiusMiles,
			want:      4.6,
			tolerance: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b, tt.radius)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine() = %f, want %f (±%f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := types.Point{Lat: 25.0, Lng: 121.0}
	b := types.Point{Lat: 26.0, Lng: 122.0}
	if Haversine(a, b, EarthRadiusKm) != Haversine(b, a, EarthRadiusKm) {
		t.Errorf("haversine is not symmetric")
	}
}

func TestUnitConversions(t *testing.T) {
	if got := MilesToKm(15); math.Abs(got-24.1401) > 1e-9 {
		t.Errorf("MilesToKm(15) = %v, want 24.1401", got)
	}
	if got := KmToMeters(2.0); got != 2000.0 {
		t.Errorf("KmToMeters(2.0) = %v, want 2000", got)
	}
}

func TestSortByDistance(t *testing.T) {
	type item struct {
		id   string
		dist float64
	}
	items := []item{{"c", 5}, {"a", 1}, {"b", 3}, {"a2", 1}}
	SortByDistance(items, func(i item) float64 { return i.dist })

	want := []string{"a", "a2", "b", "c"}
	for i, w := range want {
		if items[i].id != w {
			t.Fatalf("position %d: got %s, want %s (%v)", i, items[i].id, w, items)
		}
	}
}

func TestSortByDistance_Empty(t *testing.T) {
	var items []float64
	SortByDistance(items, func(f float64) float64 { return f })
}
