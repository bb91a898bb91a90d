package geo

import (
	"math"
	"testing"
)

func TestDistanceOneDegreeLongitudeAtEquator(t *testing.T) {
	a := New(0, 0)
	b := New(0, 1)
	d := a.DistanceTo(b)
	// One degree of longitude on the equator with R=6371km.
	want := 111194.9
	if math.Abs(d-want) > 1 {
		t.Fatalf("expected ~%v m, got %v", want, d)
	}
}

func TestDistanceZero(t *testing.T) {
	a := New(48.8566, 2.3522)
	if d := a.DistanceTo(a); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := New(17.43, 78.33)
	b := New(17.46, 78.38)
	if d1, d2 := a.DistanceTo(b), b.DistanceTo(a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestInterpolate(t *testing.T) {
	a := New(0, 0)
	b := New(1, 2)
	mid := a.Interpolate(b, 0.5)
	if mid.Lat != 0.5 || mid.Lon != 1 {
		t.Fatalf("unexpected midpoint: %+v", mid)
	}
	if got := a.Interpolate(b, -0.5); !got.SamePoint(a) {
		t.Fatalf("expected clamp to start, got %+v", got)
	}
	if got := a.Interpolate(b, 1.5); !got.SamePoint(b) {
		t.Fatalf("expected clamp to end, got %+v", got)
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, c := range cases {
		if got := New(c.lat, c.lon).Valid(); got != c.want {
			t.Fatalf("Valid(%v,%v): expected %v", c.lat, c.lon, c.want)
		}
	}
}
