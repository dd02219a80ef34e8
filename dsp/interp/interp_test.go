package interp

import (
	"math"
	"testing"
)

func TestLinear2Endpoints(t *testing.T) {
	values := []float64{-3, -0.5, 0, 1e-9, 0.75, 42}
	for _, x0 := range values {
		for _, x1 := range values {
			if got := Linear2(0, x0, x1); got != x0 {
				t.Fatalf("Linear2(0, %v, %v) = %v, want %v", x0, x1, got, x0)
			}
			if got := Linear2(1, x0, x1); got != x1 {
				t.Fatalf("Linear2(1, %v, %v) = %v, want %v", x0, x1, got, x1)
			}
		}
	}
}

func TestLinear2Midpoint(t *testing.T) {
	if got := Linear2(0.5, 2, 4); got != 3 {
		t.Fatalf("Linear2(0.5, 2, 4) = %v, want 3", got)
	}
	if got := Linear2(0.25, 0, 1); got != 0.25 {
		t.Fatalf("Linear2(0.25, 0, 1) = %v, want 0.25", got)
	}
}

func TestHermite4PassesThroughSamples(t *testing.T) {
	if got := Hermite4(0, 1, 2, 3, 4); got != 2 {
		t.Fatalf("Hermite4(t=0) = %v, want 2", got)
	}
	if got := Hermite4(1, 1, 2, 3, 4); math.Abs(got-3) > 1e-12 {
		t.Fatalf("Hermite4(t=1) = %v, want 3", got)
	}
}

func TestHermite4ReproducesLine(t *testing.T) {
	for _, frac := range []float64{0.1, 0.33, 0.5, 0.9} {
		got := Hermite4(frac, -1, 0, 1, 2)
		if math.Abs(got-frac) > 1e-12 {
			t.Fatalf("Hermite4(%v) on a line = %v, want %v", frac, got, frac)
		}
	}
}
