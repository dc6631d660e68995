package symtrack

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInterpolator(t *testing.T) {
	for s, want := range map[string]int{"": 0, "nearest": 0, "Linear": 1, "CUBIC": 2} {
		ip, err := ParseInterpolator(s)
		if err != nil {
			t.Errorf("ParseInterpolator(%q): %s", s, err)
			continue
		}
		if ip.Lookahead() != want {
			t.Errorf("ParseInterpolator(%q).Lookahead() = %d, want %d", s, ip.Lookahead(), want)
		}
	}
	if _, err := ParseInterpolator("sinc"); err == nil {
		t.Error("ParseInterpolator should reject unknown names")
	}
}

func TestInterpolatorsReproduceSamplePoints(t *testing.T) {
	src := SliceSource{1 + 1i, 2 - 1i, -3 + 0.5i, 0.25 - 2i, 4 + 4i, -1 - 1i}
	for _, ip := range []Interpolator{NearestInterpolator{}, LinearInterpolator{}, CubicInterpolator{}} {
		for idx := 1; idx < len(src)-2; idx++ {
			got := ip.Interpolate(src, idx, 0)
			if cmplx.Abs(got-src[idx]) > 1e-12 {
				t.Errorf("%T at mu=0, idx=%d: got %v, want %v", ip, idx, got, src[idx])
			}
		}
	}
}

func TestLinearMidpoint(t *testing.T) {
	src := SliceSource{0, 2 + 4i, 0, 0}
	got := LinearInterpolator{}.Interpolate(src, 0, 0.5)
	assert.InDelta(t, 1, real(got), 1e-12)
	assert.InDelta(t, 2, imag(got), 1e-12)
}

// A cubic polynomial is reconstructed exactly by the 4-point Lagrange
// kernel, which a linear blend cannot do.
func TestCubicExactOnCubicSignal(t *testing.T) {
	poly := func(x float64) float64 { return ((2*x-3)*x+1)*x - 5 }
	src := make(SliceSource, 8)
	for i := range src {
		src[i] = complex(poly(float64(i)), -poly(float64(i)))
	}
	for _, mu := range []float64{0.1, 0.25, 0.5, 0.9} {
		idx := 3
		want := poly(float64(idx) + mu)
		got := CubicInterpolator{}.Interpolate(src, idx, mu)
		assert.InDelta(t, want, real(got), 1e-9, "mu=%g", mu)
		assert.InDelta(t, -want, imag(got), 1e-9, "mu=%g", mu)
	}
}

// At idx 0 the cubic kernel has no left context and degrades to linear
// rather than reading src[-1].
func TestCubicLeftEdgeFallback(t *testing.T) {
	src := SliceSource{1, 3, 100, 100}
	got := CubicInterpolator{}.Interpolate(src, 0, 0.5)
	want := LinearInterpolator{}.Interpolate(src, 0, 0.5)
	if got != want {
		t.Errorf("edge fallback: got %v, want linear result %v", got, want)
	}
}
