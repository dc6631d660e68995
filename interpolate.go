package symtrack

import (
	"fmt"
	"strings"
)

// Interpolator produces the signal value at integer index idx plus
// fractional offset mu ∈ [0,1). Lookahead reports how many samples of
// right-context beyond idx the kernel reads; the timing loop reserves at
// least that much input headroom before every tick.
type Interpolator interface {
	Interpolate(src SampleSource, idx int, mu float64) complex128
	Lookahead() int
}

// ParseInterpolator converts a configuration string to an Interpolator.
func ParseInterpolator(s string) (Interpolator, error) {
	switch strings.ToLower(s) {
	case "", "nearest":
		return NearestInterpolator{}, nil
	case "linear":
		return LinearInterpolator{}, nil
	case "cubic":
		return CubicInterpolator{}, nil
	}
	return nil, fmt.Errorf("unknown interpolator %q (want nearest, linear or cubic)", s)
}

// NearestInterpolator is the baseline policy: no sub-sample blending. The
// fractional phase is used only for phase accounting by the loop, never
// for value blending.
type NearestInterpolator struct{}

// Interpolate returns src[idx], ignoring mu.
func (NearestInterpolator) Interpolate(src SampleSource, idx int, mu float64) complex128 {
	return src.At(idx)
}

// Lookahead is 0: the kernel reads only src[idx].
func (NearestInterpolator) Lookahead() int { return 0 }

// LinearInterpolator blends the two samples bracketing the fractional
// position.
type LinearInterpolator struct{}

// Interpolate returns (1−mu)·src[idx] + mu·src[idx+1].
func (LinearInterpolator) Interpolate(src SampleSource, idx int, mu float64) complex128 {
	a := src.At(idx)
	b := src.At(idx + 1)
	return a + complex(mu, 0)*(b-a)
}

// Lookahead is 1 for the right bracket sample.
func (LinearInterpolator) Lookahead() int { return 1 }

// CubicInterpolator applies a 4-point Lagrange fractional-delay kernel over
// src[idx−1 .. idx+2]. At idx 0, where the left-context sample does not
// exist, it falls back to linear blending for that one call.
type CubicInterpolator struct{}

// Interpolate evaluates the cubic Lagrange polynomial through the four
// bracketing samples at fractional position mu.
func (CubicInterpolator) Interpolate(src SampleSource, idx int, mu float64) complex128 {
	if idx < 1 {
		return LinearInterpolator{}.Interpolate(src, idx, mu)
	}
	ym1 := src.At(idx - 1)
	y0 := src.At(idx)
	y1 := src.At(idx + 1)
	y2 := src.At(idx + 2)
	t := mu
	cm1 := -t * (t - 1) * (t - 2) / 6
	c0 := (t + 1) * (t - 1) * (t - 2) / 2
	c1 := -t * (t + 1) * (t - 2) / 2
	c2 := t * (t + 1) * (t - 1) / 6
	return complex(cm1, 0)*ym1 + complex(c0, 0)*y0 + complex(c1, 0)*y1 + complex(c2, 0)*y2
}

// Lookahead is 2 for the two right-context samples.
func (CubicInterpolator) Lookahead() int { return 2 }
