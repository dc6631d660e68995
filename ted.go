package symtrack

import (
	"fmt"
	"strings"
)

// TEDVariant selects the timing-error detector formula. Both variants share
// the same history and loop-filter contract, so new detectors can be added
// without touching the control loop.
type TEDVariant int

const (
	// MuellerMuller is the decision-directed Mueller & Müller detector:
	//   e(n) = Re{(x(n)−x(n−2))·d̄(n−1) − (d(n)−d(n−2))·x̄(n−1)}
	// with x the interpolated samples and d their hard decisions.
	// Sampling late makes e negative, so a positive loop gain shrinks
	// the phase increment and pulls the instant back toward the center.
	MuellerMuller TEDVariant = iota

	// Gardner is the non-decision-directed detector using the mid-lag
	// sample against the slope of its neighbors:
	//   e(n) = Re{(x(n)−x(n−2))·x̄(n−1)}
	// It needs no decisions, so it tolerates carrier phase error better
	// but produces a noisier error signal on clean input.
	Gardner
)

func (v TEDVariant) String() string {
	switch v {
	case MuellerMuller:
		return "mueller-muller"
	case Gardner:
		return "gardner"
	}
	return fmt.Sprintf("TEDVariant(%d)", int(v))
}

// ParseTEDVariant converts a configuration string to a TEDVariant. It
// accepts "mm", "mueller-muller" and "gardner" (case-insensitive).
func ParseTEDVariant(s string) (TEDVariant, error) {
	switch strings.ToLower(s) {
	case "mm", "mueller-muller", "muller-muller":
		return MuellerMuller, nil
	case "gardner":
		return Gardner, nil
	}
	return 0, fmt.Errorf("unknown TED variant %q (want mm or gardner)", s)
}

// tedMinHistory is the history depth both detectors require: the current
// tick plus a 2-sample lag.
const tedMinHistory = 3

// timingError computes the scalar timing error from the newest three
// history entries. It returns 0 until the history is warm, so the loop
// free-runs at the nominal rate during startup. Pure over the history
// contents; no side effects.
func timingError(v TEDVariant, h *symbolHistory) float64 {
	if !h.warm(tedMinHistory) {
		return 0
	}
	n0, n1, n2 := h.at(0), h.at(1), h.at(2)
	switch v {
	case Gardner:
		return real((n0.x - n2.x) * conj(n1.x))
	default:
		return real((n0.x-n2.x)*conj(n1.d) - (n0.d-n2.d)*conj(n1.x))
	}
}

func conj(z complex128) complex128 {
	return complex(real(z), -imag(z))
}
