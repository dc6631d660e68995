package symtrack

// piFilter is the proportional-integral loop filter. Alpha scales the
// instantaneous error; beta scales the running error sum, which tracks
// steady-state clock offset. With beta = 0 it degrades to a pure
// proportional loop that resynchronizes more slowly to a constant drift.
type piFilter struct {
	alpha    float64
	beta     float64
	sumClamp float64 // limit on |errSum|; 0 leaves the sum unbounded
	errSum   float64
}

// update folds one error sample into the filter state and returns the
// timing correction u(n) to apply on top of the nominal phase increment.
// Deterministic in (state, e).
func (f *piFilter) update(e float64) float64 {
	f.errSum += e
	if f.sumClamp > 0 {
		if f.errSum > f.sumClamp {
			f.errSum = f.sumClamp
		} else if f.errSum < -f.sumClamp {
			f.errSum = -f.sumClamp
		}
	}
	return f.alpha*e + f.beta*f.errSum
}
