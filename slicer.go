package symtrack

// Constellation is a finite set of ideal symbol points. A hard decision maps
// an arbitrary complex sample to its nearest member.
type Constellation []complex128

// QPSK holds the four-point constellation {±1 ± 1i}.
var QPSK = Constellation{1 + 1i, 1 - 1i, -1 + 1i, -1 - 1i}

// DecideQPSK maps one complex sample to the nearest QPSK point with
// independent per-axis sign tests. Output components are exactly ±1.
// Zero on an axis decides −1, matching a strict x > 0 test.
func DecideQPSK(x complex128) complex128 {
	re, im := -1.0, -1.0
	if real(x) > 0 {
		re = 1
	}
	if imag(x) > 0 {
		im = 1
	}
	return complex(re, im)
}

// Decide returns the member of c nearest to x in Euclidean distance. For
// QPSK, DecideQPSK gives the same answer without the search.
func (c Constellation) Decide(x complex128) complex128 {
	best := c[0]
	bestDist := distSq(x, c[0])
	for _, p := range c[1:] {
		if d := distSq(x, p); d < bestDist {
			bestDist, best = d, p
		}
	}
	return best
}

func distSq(a, b complex128) float64 {
	d := a - b
	return real(d)*real(d) + imag(d)*imag(d)
}
