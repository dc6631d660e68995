package symtrack

import (
	"math"
	"math/rand"
)

// SimQPSKConfig controls the synthesized QPSK test signal.
type SimQPSKConfig struct {
	Nsym         int     // number of symbols to draw
	SPS          float64 // samples per symbol of the ADC grid, ≥ 1
	DelaySamples float64 // sampling-grid offset, in input samples (may be fractional)
	ClockSkew    float64 // relative receiver clock error, e.g. 1e-4 for 100 ppm
	NoiseStd     float64 // per-axis white Gaussian noise sigma; 0 for a clean signal
	Seed         int64   // PRNG seed; equal seeds give identical streams
}

// SimulateQPSK synthesizes an oversampled QPSK baseband stream the way a
// skewed, delayed ADC would see it, and returns the stream along with the
// transmitted symbols. Pulse shaping is triangular (linear transitions
// between symbol points): sampling at a symbol center reads the point
// exactly, while off-center sampling picks up inter-symbol interference,
// which is what gives the Mueller & Müller detector something to measure.
func SimulateQPSK(cfg SimQPSKConfig) (SliceSource, []complex128) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	syms := make([]complex128, cfg.Nsym)
	for m := range syms {
		syms[m] = QPSK[rng.Intn(len(QPSK))]
	}

	n := int(float64(cfg.Nsym) * cfg.SPS)
	out := make([]complex128, n)
	for i := range out {
		t := (float64(i) + cfg.DelaySamples) * (1 + cfg.ClockSkew) / cfg.SPS
		v := qpskWaveform(syms, t)
		if cfg.NoiseStd > 0 {
			v += complex(rng.NormFloat64()*cfg.NoiseStd, rng.NormFloat64()*cfg.NoiseStd)
		}
		out[i] = v
	}
	return SliceSource(out), syms
}

// qpskWaveform evaluates the triangular-pulse waveform at symbol time t.
// Outside the symbol span the waveform decays to zero.
func qpskWaveform(syms []complex128, t float64) complex128 {
	m := int(math.Floor(t))
	frac := t - float64(m)
	var v complex128
	if m >= 0 && m < len(syms) {
		v += syms[m] * complex(1-frac, 0)
	}
	if m+1 >= 0 && m+1 < len(syms) {
		v += syms[m+1] * complex(frac, 0)
	}
	return v
}
