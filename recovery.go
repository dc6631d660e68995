package symtrack

import (
	"fmt"
	"math"
)

// DefaultLookaheadMargin is the input headroom reserved at the end of the
// source so transient large steps at startup, or after a timing
// perturbation, cannot run past the last sample.
const DefaultLookaheadMargin = 16

// LoopConfig holds the parameters of one timing-recovery run. The values
// are fixed for the lifetime of the loop instance.
type LoopConfig struct {
	SamplesPerSymbol float64 // oversampling ratio SPS, must be ≥ 1
	Alpha            float64 // proportional gain, ≥ 0
	Beta             float64 // integral gain, ≥ 0
	SumClamp         float64 // limit on the accumulated error sum; 0 = unbounded

	TED          TEDVariant
	HistoryDepth int          // 0 means the TED minimum (3)
	Interp       Interpolator // nil means NearestInterpolator
	Lookahead    int          // end-of-source margin; 0 means DefaultLookaheadMargin
	StartIndex   int          // initial read position; small positive values leave left-context for the cubic kernel
}

// SingleGainConfig is the minimal one-knob configuration: the PI filter
// collapses to a pure proportional loop with gain applied to e(n) directly.
func SingleGainConfig(sps, gain float64) LoopConfig {
	return LoopConfig{SamplesPerSymbol: sps, Alpha: gain}
}

// LoopState is the mutable per-tick state: the next input read position and
// the fractional sampling phase. Mu stays in [0,1) after every tick;
// whole-sample overflow is always carried into InputIndex.
type LoopState struct {
	InputIndex int
	Mu         float64
}

// TimingLoop recovers symbol sampling instants from an oversampled,
// matched-filtered complex baseband stream by decision-directed feedback.
// Each output tick interpolates the input at the current phase, slices the
// result, derives a timing error from the newest three (sample, decision)
// pairs, filters the error through the PI controller, and advances the read
// position by SPS plus the correction.
//
// The loop is strictly sequential: each tick depends on the previous one.
// A TimingLoop instance owns all of its state, so independent instances
// (parallel channels) share nothing and need no locking.
type TimingLoop struct {
	cfg    LoopConfig
	interp Interpolator
	filter piFilter
	hist   *symbolHistory
	state  LoopState
	trace  *LoopTrace
	margin int
	ticks  int
}

// NewTimingLoop validates cfg and returns a loop in its warmup state.
func NewTimingLoop(cfg LoopConfig) (*TimingLoop, error) {
	if cfg.SamplesPerSymbol < 1 {
		return nil, fmt.Errorf("SamplesPerSymbol=%g, must be ≥ 1", cfg.SamplesPerSymbol)
	}
	if cfg.Alpha < 0 || cfg.Beta < 0 {
		return nil, fmt.Errorf("loop gains must be non-negative, have α=%g β=%g", cfg.Alpha, cfg.Beta)
	}
	if cfg.SumClamp < 0 {
		return nil, fmt.Errorf("SumClamp=%g, must be ≥ 0", cfg.SumClamp)
	}
	if cfg.StartIndex < 0 {
		return nil, fmt.Errorf("StartIndex=%d, must be ≥ 0", cfg.StartIndex)
	}
	depth := cfg.HistoryDepth
	if depth == 0 {
		depth = tedMinHistory
	}
	if depth < tedMinHistory {
		return nil, fmt.Errorf("HistoryDepth=%d, the %s detector needs ≥ %d", depth, cfg.TED, tedMinHistory)
	}
	interp := cfg.Interp
	if interp == nil {
		interp = NearestInterpolator{}
	}
	margin := cfg.Lookahead
	if margin == 0 {
		margin = DefaultLookaheadMargin
	}
	if margin < interp.Lookahead() {
		return nil, fmt.Errorf("Lookahead=%d is less than the interpolator's right-context of %d", margin, interp.Lookahead())
	}
	return &TimingLoop{
		cfg:    cfg,
		interp: interp,
		filter: piFilter{alpha: cfg.Alpha, beta: cfg.Beta, sumClamp: cfg.SumClamp},
		hist:   newSymbolHistory(depth),
		state:  LoopState{InputIndex: cfg.StartIndex},
		margin: margin,
	}, nil
}

// EnableTrace starts per-tick diagnostic recording and returns the trace,
// which grows by one entry per subsequent tick. Call before the first Tick.
func (tl *TimingLoop) EnableTrace() *LoopTrace {
	tl.trace = &LoopTrace{}
	return tl.trace
}

// State returns a copy of the current loop state. No partial-tick state is
// ever visible: Tick updates the state only after completing fully.
func (tl *TimingLoop) State() LoopState { return tl.state }

// ErrorSum returns the loop filter's accumulated error sum, for
// loss-of-lock observation by the caller.
func (tl *TimingLoop) ErrorSum() float64 { return tl.filter.errSum }

// Ticks returns the number of symbols emitted so far.
func (tl *TimingLoop) Ticks() int { return tl.ticks }

// drained reports whether another tick would need samples past the
// reserved look-ahead. This is the normal end-of-stream condition.
func (tl *TimingLoop) drained(src SampleSource) bool {
	return tl.state.InputIndex+tl.margin >= src.Len()
}

// Tick runs one loop iteration against src and returns the recovered
// symbol. ok is false once the source is drained; no symbol is emitted and
// no state changes after that point.
func (tl *TimingLoop) Tick(src SampleSource) (x complex128, ok bool) {
	if tl.drained(src) {
		return 0, false
	}
	x = tl.interp.Interpolate(src, tl.state.InputIndex, tl.state.Mu)
	d := DecideQPSK(x)
	tl.hist.push(x, d)
	e := timingError(tl.cfg.TED, tl.hist)
	u := tl.filter.update(e)

	// Advance by the nominal symbol period plus the correction, then
	// carry whole samples into the index so 0 ≤ mu < 1 holds again.
	tl.state.Mu += tl.cfg.SamplesPerSymbol + u
	step := math.Floor(tl.state.Mu)
	tl.state.InputIndex += int(step)
	tl.state.Mu -= step
	if tl.state.InputIndex < 0 {
		// A violent startup transient must not run off the front of
		// the stream.
		tl.state.InputIndex = 0
	}

	if tl.trace != nil {
		tl.trace.append(e, u, tl.state.Mu, tl.state.InputIndex)
	}
	tl.ticks++
	return x, true
}

// Run drains src, emitting one recovered symbol per tick, and returns the
// symbols in tick order. Closing abort stops the loop after the tick in
// progress; a nil abort channel never fires. Output is deterministic for a
// given source and configuration.
func (tl *TimingLoop) Run(src SampleSource, abort <-chan struct{}) []complex128 {
	out := make([]complex128, 0, int(float64(src.Len())/tl.cfg.SamplesPerSymbol)+1)
	for {
		select {
		case <-abort:
			return out
		default:
		}
		x, ok := tl.Tick(src)
		if !ok {
			return out
		}
		out = append(out, x)
	}
}

// Stream runs the loop and sends each recovered symbol on out, closing out
// when the source drains or abort closes. Useful for feeding a live
// publisher or a downstream carrier-recovery stage.
func (tl *TimingLoop) Stream(src SampleSource, out chan<- complex128, abort <-chan struct{}) {
	defer close(out)
	for {
		x, ok := tl.Tick(src)
		if !ok {
			return
		}
		select {
		case out <- x:
		case <-abort:
			return
		}
	}
}
