package symtrack

import (
	"math"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/stat"
)

// LoopTrace records per-tick diagnostics when enabled on a TimingLoop. The
// loop itself never acts on these values: numeric divergence is a property
// of the signal and configuration, not a fault of the loop, so detecting a
// loss of lock is left to the caller.
type LoopTrace struct {
	Err        []float64 // timing error e(n)
	Correction []float64 // PI output u(n)
	Mu         []float64 // fractional phase after the tick
	InputIndex []int     // read position after the tick
}

func (t *LoopTrace) append(e, u, mu float64, idx int) {
	t.Err = append(t.Err, e)
	t.Correction = append(t.Correction, u)
	t.Mu = append(t.Mu, mu)
	t.InputIndex = append(t.InputIndex, idx)
}

// Len returns the number of recorded ticks.
func (t *LoopTrace) Len() int { return len(t.Err) }

// LockReport summarizes convergence of the timing error over a rolling
// window of ticks.
type LockReport struct {
	Locked    bool    // some window reached the threshold and all later windows stayed below it
	LockTick  int     // last tick of the first such window
	FinalMean float64 // mean |e| over the final window
	FinalVar  float64 // variance of |e| over the final window
}

// AnalyzeLock scans the mean of |e(n)| over rolling windows of the given
// size and reports the first tick after which every window mean stays below
// thresh. A trace shorter than one window reports not locked.
func (t *LoopTrace) AnalyzeLock(window int, thresh float64) LockReport {
	n := len(t.Err)
	if window <= 0 || n < window {
		return LockReport{}
	}
	abs := make([]float64, n)
	for i, e := range t.Err {
		abs[i] = math.Abs(e)
	}
	mean, variance := stat.MeanVariance(abs[n-window:], nil)
	rep := LockReport{FinalMean: mean, FinalVar: variance}

	// Walk windows from the end: the lock point is where the below-thresh
	// suffix begins.
	lockAt := -1
	for i := n - window; i >= 0; i-- {
		if stat.Mean(abs[i:i+window], nil) >= thresh {
			break
		}
		lockAt = i
	}
	if lockAt >= 0 {
		rep.Locked = true
		rep.LockTick = lockAt + window - 1
	}
	return rep
}

// WriteNPY saves the error and phase traces as NumPy arrays for offline
// analysis, one file per trace. An empty path skips that trace.
func (t *LoopTrace) WriteNPY(errPath, muPath string) error {
	if errPath != "" {
		if err := writeNPYFile(errPath, t.Err); err != nil {
			return err
		}
	}
	if muPath != "" {
		if err := writeNPYFile(muPath, t.Mu); err != nil {
			return err
		}
	}
	return nil
}

func writeNPYFile(path string, data []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return npyio.Write(f, data)
}
