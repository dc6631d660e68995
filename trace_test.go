package symtrack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeLock(t *testing.T) {
	var tr LoopTrace
	// 100 ticks of transient decay followed by 100 ticks at zero.
	for i := 0; i < 100; i++ {
		tr.append(2.0/float64(i+1), 0, 0, 0)
	}
	for i := 0; i < 100; i++ {
		tr.append(0, 0, 0, 0)
	}
	rep := tr.AnalyzeLock(50, 1e-2)
	require.True(t, rep.Locked)
	assert.Equal(t, 0.0, rep.FinalMean)
	assert.Equal(t, 0.0, rep.FinalVar)
	// The below-threshold suffix begins inside the decay, before the
	// zero region.
	assert.Less(t, rep.LockTick, 150)
	assert.GreaterOrEqual(t, rep.LockTick, 49)
}

func TestAnalyzeLockNeverLocked(t *testing.T) {
	var tr LoopTrace
	for i := 0; i < 300; i++ {
		tr.append(1.5, 0, 0, 0)
	}
	rep := tr.AnalyzeLock(50, 1e-2)
	assert.False(t, rep.Locked)
	assert.InDelta(t, 1.5, rep.FinalMean, 1e-12)
}

func TestAnalyzeLockShortTrace(t *testing.T) {
	var tr LoopTrace
	tr.append(0, 0, 0, 0)
	assert.False(t, tr.AnalyzeLock(50, 1e-2).Locked)
	assert.False(t, tr.AnalyzeLock(0, 1e-2).Locked)
}

func TestWriteNPY(t *testing.T) {
	var tr LoopTrace
	for i := 0; i < 10; i++ {
		tr.append(float64(i), 0, float64(i)/10, i)
	}
	dir := t.TempDir()
	errPath := filepath.Join(dir, "err.npy")
	muPath := filepath.Join(dir, "mu.npy")
	require.NoError(t, tr.WriteNPY(errPath, muPath))

	f, err := os.Open(errPath)
	require.NoError(t, err)
	defer f.Close()
	var back []float64
	require.NoError(t, npyio.Read(f, &back))
	assert.Equal(t, tr.Err, back)

	// Empty paths skip writing without error.
	require.NoError(t, tr.WriteNPY("", ""))
}
