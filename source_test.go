package symtrack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A loop fed by a StreamSource must produce exactly the symbols it would
// produce from the same samples held in memory.
func TestStreamSourceMatchesSliceSource(t *testing.T) {
	slice, _ := SimulateQPSK(SimQPSKConfig{Nsym: 2000, SPS: 4, DelaySamples: 1, NoiseStd: 0.05, Seed: 5})

	loopA, err := NewTimingLoop(SingleGainConfig(4, 0.3))
	require.NoError(t, err)
	want := loopA.Run(slice, nil)
	require.NotEmpty(t, want)

	chunks := make(chan []complex128)
	go func() {
		defer close(chunks)
		const chunkLen = 512
		for off := 0; off < len(slice); off += chunkLen {
			end := off + chunkLen
			if end > len(slice) {
				end = len(slice)
			}
			chunks <- slice[off:end]
		}
	}()
	src := NewStreamSource(len(slice), chunks, nil)

	loopB, err := NewTimingLoop(SingleGainConfig(4, 0.3))
	require.NoError(t, err)
	got := loopB.Run(src, nil)

	require.Equal(t, len(want), len(got))
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("tick %d: streamed run gave %v, in-memory run gave %v", i, got[i], want[i])
		}
	}
}

// An early-closing producer leaves the undelivered tail reading as zero
// instead of blocking the consumer forever.
func TestStreamSourceEarlyClose(t *testing.T) {
	chunks := make(chan []complex128, 1)
	chunks <- []complex128{1 + 1i, 2 + 2i}
	close(chunks)
	src := NewStreamSource(10, chunks, nil)

	require.Equal(t, 10, src.Len())
	require.Equal(t, 1+1i, src.At(0))
	require.Equal(t, 2+2i, src.At(1))
	if got := src.At(7); got != 0 {
		t.Errorf("undelivered sample read as %v, want 0", got)
	}
}

// Closing abort unblocks a waiting At call.
func TestStreamSourceAbort(t *testing.T) {
	chunks := make(chan []complex128) // producer never sends
	abort := make(chan struct{})
	src := NewStreamSource(4, chunks, abort)

	done := make(chan complex128)
	go func() { done <- src.At(2) }()
	close(abort)
	if got := <-done; got != 0 {
		t.Errorf("aborted read gave %v, want 0", got)
	}
}

func TestStreamFeedsChannel(t *testing.T) {
	slice, _ := SimulateQPSK(SimQPSKConfig{Nsym: 500, SPS: 4, Seed: 8})
	loop, err := NewTimingLoop(SingleGainConfig(4, 0.3))
	require.NoError(t, err)

	out := make(chan complex128, 16)
	go loop.Stream(slice, out, nil)
	var n int
	for range out {
		n++
	}
	// Same count Run would have produced.
	require.Equal(t, loop.Ticks(), n)
	require.Greater(t, n, 0)
}
