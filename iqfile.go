package symtrack

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/symtrack/symtrack/internal/asyncbufio"
	"github.com/symtrack/symtrack/internal/getbytes"
)

// The batch interchange format is interleaved 32-bit little-endian floats:
// I, Q, I, Q, ... A stream with an odd number of float32 values cannot form
// complete samples and is rejected before any processing begins.

// ErrMalformedIQ reports interleaved I/Q input whose element count cannot
// form complete (I, Q) pairs.
var ErrMalformedIQ = errors.New("interleaved I/Q data does not form complete float32 pairs")

const iqWordSize = 4 // bytes per float32

// DecodeIQ converts raw interleaved-float32 bytes to complex samples. The
// whole buffer is validated before any conversion.
func DecodeIQ(raw []byte) ([]complex128, error) {
	if len(raw)%iqWordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of float32 words", ErrMalformedIQ, len(raw))
	}
	vals := getbytes.Float32SliceFrom(raw)
	if len(vals)%2 != 0 {
		return nil, fmt.Errorf("%w: %d values", ErrMalformedIQ, len(vals))
	}
	out := make([]complex128, len(vals)/2)
	for i := range out {
		out[i] = complex(float64(vals[2*i]), float64(vals[2*i+1]))
	}
	return out, nil
}

// EncodeIQ converts complex samples to interleaved float32 pairs. Values
// are narrowed to float32; a later DecodeIQ reproduces them exactly at that
// precision.
func EncodeIQ(samples []complex128) []byte {
	vals := make([]float32, 2*len(samples))
	for i, s := range samples {
		vals[2*i] = float32(real(s))
		vals[2*i+1] = float32(imag(s))
	}
	return getbytes.FromSliceFloat32(vals)
}

// ReadIQ reads an entire interleaved-float32 stream from r.
func ReadIQ(r io.Reader) ([]complex128, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeIQ(raw)
}

// ReadIQFile reads a whole I/Q file. The file size is checked before the
// contents are read, so a malformed file fails fast.
func ReadIQFile(path string) ([]complex128, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size()%(2*iqWordSize) != 0 {
		return nil, fmt.Errorf("%w: file %s holds %d bytes", ErrMalformedIQ, path, fi.Size())
	}
	return ReadIQ(f)
}

// iqWriteChunk is the number of samples encoded per queued write.
const iqWriteChunk = 16384

// WriteIQFile writes samples to path in the interchange format, using an
// asynchronous buffered writer so encoding overlaps the disk.
func WriteIQFile(path string, samples []complex128) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := asyncbufio.NewWriter(f, 16, 100*time.Millisecond)
	for len(samples) > 0 {
		n := len(samples)
		if n > iqWriteChunk {
			n = iqWriteChunk
		}
		if _, err := w.Write(EncodeIQ(samples[:n])); err != nil {
			break
		}
		samples = samples[n:]
	}
	werr := w.Close()
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// Float32Exact reports whether v survives a round trip through float32
// unchanged. Handy when validating interchange precision in callers.
func Float32Exact(v float64) bool {
	return float64(float32(v)) == v || math.IsNaN(v)
}
