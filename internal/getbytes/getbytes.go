// Package getbytes reinterprets numeric slices as byte slices (and back)
// without copying, using unsafe.Slice. The conversions assume the host's
// native byte order, which is little-endian on every platform we target;
// the interleaved I/Q interchange format is defined as little-endian.
package getbytes

import (
	"unsafe"
)

// FromSliceFloat32 converts a []float32 to []byte without copying.
func FromSliceFloat32(d []float32) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	outlength := uintptr(len(d)) * unsafe.Sizeof(d[0])
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), outlength)
}

// FromSliceFloat64 converts a []float64 to []byte without copying.
func FromSliceFloat64(d []float64) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	outlength := uintptr(len(d)) * unsafe.Sizeof(d[0])
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), outlength)
}

// FromSliceInt64 converts a []int64 to []byte without copying.
func FromSliceInt64(d []int64) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	outlength := uintptr(len(d)) * unsafe.Sizeof(d[0])
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), outlength)
}

// Float32SliceFrom converts a []byte to []float32 without copying. The
// byte length must be a multiple of 4; callers validate before converting.
func Float32SliceFrom(d []byte) []float32 {
	if len(d) == 0 {
		return []float32{}
	}
	outlength := uintptr(len(d)) / unsafe.Sizeof(float32(0))
	return unsafe.Slice((*float32)(unsafe.Pointer(&d[0])), outlength)
}
