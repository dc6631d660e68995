package symtrack

// SampleSource supplies a sequential, randomly-indexable stream of complex
// baseband samples at a known oversampling ratio. Len is fixed for the
// lifetime of the source so the timing loop can reserve its look-ahead
// margin up front.
type SampleSource interface {
	// At returns the sample at non-negative index i. For streaming
	// sources, At blocks until the sample is available.
	At(i int) complex128
	// Len returns the total number of samples the source will supply.
	Len() int
}

// SliceSource adapts an in-memory sample slice to the SampleSource
// interface.
type SliceSource []complex128

// At returns the sample at index i.
func (s SliceSource) At(i int) complex128 { return s[i] }

// Len returns the number of samples.
func (s SliceSource) Len() int { return len(s) }

// StreamSource adapts a producer delivering fixed-size chunks into a
// SampleSource, a bounded single-producer/single-consumer handoff. At
// blocks until the chunk containing the requested index has arrived. The
// total length is declared up front; a producer that closes the chunk
// channel early leaves the tail reading as zero, and the timing loop's
// look-ahead guard keeps it from depending on those values.
type StreamSource struct {
	length int
	chunks <-chan []complex128
	abort  <-chan struct{}
	buf    []complex128 // prefix of the stream received so far
	closed bool
}

// NewStreamSource wraps a chunk channel as a SampleSource of the declared
// length. Closing abort unblocks any waiting At call; a nil abort channel
// is allowed and never fires.
func NewStreamSource(length int, chunks <-chan []complex128, abort <-chan struct{}) *StreamSource {
	return &StreamSource{
		length: length,
		chunks: chunks,
		abort:  abort,
		buf:    make([]complex128, 0, length),
	}
}

// Len returns the declared stream length.
func (s *StreamSource) Len() int { return s.length }

// At returns sample i, waiting for the producer if it has not arrived yet.
// Not safe for concurrent callers; the timing loop is the sole consumer.
func (s *StreamSource) At(i int) complex128 {
	for i >= len(s.buf) && !s.closed {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				s.closed = true
				break
			}
			s.buf = append(s.buf, chunk...)
		case <-s.abort:
			s.closed = true
		}
	}
	if i >= len(s.buf) {
		return 0
	}
	return s.buf[i]
}
