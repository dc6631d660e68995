// Package asyncbufio decouples file writing from the producing goroutine:
// data is queued on a channel and drained by a dedicated writer goroutine
// through a bufio.Writer, with periodic flushes.
package asyncbufio

import (
	"bufio"
	"io"
	"time"
)

// Writer queues byte slices for asynchronous buffered writing to an
// underlying io.Writer. Unlike a plain bufio.Writer, Write never blocks on
// the disk; unlike a fire-and-forget queue, Write blocks when the queue is
// full, so no data is ever dropped.
type Writer struct {
	writer        *bufio.Writer
	data          chan []byte   // queued writes
	flushNow      chan struct{} // ask the write loop to flush
	flushComplete chan struct{} // write loop signals flush or exit done
	err           error         // first write error, reported by Close
}

// NewWriter starts the write loop. channelDepth bounds the number of queued
// slices; flushInterval bounds how stale buffered data can get.
func NewWriter(w io.Writer, channelDepth int, flushInterval time.Duration) *Writer {
	aw := &Writer{
		writer:        bufio.NewWriter(w),
		data:          make(chan []byte, channelDepth),
		flushNow:      make(chan struct{}),
		flushComplete: make(chan struct{}),
	}
	go aw.writeLoop(flushInterval)
	return aw
}

// Write queues p for writing. The caller must not modify p afterward.
// Blocks when the queue is full.
func (aw *Writer) Write(p []byte) (int, error) {
	aw.data <- p
	return len(p), nil
}

// Flush drains the queue and flushes the underlying writer, blocking until
// complete.
func (aw *Writer) Flush() error {
	aw.flushNow <- struct{}{}
	<-aw.flushComplete
	return aw.err
}

// Close drains the queue, flushes, and stops the write loop. Calling Write
// or Flush after Close panics. Returns the first error encountered while
// writing, if any.
func (aw *Writer) Close() error {
	close(aw.flushNow)
	<-aw.flushComplete
	return aw.err
}

func (aw *Writer) writeLoop(flushInterval time.Duration) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case p := <-aw.data:
			aw.write(p)
		case _, ok := <-aw.flushNow:
			aw.drain()
			if e := aw.writer.Flush(); e != nil && aw.err == nil {
				aw.err = e
			}
			if !ok { // Close
				close(aw.flushComplete)
				return
			}
			aw.flushComplete <- struct{}{}
		case <-ticker.C:
			if e := aw.writer.Flush(); e != nil && aw.err == nil {
				aw.err = e
			}
		}
	}
}

func (aw *Writer) write(p []byte) {
	if _, e := aw.writer.Write(p); e != nil && aw.err == nil {
		aw.err = e
	}
}

func (aw *Writer) drain() {
	for {
		select {
		case p := <-aw.data:
			aw.write(p)
		default:
			return
		}
	}
}
