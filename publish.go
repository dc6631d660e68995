package symtrack

// Publish recovered symbols over a ZeroMQ PUB socket so a downstream
// carrier-recovery or decision stage can subscribe. Frames never enter the
// timing loop's hot path: the publisher drains a channel the loop feeds.

import (
	"fmt"

	zmq "github.com/pebbe/zmq4"
)

// symbolFrameSize is the number of symbols batched into one published frame.
const symbolFrameSize = 256

// PublishSymbols forwards symbols from its input channel to a ZMQ PUB
// socket on the given port until the channel closes or abort closes. Each
// message is two frames: a text header "SYMBOLS <firstTick> <count>" and an
// interleaved-float32 payload in the interchange format.
func PublishSymbols(symbols <-chan complex128, portnum int, abort <-chan struct{}) error {
	pubSocket, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return err
	}
	defer pubSocket.Close()
	if err = pubSocket.Bind(fmt.Sprintf("tcp://*:%d", portnum)); err != nil {
		return err
	}

	buf := make([]complex128, 0, symbolFrameSize)
	tick := 0
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		header := fmt.Sprintf("SYMBOLS %d %d", tick, len(buf))
		if _, err := pubSocket.SendMessage(header, EncodeIQ(buf)); err != nil {
			return err
		}
		tick += len(buf)
		buf = buf[:0]
		return nil
	}

	for {
		select {
		case <-abort:
			return flush()
		case x, ok := <-symbols:
			if !ok {
				return flush()
			}
			buf = append(buf, x)
			if len(buf) == symbolFrameSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}
