package xboard

import (
	"bufio"
	"context"
	"io"

	"github.com/Ingo60/frech/pkg/search"
	"github.com/seekerror/logw"
)

// Input is a driver input message. The reader task and the search worker publish into
// the same queue. Sealed sum type.
type Input interface {
	input()
}

// Line is a command line from the reader.
type Line struct {
	Text string
}

// EOF signals that input was closed.
type EOF struct{}

// MV is a worker report of an improved principal variation.
type MV struct {
	SID uint64
	V   search.Variation
}

// NoMore signals that the worker completed its search.
type NoMore struct {
	SID uint64
}

// Forget signals that the worker abandoned all prior variations.
type Forget struct {
	SID uint64
}

// Remove signals that the worker invalidated a specific line.
type Remove struct {
	SID uint64
	V   search.Variation
}

// timeout is the driver-internal poll expiry.
type timeout struct{}

func (Line) input()    {}
func (EOF) input()     {}
func (MV) input()      {}
func (NoMore) input()  {}
func (Forget) input()  {}
func (Remove) input()  {}
func (timeout) input() {}

// readInput publishes input lines into the queue and takes a reply token after each
// publish: true to continue reading, false to stop. Publishes EOF when the input is
// exhausted.
func readInput(ctx context.Context, in io.Reader, queue chan<- Input, tokens <-chan bool) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		logw.Debugf(ctx, "<< %v", scanner.Text())

		queue <- Line{Text: scanner.Text()}
		if !<-tokens {
			return
		}
	}
	queue <- EOF{}
}
