package app

import (
	"errors"
	"io"
	"strings"
)

// FragmentSource yields response fragments in production order; io.EOF marks
// exhaustion. llm.Stream satisfies this.
type FragmentSource interface {
	Recv() (string, error)
}

// FragmentSink receives each fragment as it arrives, for live display.
type FragmentSink func(fragment string)

// AggregateStream reduces one fragment sequence to its concatenation,
// forwarding every fragment to sink in order before appending it. On a
// mid-stream error it returns the partial text accumulated so far together
// with the error; partial output is never discarded.
func AggregateStream(src FragmentSource, sink FragmentSink) (string, error) {
	var b strings.Builder
	for {
		frag, err := src.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return b.String(), err
		}
		if sink != nil {
			sink(frag)
		}
		b.WriteString(frag)
	}
}
