package stream

import (
	"io"

	eng "github.com/reoring/cifdict/internal/engine"
)

// BlockSource wraps an engine.EventSource and exposes only the events of a
// single data block. It stops at the next block marker, which is not emitted
// but kept for the caller (see Boundary).
type BlockSource struct {
	inner eng.EventSource
	done  bool
	// boundary is the block marker that ended this block, if any.
	boundary *eng.Event
}

// NewBlockSource constructs a view over the events up to the next block marker.
func NewBlockSource(inner eng.EventSource) *BlockSource { return &BlockSource{inner: inner} }

func (b *BlockSource) NextEvent() (eng.Event, error) {
	if b.done {
		return eng.Event{}, io.EOF
	}
	ev, err := b.inner.NextEvent()
	if err != nil {
		if err == io.EOF {
			b.done = true
		}
		return eng.Event{}, err
	}
	if ev.Kind == eng.KindBlock {
		b.done = true
		b.boundary = &ev
		return eng.Event{}, io.EOF
	}
	return ev, nil
}

// Boundary returns the block marker that terminated this block. It reports
// false when the block ended with the underlying stream.
func (b *BlockSource) Boundary() (eng.Event, bool) {
	if b.boundary == nil {
		return eng.Event{}, false
	}
	return *b.boundary, true
}

func (b *BlockSource) Location() int64 { return b.inner.Location() }
