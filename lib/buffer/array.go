package buffer

import (
	"bytes"
	"io"
)

// Channel tags a class of segments inside an [Array]. A transfer typically
// uses one channel for outgoing bytes and another for the received body.
type Channel uint8

// Channels names the channel pair of one transfer.
type Channels struct{ In, Out Channel }

type segment struct {
	ch   Channel
	data []byte
}

// Array is an append-only segmented byte buffer. Body bytes are handed to
// responders as (Channels, *Array) so they can be read without copying
// until someone actually needs them.
type Array struct {
	segments []segment
}

func NewArray() *Array { return &Array{} }

// Append records p on channel ch. p is copied; the caller may reuse it.
func (a *Array) Append(ch Channel, p []byte) {
	a.segments = append(a.segments, segment{ch: ch, data: bytes.Clone(p)})
}

// Len returns the total byte count recorded on ch.
func (a *Array) Len(ch Channel) uint {
	var n uint
	for _, s := range a.segments {
		if s.ch == ch {
			n += uint(len(s.data))
		}
	}
	return n
}

// Bytes returns a copy of all bytes on ch, in append order.
func (a *Array) Bytes(ch Channel) []byte {
	buf := make([]byte, 0, a.Len(ch))
	for _, s := range a.segments {
		if s.ch == ch {
			buf = append(buf, s.data...)
		}
	}
	return buf
}

// Reader returns a reader over the bytes on ch without copying segment data.
func (a *Array) Reader(ch Channel) io.Reader {
	readers := make([]io.Reader, 0, len(a.segments))
	for _, s := range a.segments {
		if s.ch == ch {
			readers = append(readers, bytes.NewReader(s.data))
		}
	}
	return io.MultiReader(readers...)
}
