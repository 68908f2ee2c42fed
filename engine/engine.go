// Package engine defines the boundary to the transfer engine: the
// external actor that performs the network I/O and drives a responder's
// lifecycle events. This module contains no real transport; it only
// consumes already-parsed status/header/body events through this
// interface. See enginetest for a scripted implementation.
package engine

import (
	"context"

	"github.com/google/uuid"

	"httpclient-stack/lib/refcount"
	"httpclient-stack/message"
	"httpclient-stack/responder"
)

// ByteRange restricts a GET to count bytes starting at offset.
type ByteRange struct {
	Offset int64
	Count  int64
}

// AssetRef identifies a stored asset to upload instead of an in-memory
// body. Resolving the reference is the engine's concern.
type AssetRef struct {
	ID   uuid.UUID
	Type string
}

// Request carries everything the engine needs to perform one transfer.
// The responder holds no ownership of it; the engine consumes it.
type Request struct {
	Method string
	URL    string

	Headers message.Headers

	// Body is the serialized request payload, already marshaled by the
	// dispatch surface. At most one of Body, FilePath and Asset is set.
	Body     []byte
	FilePath string
	Asset    *AssetRef

	Range *ByteRange

	// KeepAlive reports whether the underlying connection may be reused
	// after this request completes.
	KeepAlive bool

	// DebugTrace asks the engine to emit verbose I/O tracing.
	DebugTrace bool

	Timeout responder.TimeoutPolicy
}

// Engine performs transfers and drives responder events.
//
// Perform takes shared ownership of the responder: the engine must hold
// its handle reference for the entire in-flight duration and release it
// only after the responder's Finish event has returned, or when the
// request is abandoned before ever starting, in which case no event fires
// at all. Events are delivered from a single engine goroutine in the
// order status-line(s), header(s), headers-received, finish; the
// headers-received event is delivered only when the responder's
// NeedsHeaders capability reports true; finish fires exactly once.
//
// Perform itself returns as soon as the transfer is queued; an error
// means the transfer was never started and the handle was released.
type Engine interface {
	Perform(ctx context.Context, req *Request, h *refcount.Handle[responder.Contract]) error
}
