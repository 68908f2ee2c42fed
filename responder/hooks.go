package responder

import (
	"fmt"

	"httpclient-stack/lib/buffer"
	"httpclient-stack/message"
	"httpclient-stack/sd"
)

// Each behavioral layer exposes exactly one hook interface. A handler is
// written against the interface of the layer it is built on and cannot be
// invoked through hooks of a lower layer, because the constructor of its
// layer never calls them. Implementing a hook that belongs to another
// layer is a programming error and is rejected at construction (see
// rejectForeignHooks).

// HeadersHandler is the hook of the headers-only layer.
type HeadersHandler interface {
	// HeadersCompleted receives the final hop's status and the
	// accumulated headers. The body, if any, is ignored.
	HeadersCompleted(status int, reason string, headers message.Headers)
}

// RawHandler is the hook of the raw-body layer.
type RawHandler interface {
	// CompletedRaw receives the undecoded body location.
	CompletedRaw(status int, reason string, channels buffer.Channels, body *buffer.Array)
}

// CompletedHandler is the hook of the raw-body layer's default decoding
// path: the body is decoded iff the status is 2xx, carried as an opaque
// string otherwise.
type CompletedHandler interface {
	Completed(status int, reason string, content sd.Document)
}

// ResultHandler is the success hook of the result layer.
type ResultHandler interface {
	// Result receives the decoded body of a success response.
	Result(content sd.Document)
}

// ContentErrorHandler may additionally be implemented by a ResultHandler
// to receive the (never-decoded) body of a failed response.
type ContentErrorHandler interface {
	ErrorWithContent(status int, reason string, content sd.Document)
}

// ErrorHandler may additionally be implemented by a ResultHandler to be
// informed of a failed response without its body.
type ErrorHandler interface {
	Error(status int, reason string)
}

type hookCheck struct {
	name string
	impl func(h any) bool
}

var (
	checkHeaders = hookCheck{"HeadersCompleted", func(h any) bool { _, ok := h.(HeadersHandler); return ok }}
	checkRaw     = hookCheck{"CompletedRaw", func(h any) bool { _, ok := h.(RawHandler); return ok }}
	checkDecoded = hookCheck{"Completed", func(h any) bool { _, ok := h.(CompletedHandler); return ok }}
	checkResult  = hookCheck{"Result", func(h any) bool { _, ok := h.(ResultHandler); return ok }}
)

// rejectForeignHooks panics when handler implements a hook that its layer
// does not dispatch. Such a hook would never be invoked; silently ignoring
// it hides bugs, so it is treated as a construction-time error.
func rejectForeignHooks(handler any, layer string, foreign ...hookCheck) {
	if handler == nil {
		return
	}
	for _, check := range foreign {
		if check.impl(handler) {
			panic(fmt.Sprintf(
				"responder: %T implements %s, which the %s layer never invokes",
				handler, check.name, layer,
			))
		}
	}
}
