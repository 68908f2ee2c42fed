// Package responder implements the completion lifecycle for one HTTP
// request. A responder is created by the dispatch surface, handed to the
// transfer engine inside a shared handle, and receives transport events
// (status line, headers, terminal finish) exactly once per request. The
// behavioral layers in this package narrow how a completed transfer is
// interpreted: headers only, raw body, decoded document, cached for
// polling, or discarded.
package responder

import (
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"httpclient-stack/lib/buffer"
	"httpclient-stack/message"
)

// TransportResult is the transfer engine's verdict for one transfer.
// It says nothing about the HTTP status; a transfer can succeed and still
// carry a 500.
type TransportResult int

const (
	TransportOK TransportResult = iota
	TransportCouldntResolve
	TransportCouldntConnect
	TransportTimedOut
	TransportAborted
	TransportInternal
)

func (r TransportResult) OK() bool { return r == TransportOK }

func (r TransportResult) String() string {
	switch r {
	case TransportOK:
		return "ok"
	case TransportCouldntResolve:
		return "couldn't resolve host"
	case TransportCouldntConnect:
		return "couldn't connect"
	case TransportTimedOut:
		return "timed out"
	case TransportAborted:
		return "aborted"
	case TransportInternal:
		return "internal engine error"
	}
	return "unknown transport result"
}

// TransferInfo is a read-only metrics snapshot of a completed transfer.
// It is borrowed for the duration of the headers-completed callback only;
// responders must copy what they want to keep.
type TransferInfo struct {
	SizeDownload  float64
	SpeedDownload float64
	TotalTime     time.Duration
}

// TimeoutPolicy is the timeout configuration the transfer engine should
// apply to a request. It is carried by the responder so that every request
// type can declare its own policy without hidden global state.
type TimeoutPolicy struct {
	Connect  time.Duration
	Transfer time.Duration
}

func (p TimeoutPolicy) isZero() bool { return p == TimeoutPolicy{} }

// DefaultTimeoutPolicy applies when a responder is built with a zero
// Options.Timeout.
var DefaultTimeoutPolicy = TimeoutPolicy{
	Connect:  30 * time.Second,
	Transfer: 5 * time.Minute,
}

// Options configures a responder. The zero value is usable: a discard
// logger and DefaultTimeoutPolicy.
type Options struct {
	// Name identifies the responder in log output.
	Name string

	Logger  *slog.Logger
	Timeout TimeoutPolicy
}

// Contract is the lifecycle every responder implements.
//
// The event methods are invoked by the transfer engine only, from a single
// goroutine, in the order status-line(s) -> header(s) -> headers-received
// -> finish. If redirects occur, status-line/header pairs repeat per hop;
// the headers-received and finish events fire only for the final hop.
// Finish is the single authoritative "request is done" signal and fires
// exactly once; no event may be delivered after it. HeadersReceived is
// only delivered to responders whose NeedsHeaders reports true.
//
// Finished is safe to read from any goroutine. Once it observes true, the
// engine no longer touches the responder and the result accessors may be
// read without further synchronization.
type Contract interface {
	// Engine-facing events.
	StatusLineReceived()
	HeaderReceived(name, value string)
	HeadersReceived(status int, reason string, info *TransferInfo)
	Finish(result TransportResult, status int, reason string, channels buffer.Channels, body *buffer.Array)

	// Capability flags the engine consults.
	NeedsHeaders() bool
	FollowRedirects() bool
	RedirectStatusOK() bool

	// Consumer-facing accessors.
	Finished() bool
	ResultCode() TransportResult
	URL() string
	SetURL(url string)
	Name() string
	Timeout() TimeoutPolicy
}

// base carries the state and default event behavior shared by all layers.
// It is mutated by the engine goroutine only, until the finished flag is
// published.
type base struct {
	name string
	url  string

	headers message.Headers
	code    TransportResult

	timeout TimeoutPolicy
	logger  *slog.Logger

	finished atomic.Bool
}

func newBase(name string, opts Options) base {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	timeout := opts.Timeout
	if timeout.isZero() {
		timeout = DefaultTimeoutPolicy
	}

	if opts.Name != "" {
		name = opts.Name
	}

	return base{name: name, timeout: timeout, logger: logger}
}

// StatusLineReceived fires once per response hop. The page may have moved
// (302), in which case headers from the superseded hop were already
// collected and are starting over now. Everything except the cookies is
// dropped so that authentication cookies survive the redirect chain while
// stale headers never leak into the final set.
func (b *base) StatusLineReceived() {
	b.headers = b.headers.Subset("Set-Cookie")
}

func (b *base) HeaderReceived(name, value string) {
	b.headers.Add(name, value)
}

// HeadersReceived does nothing by default. Layers that care about headers
// override it or consume the stored headers at finish time.
func (b *base) HeadersReceived(status int, reason string, info *TransferInfo) {}

func (b *base) NeedsHeaders() bool     { return false }
func (b *base) FollowRedirects() bool  { return false }
func (b *base) RedirectStatusOK() bool { return b.FollowRedirects() }

// markFinished publishes the finished flag. It must be the last mutation
// of any Finish implementation: writes made before it happen-before any
// read that observes Finished() == true.
func (b *base) markFinished() { b.finished.Store(true) }

func (b *base) Finished() bool { return b.finished.Load() }

func (b *base) ResultCode() TransportResult { return b.code }

func (b *base) URL() string { return b.url }

// SetURL records the request URL for diagnostics. It must be called
// before the responder is handed to the engine.
func (b *base) SetURL(url string) { b.url = url }

func (b *base) Name() string { return b.name }

func (b *base) Timeout() TimeoutPolicy { return b.timeout }

// Headers returns a snapshot of the headers received so far. Stable only
// once Finished() reports true.
func (b *base) Headers() message.Headers { return b.headers.Clone() }

// Cookie returns the received cookie named key as "key=value", or "".
func (b *base) Cookie(key string) string { return b.headers.CookieValue(key) }
