// Package enginetest provides a scripted transfer engine. It performs no
// I/O: each request pops a script and a dedicated goroutine replays the
// scripted hops as responder events, honoring the delivery contract of
// [engine.Engine]. Tests use it to exercise responders and the dispatch
// surface across a real goroutine boundary.
package enginetest

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"httpclient-stack/engine"
	"httpclient-stack/lib/buffer"
	"httpclient-stack/lib/refcount"
	"httpclient-stack/message"
	"httpclient-stack/message/status"
	"httpclient-stack/responder"
)

// Hop is one response of a redirect chain. A zero Reason is filled from
// the status code's default phrase.
type Hop struct {
	Status  int
	Reason  string
	Headers []message.Field
}

// Script describes what the engine replays for one request.
type Script struct {
	// Hops is the response chain; the last entry is the final response.
	// Intermediate redirect hops are only advanced past when the
	// responder follows redirects; otherwise the first non-followed hop
	// becomes the final response.
	Hops []Hop

	// Body of the final response.
	Body []byte

	// Result is the transport verdict. Zero value is TransportOK.
	Result responder.TransportResult

	// Abandon simulates the owner dropping the transfer before it ever
	// starts: the handle is released and no event fires.
	Abandon bool

	Info responder.TransferInfo
}

// ScriptEngine is an [engine.Engine] fed by stubbed scripts, keyed by
// method and URL. Each stubbed script serves exactly one request.
type ScriptEngine struct {
	clock clock.Clock

	mu       sync.Mutex
	scripts  map[string][]Script
	requests []engine.Request

	wg sync.WaitGroup
}

var _ engine.Engine = (*ScriptEngine)(nil)

func New(clock clock.Clock) *ScriptEngine {
	return &ScriptEngine{
		clock:   clock,
		scripts: make(map[string][]Script),
	}
}

// Stub queues a script for the next request matching method and url.
func (e *ScriptEngine) Stub(method, url string, script Script) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := method + " " + url
	e.scripts[key] = append(e.scripts[key], script)
}

// Requests returns a snapshot of the requests performed so far.
func (e *ScriptEngine) Requests() []engine.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	clone := make([]engine.Request, len(e.requests))
	copy(clone, e.requests)
	return clone
}

// Wait blocks until all delivery goroutines have finished. Call it before
// goroutine-leak verification.
func (e *ScriptEngine) Wait() { e.wg.Wait() }

func (e *ScriptEngine) Perform(
	ctx context.Context, req *engine.Request, h *refcount.Handle[responder.Contract],
) error {
	e.mu.Lock()
	key := req.Method + " " + req.URL
	queue := e.scripts[key]
	if len(queue) == 0 {
		e.mu.Unlock()
		h.Release()
		return errors.Errorf("enginetest: no script for %q", key)
	}
	script := queue[0]
	e.scripts[key] = queue[1:]
	e.requests = append(e.requests, *req)
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer h.Release()

		if script.Abandon {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		e.deliver(h.Value(), script)
	}()

	return nil
}

// deliver replays the script on the engine goroutine: status-line and
// header events per hop, the headers-received event for the final hop
// when the responder wants headers, then the terminal event exactly once.
func (e *ScriptEngine) deliver(c responder.Contract, script Script) {
	started := e.clock.Now()

	final := Hop{Status: status.InternalServerError.Code}
	for i, hop := range script.Hops {
		c.StatusLineReceived()
		for _, f := range hop.Headers {
			c.HeaderReceived(f.Name, f.Value)
		}

		final = hop
		last := i == len(script.Hops)-1
		if !last && status.IsRedirect(hop.Status) && !c.FollowRedirects() {
			// The chain stops here; remaining hops are never reached.
			break
		}
	}

	reason := final.Reason
	if reason == "" {
		if s, ok := status.FromCode(final.Status); ok {
			reason = s.ReasonPhrase
		}
	}

	info := script.Info
	if info.TotalTime == 0 {
		info.TotalTime = e.clock.Since(started)
	}
	if info.SizeDownload == 0 {
		info.SizeDownload = float64(len(script.Body))
	}

	if c.NeedsHeaders() {
		c.HeadersReceived(final.Status, reason, &info)
	}

	channels := buffer.Channels{In: 0, Out: 1}
	body := buffer.NewArray()
	if len(script.Body) > 0 {
		body.Append(channels.Out, script.Body)
	}

	c.Finish(script.Result, final.Status, reason, channels, body)
}
