package responder

import (
	"httpclient-stack/lib/buffer"
	"httpclient-stack/message/status"
)

// Polled bridges synchronous call sites with the event-driven model.
// It dispatches like the result layer but snapshots the HTTP status and
// reason before delegating, so a consumer goroutine can poll Finished()
// and then read HTTPStatus()/Reason() without racing the completion
// callback.
type Polled struct {
	withResult

	status int
	reason string
}

// NewPolled builds a polled responder. h may be nil for pure pollers that
// only care about HTTPStatus()/Reason() after completion.
func NewPolled(h ResultHandler, opts Options) *Polled {
	rejectForeignHooks(h, "polled", checkHeaders, checkRaw, checkDecoded)
	return &Polled{
		withResult: withResult{base: newBase("Polled", opts), handler: h},
		status:     status.InternalServerError.Code,
	}
}

func (r *Polled) Finish(
	result TransportResult, httpStatus int, reason string,
	channels buffer.Channels, body *buffer.Array,
) {
	r.status = httpStatus
	r.reason = reason
	r.withResult.Finish(result, httpStatus, reason, channels, body)
}

// HTTPStatus returns the final HTTP status. Stable once Finished()
// reports true; before completion it reads 500.
func (r *Polled) HTTPStatus() int { return r.status }

// Reason returns the final reason phrase. Stable once Finished() reports
// true.
func (r *Polled) Reason() string { return r.reason }
