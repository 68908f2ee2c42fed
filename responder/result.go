package responder

import (
	"httpclient-stack/lib/buffer"
	"httpclient-stack/message/status"
	"httpclient-stack/sd"
)

// withResult is the layer for responders that expect a document in the
// body of a successful reply. The terminal event branches on the status
// class: success goes to the Result hook with the decoded body, anything
// else goes to the error path with the body carried raw.
type withResult struct {
	base
	handler ResultHandler
}

// WithResult builds a responder on the result layer. h receives the
// decoded body of a 2xx response through Result. For any other outcome
// the error path runs: ErrorWithContent if h implements it, otherwise a
// default that logs and calls Error if h implements that, otherwise a
// default that only logs. A transport failure also takes the error path;
// the status passed there is whatever the engine reported and should be
// treated as unreliable.
func WithResult(h ResultHandler, opts Options) Contract {
	rejectForeignHooks(h, "result", checkHeaders, checkRaw, checkDecoded)
	return &withResult{base: newBase("WithResult", opts), handler: h}
}

func (r *withResult) Finish(
	result TransportResult, httpStatus int, reason string,
	channels buffer.Channels, body *buffer.Array,
) {
	r.code = result
	r.dispatch(httpStatus, reason, channels, body)
	r.markFinished()
}

func (r *withResult) dispatch(
	httpStatus int, reason string,
	channels buffer.Channels, body *buffer.Array,
) {
	content := decodeDocumentBody(r.logger, r.url, httpStatus, channels, body)

	if r.code.OK() && status.IsSuccess(httpStatus) {
		if r.handler != nil {
			r.handler.Result(content)
		}
		return
	}

	r.errorWithContent(httpStatus, reason, content)
}

func (r *withResult) errorWithContent(httpStatus int, reason string, content sd.Document) {
	if h, ok := r.handler.(ContentErrorHandler); ok {
		h.ErrorWithContent(httpStatus, reason, content)
		return
	}

	r.logger.Info("request failed",
		"responder", r.name, "url", r.url,
		"result", r.code.String(), "status", httpStatus, "reason", reason)

	if h, ok := r.handler.(ErrorHandler); ok {
		h.Error(httpStatus, reason)
	}
}

// discard is a result-layer responder whose success hook does nothing.
type discardHandler struct{}

func (discardHandler) Result(content sd.Document) {}

// Discard builds a responder for fire-and-forget requests: the reply, if
// any, is ignored, but the lifecycle guarantees still hold and failures
// still reach the default logging path.
func Discard(opts Options) Contract {
	return &withResult{base: newBase("Discard", opts), handler: discardHandler{}}
}
