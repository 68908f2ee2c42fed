package responder

import "httpclient-stack/lib/buffer"

// headersOnly is the layer for requests where only headers matter.
// Redirects are followed and the body, if any, is never looked at.
type headersOnly struct {
	base
	handler HeadersHandler
}

// HeadersOnly builds a responder that delivers the final hop's status and
// headers to h and ignores the body. Meant for HEAD-style requests.
//
// h must not implement hooks of the body-decoding layers; that is a
// programming error and panics.
func HeadersOnly(h HeadersHandler, opts Options) Contract {
	rejectForeignHooks(h, "headers-only", checkRaw, checkDecoded, checkResult)
	return &headersOnly{base: newBase("HeadersOnly", opts), handler: h}
}

func (r *headersOnly) NeedsHeaders() bool     { return true }
func (r *headersOnly) FollowRedirects() bool  { return true }
func (r *headersOnly) RedirectStatusOK() bool { return true }

func (r *headersOnly) Finish(
	result TransportResult, status int, reason string,
	channels buffer.Channels, body *buffer.Array,
) {
	r.code = result
	if r.handler != nil {
		r.handler.HeadersCompleted(status, reason, r.headers.Clone())
	}
	r.markFinished()
}
