package responder

import "httpclient-stack/lib/buffer"

// rawBody is the layer that hands the completed transfer's body to its
// handler without interpretation.
type rawBody struct {
	base
	handler RawHandler
}

// WithRawBody builds a responder whose terminal event delivers the
// undecoded body location to h.
func WithRawBody(h RawHandler, opts Options) Contract {
	rejectForeignHooks(h, "raw-body", checkHeaders, checkDecoded, checkResult)
	return &rawBody{base: newBase("RawBody", opts), handler: h}
}

func (r *rawBody) Finish(
	result TransportResult, status int, reason string,
	channels buffer.Channels, body *buffer.Array,
) {
	r.code = result
	if r.handler != nil {
		r.handler.CompletedRaw(status, reason, channels, body)
	}
	r.markFinished()
}

// completed is the raw-body layer with the default raw hook in place:
// decode the body as a document iff the status is 2xx, carry it as an
// opaque string otherwise, and hand the outcome to the handler either way.
type completed struct {
	base
	handler CompletedHandler
}

// WithCompleted builds a responder that delivers the decode-or-passthrough
// interpretation of the body to h regardless of status class.
func WithCompleted(h CompletedHandler, opts Options) Contract {
	rejectForeignHooks(h, "completed", checkHeaders, checkRaw, checkResult)
	return &completed{base: newBase("Completed", opts), handler: h}
}

func (r *completed) Finish(
	result TransportResult, status int, reason string,
	channels buffer.Channels, body *buffer.Array,
) {
	r.code = result
	if r.handler != nil {
		content := decodeDocumentBody(r.logger, r.url, status, channels, body)
		r.handler.Completed(status, reason, content)
	}
	r.markFinished()
}
