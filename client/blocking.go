package client

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"

	"httpclient-stack/lib/buffer"
	"httpclient-stack/responder"
	"httpclient-stack/sd"
)

// Result is the outcome of a blocking call: the final HTTP status and the
// body interpreted by the decode-or-passthrough rule (decoded document on
// 2xx, opaque string otherwise).
type Result struct {
	Status int
	Body   sd.Document
}

const defaultPollInterval = 10 * time.Millisecond

// BlockingGet issues a GET and waits for completion. The transfer engine
// progresses on its own goroutine; the calling goroutine polls.
func (c *Client) BlockingGet(ctx context.Context, url string) (Result, error) {
	capture := &documentCapture{}
	polled := responder.NewPolled(capture, responder.Options{Name: "BlockingGet"})

	if err := c.Get(ctx, url, polled, CallOptions{}); err != nil {
		return Result{}, err
	}
	if err := c.waitFinished(ctx, polled); err != nil {
		return Result{}, err
	}

	return Result{Status: polled.HTTPStatus(), Body: capture.body}, nil
}

// BlockingGetRaw issues a GET, waits for completion and writes the raw
// body into out without any decoding. It returns the final HTTP status.
func (c *Client) BlockingGetRaw(ctx context.Context, url string, out *bytes.Buffer) (int, error) {
	capture := &rawCapture{out: out}
	r := responder.WithRawBody(capture, responder.Options{Name: "BlockingGetRaw"})

	if err := c.Get(ctx, url, r, CallOptions{}); err != nil {
		return 0, err
	}
	if err := c.waitFinished(ctx, r); err != nil {
		return 0, err
	}

	return capture.status, nil
}

// BlockingPost issues a POST with a document body and waits for
// completion.
func (c *Client) BlockingPost(ctx context.Context, url string, body sd.Document) (Result, error) {
	capture := &documentCapture{}
	polled := responder.NewPolled(capture, responder.Options{Name: "BlockingPost"})

	if err := c.Post(ctx, url, body, polled, CallOptions{}); err != nil {
		return Result{}, err
	}
	if err := c.waitFinished(ctx, polled); err != nil {
		return Result{}, err
	}

	return Result{Status: polled.HTTPStatus(), Body: capture.body}, nil
}

// waitFinished polls the responder's finished flag until the engine
// publishes it or ctx is canceled.
func (c *Client) waitFinished(ctx context.Context, r responder.Contract) error {
	interval := c.opts.PollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}

	ticker := c.clock.Ticker(interval)
	defer ticker.Stop()

	for !r.Finished() {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for transfer to finish")
		case <-ticker.C:
		}
	}
	return nil
}

// documentCapture stores whatever the result dispatch produced, success
// or not. Fields are written on the engine goroutine before the finished
// flag is published, so they are safe to read once Finished() is true.
type documentCapture struct {
	body sd.Document
}

func (d *documentCapture) Result(content sd.Document) { d.body = content }

func (d *documentCapture) ErrorWithContent(status int, reason string, content sd.Document) {
	d.body = content
}

// rawCapture copies the verbatim body and final status.
type rawCapture struct {
	status int
	out    *bytes.Buffer
}

func (r *rawCapture) CompletedRaw(status int, reason string, channels buffer.Channels, body *buffer.Array) {
	r.status = status
	if body != nil {
		r.out.Write(body.Bytes(channels.Out))
	}
}
