// Package client is the dispatch surface of the framework: a family of
// request-issuing operations that build a request, capture the supplied
// responder in a shared handle and hand both to the transfer engine.
// Everything interesting happens elsewhere — the engine drives the
// transfer and the responder interprets the outcome, possibly on a
// different goroutine than the caller's.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"httpclient-stack/engine"
	"httpclient-stack/lib/refcount"
	"httpclient-stack/responder"
	"httpclient-stack/sd"
)

type Client struct {
	engine engine.Engine

	logger *slog.Logger
	clock  clock.Clock

	opts Options
}

func New(e engine.Engine, logger *slog.Logger, clock clock.Clock, opts Options) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{engine: e, logger: logger, clock: clock, opts: opts}
}

// Get issues a GET with no request body.
func (c *Client) Get(ctx context.Context, url string, r responder.Contract, opts CallOptions) error {
	return c.issue(ctx, c.newRequest("GET", url, opts), r)
}

// GetQuery issues a GET with query parameters rendered from a map
// document into the URL.
func (c *Client) GetQuery(ctx context.Context, url string, query sd.Document, r responder.Contract, opts CallOptions) error {
	encoded, err := sd.FormEncode(query)
	if err != nil {
		return errors.Wrap(err, "encoding query")
	}
	if encoded != "" {
		url = url + "?" + encoded
	}
	return c.issue(ctx, c.newRequest("GET", url, opts), r)
}

// GetByteRange issues a GET restricted to count bytes starting at offset.
func (c *Client) GetByteRange(ctx context.Context, url string, offset, count int64, r responder.Contract, opts CallOptions) error {
	req := c.newRequest("GET", url, opts)
	req.Range = &engine.ByteRange{Offset: offset, Count: count}
	req.Headers.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+count-1))
	return c.issue(ctx, req, r)
}

// Head issues a HEAD. The responder should be built on the headers-only
// layer; no body will be delivered.
func (c *Client) Head(ctx context.Context, url string, r responder.Contract, opts CallOptions) error {
	return c.issue(ctx, c.newRequest("HEAD", url, opts), r)
}

// Post issues a POST with a document body.
func (c *Client) Post(ctx context.Context, url string, body sd.Document, r responder.Contract, opts CallOptions) error {
	payload, err := body.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshaling post body")
	}

	req := c.newRequest("POST", url, opts)
	req.Body = payload
	req.Headers.Set("Content-Type", "application/json")
	return c.issue(ctx, req, r)
}

// PostRaw issues a POST with a verbatim byte body.
func (c *Client) PostRaw(ctx context.Context, url string, data []byte, r responder.Contract, opts CallOptions) error {
	req := c.newRequest("POST", url, opts)
	req.Body = data
	req.Headers.Set("Content-Type", "application/octet-stream")
	return c.issue(ctx, req, r)
}

// PostForm issues a POST with a map document rendered as an urlencoded
// form body.
func (c *Client) PostForm(ctx context.Context, url string, form sd.Document, r responder.Contract, opts CallOptions) error {
	encoded, err := sd.FormEncode(form)
	if err != nil {
		return errors.Wrap(err, "encoding form body")
	}

	req := c.newRequest("POST", url, opts)
	req.Body = []byte(encoded)
	req.Headers.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.issue(ctx, req, r)
}

// PostFile issues a POST whose body is read from path by the engine.
func (c *Client) PostFile(ctx context.Context, url string, path string, r responder.Contract, opts CallOptions) error {
	req := c.newRequest("POST", url, opts)
	req.FilePath = path
	return c.issue(ctx, req, r)
}

// PostAsset issues a POST whose body is a stored asset, resolved by the
// engine from its identifier and type.
func (c *Client) PostAsset(ctx context.Context, url string, id uuid.UUID, typ AssetType, r responder.Contract, opts CallOptions) error {
	req := c.newRequest("POST", url, opts)
	req.Asset = &engine.AssetRef{ID: id, Type: string(typ)}
	return c.issue(ctx, req, r)
}

// Put issues a PUT with a document body.
func (c *Client) Put(ctx context.Context, url string, body sd.Document, r responder.Contract, opts CallOptions) error {
	payload, err := body.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshaling put body")
	}

	req := c.newRequest("PUT", url, opts)
	req.Body = payload
	req.Headers.Set("Content-Type", "application/json")
	return c.issue(ctx, req, r)
}

// Delete issues a DELETE with no request body.
func (c *Client) Delete(ctx context.Context, url string, r responder.Contract, opts CallOptions) error {
	return c.issue(ctx, c.newRequest("DELETE", url, opts), r)
}

// Move issues a WebDAV MOVE. destination is the complete serialized
// target URL, carried in the Destination header.
func (c *Client) Move(ctx context.Context, url, destination string, r responder.Contract, opts CallOptions) error {
	req := c.newRequest("MOVE", url, opts)
	req.Headers.Set("Destination", destination)
	return c.issue(ctx, req, r)
}

func (c *Client) newRequest(method, url string, opts CallOptions) *engine.Request {
	return &engine.Request{
		Method:     method,
		URL:        url,
		Headers:    opts.Headers.Clone(),
		KeepAlive:  opts.Conn == KeepAlive,
		DebugTrace: opts.DebugTrace,
	}
}

// issue captures r in a shared handle owned by the engine and queues the
// transfer. After this call the engine may invoke r's events from its own
// goroutine at any moment.
func (c *Client) issue(ctx context.Context, req *engine.Request, r responder.Contract) error {
	r.SetURL(req.URL)
	req.Timeout = r.Timeout()

	c.logger.Debug("issuing request",
		"method", req.Method, "url", req.URL, "responder", r.Name())

	h := refcount.New[responder.Contract](r, nil)
	if err := c.engine.Perform(ctx, req, h); err != nil {
		return errors.Wrapf(err, "performing %s %s", req.Method, req.URL)
	}
	return nil
}
