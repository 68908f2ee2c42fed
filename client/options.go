package client

import (
	"time"

	"httpclient-stack/message"
)

// ConnBehavior says what happens to the underlying connection after the
// request completes. The zero value keeps it alive for reuse.
type ConnBehavior int

const (
	KeepAlive ConnBehavior = iota
	CloseAfter
)

// AssetType classifies a stored asset for the asset-flavored upload.
type AssetType string

const (
	AssetTexture  AssetType = "texture"
	AssetSound    AssetType = "sound"
	AssetObject   AssetType = "object"
	AssetNotecard AssetType = "notecard"
	AssetUnknown  AssetType = "unknown"
)

// Options configures a Client.
type Options struct {
	// PollInterval is how often blocking calls check for completion.
	// Zero means 10ms.
	PollInterval time.Duration
}

// CallOptions are the per-request knobs. The zero value means no extra
// headers, keep-alive connection reuse and no tracing.
type CallOptions struct {
	// Headers are sent in addition to whatever the dispatch adds itself.
	Headers message.Headers

	Conn ConnBehavior

	// DebugTrace asks the engine for verbose I/O tracing of this request.
	DebugTrace bool
}
