package responder

import (
	"log/slog"

	"httpclient-stack/lib/buffer"
	"httpclient-stack/message/status"
	"httpclient-stack/sd"
)

// decodeDocumentBody reads the body and interprets it. If the status is in
// the success class the bytes are parsed as a document; otherwise they are
// carried verbatim as an opaque string. Non-success bodies are never
// parsed.
//
// An absent body, an empty success body and a success body that fails to
// parse all come out as the undefined document. Poll sites and legacy
// callers rely on not getting a distinct error path here, so a parse
// failure is logged and absorbed.
func decodeDocumentBody(
	logger *slog.Logger, url string,
	httpStatus int, channels buffer.Channels, body *buffer.Array,
) sd.Document {
	raw := bodyBytes(channels, body)

	if !status.IsSuccess(httpStatus) {
		return sd.FromString(string(raw))
	}

	doc, err := sd.Parse(raw)
	if err != nil {
		logger.Debug("body of successful response is not a valid document",
			"url", url, "status", httpStatus, "err", err)
		return sd.Undefined()
	}
	return doc
}

// decodeRawBody reads the body and copies it as-is.
func decodeRawBody(channels buffer.Channels, body *buffer.Array) string {
	return string(bodyBytes(channels, body))
}

func bodyBytes(channels buffer.Channels, body *buffer.Array) []byte {
	if body == nil {
		return nil
	}
	return body.Bytes(channels.Out)
}
