// Package payload normalizes uploaded source archives. The wire form is
// either raw ZIP bytes or base64 text; both converge on one canonical
// raw-byte payload, which is re-encoded as base64 for the executor protocol.
package payload

import (
	"encoding/base64"
	"strings"

	"git.home.luguber.info/inful/buildrunner/internal/errors"
)

// DefaultMaxUpload bounds the raw request body (200 MiB).
const DefaultMaxUpload = 200 * 1024 * 1024

// MediaType classifies the declared wire encoding of an upload.
type MediaType int

const (
	// MediaUnknown is any content type the service does not accept.
	MediaUnknown MediaType = iota
	// MediaArchive means the body bytes are the ZIP file directly.
	MediaArchive
	// MediaEncoded means the body is base64 text decoding to a ZIP file.
	MediaEncoded
)

// DetectMediaType maps a Content-Type header value to a MediaType.
// Parameters after the media type (charset etc.) are ignored.
func DetectMediaType(contentType string) MediaType {
	ct := contentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))

	switch ct {
	case "application/zip", "application/octet-stream":
		return MediaArchive
	case "application/base64", "text/plain":
		return MediaEncoded
	default:
		return MediaUnknown
	}
}

// Decode produces the canonical raw-byte payload from the wire body.
//
// The size check runs against the raw wire length before any decoding so
// oversized bodies are rejected without wasted work, and before the media
// type check so size rejection always wins. On the encoded path, base64
// decode failures are deliberately not rejected: the original text bytes
// become the canonical payload and the executor stays the final arbiter
// of payload validity.
func Decode(body []byte, contentType string, maxUpload int) ([]byte, error) {
	if len(body) > maxUpload {
		return nil, errors.PayloadError("payload too large").
			WithContext("size", len(body)).
			WithContext("max", maxUpload).
			Build()
	}

	switch DetectMediaType(contentType) {
	case MediaArchive:
		return body, nil
	case MediaEncoded:
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
		if err != nil {
			// Forwarded as-is; see package doc.
			return body, nil
		}
		return decoded, nil
	default:
		return nil, errors.MediaError("unsupported media type").
			WithContext("content_type", contentType).
			Build()
	}
}

// EncodeForExecutor re-expresses the canonical payload as base64 text, the
// single encoding form the executor protocol accepts.
func EncodeForExecutor(canonical []byte) string {
	return base64.StdEncoding.EncodeToString(canonical)
}
