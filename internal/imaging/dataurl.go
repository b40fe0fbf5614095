package imaging

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultMIME is assumed when a payload carries no recognizable data URI
// header. Uploaded catalog photos are overwhelmingly JPEG.
const DefaultMIME = "image/jpeg"

// EncodeDataURI wraps raw image bytes into a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	if mime == "" {
		mime = DefaultMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a data URI into its MIME type and decoded payload.
// A bare base64 string (no "data:" header) is accepted and decoded with the
// default MIME type.
func DecodeDataURI(uri string) (string, []byte, error) {
	mime := MIMEType(uri)
	payload := Base64Payload(uri)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri payload: %w", err)
	}
	return mime, data, nil
}

// MIMEType extracts the MIME type from a data URI, falling back to
// DefaultMIME when the header is absent or malformed.
func MIMEType(uri string) string {
	if !strings.HasPrefix(uri, "data:") {
		return DefaultMIME
	}
	rest := uri[len("data:"):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return DefaultMIME
	}
	mime := rest[:sep]
	if !strings.HasPrefix(mime, "image/") {
		return DefaultMIME
	}
	return mime
}

// Base64Payload returns the base64 payload of a data URI. Strings without a
// data URI header are returned unchanged so callers can pass raw base64
// straight through.
func Base64Payload(uri string) string {
	if !strings.HasPrefix(uri, "data:") {
		return uri
	}
	sep := strings.Index(uri, ";base64,")
	if sep < 0 {
		return uri
	}
	return uri[sep+len(";base64,"):]
}
