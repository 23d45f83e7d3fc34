package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Part is the provider's inline-binary request fragment: a mime type plus the
// base64 payload without any data-URL prefix.
type Part struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// ErrInvalidDataURL is returned when a string does not match the strict
// data:<mime>;base64,<payload> shape.
var ErrInvalidDataURL = errors.New("media: not a base64 data url")

var dataURLPattern = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// PartFromReader consumes a binary stream and encodes it as an inline part.
func PartFromReader(r io.Reader, mimeType string) (Part, error) {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Part{}, fmt.Errorf("media: read file: %w", err)
	}
	if len(data) == 0 {
		return Part{}, errors.New("media: empty file")
	}
	return Part{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}, nil
}

// PartFromDataURL parses a data:<mime>;base64,<payload> string. The match is a
// hard precondition: anything else fails with ErrInvalidDataURL.
func PartFromDataURL(dataURL string) (Part, error) {
	m := dataURLPattern.FindStringSubmatch(dataURL)
	if m == nil {
		return Part{}, fmt.Errorf("%w: %q", ErrInvalidDataURL, truncateForError(dataURL))
	}
	return Part{MIMEType: m[1], Data: m[2]}, nil
}

// DataURL renders the part back into a browser-renderable handle.
func (p Part) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + p.Data
}

// Bytes decodes the base64 payload.
func (p Part) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("media: decode payload: %w", err)
	}
	return data, nil
}

func truncateForError(s string) string {
	const max = 48
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
