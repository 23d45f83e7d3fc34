package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestPartFromDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	part, err := PartFromDataURL("data:image/png;base64," + payload)
	if err != nil {
		t.Fatalf("PartFromDataURL returned error: %v", err)
	}
	if part.MIMEType != "image/png" {
		t.Fatalf("MIMEType = %q, want %q", part.MIMEType, "image/png")
	}
	if part.Data != payload {
		t.Fatalf("Data = %q, want %q", part.Data, payload)
	}
	data, err := part.Bytes()
	if err != nil {
		t.Fatalf("Bytes returned error: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("decoded payload = %q, want %q", data, "png-bytes")
	}
}

func TestPartFromDataURLRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "plain url", input: "https://example.com/image.png"},
		{name: "missing base64 marker", input: "data:image/png,rawdata"},
		{name: "missing payload", input: "data:image/png;base64,"},
		{name: "missing mime", input: "data:;base64,aGk="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PartFromDataURL(tt.input); !errors.Is(err, ErrInvalidDataURL) {
				t.Fatalf("error = %v, want ErrInvalidDataURL", err)
			}
		})
	}
}

func TestPartFromDataURLTruncatesLongInputInError(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 200)
	_, err := PartFromDataURL(long)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), strings.Repeat("a", 120)) {
		t.Fatalf("error message contains full input: %v", err)
	}
}

func TestPartFromReader(t *testing.T) {
	part, err := PartFromReader(bytes.NewReader([]byte{1, 2, 3}), "image/webp")
	if err != nil {
		t.Fatalf("PartFromReader returned error: %v", err)
	}
	if part.MIMEType != "image/webp" {
		t.Fatalf("MIMEType = %q, want %q", part.MIMEType, "image/webp")
	}
	roundTrip, err := PartFromDataURL(part.DataURL())
	if err != nil {
		t.Fatalf("DataURL did not round trip: %v", err)
	}
	if roundTrip != part {
		t.Fatalf("round trip = %+v, want %+v", roundTrip, part)
	}
}

func TestPartFromReaderDefaultsMimeType(t *testing.T) {
	part, err := PartFromReader(bytes.NewReader([]byte("x")), "  ")
	if err != nil {
		t.Fatalf("PartFromReader returned error: %v", err)
	}
	if part.MIMEType != "application/octet-stream" {
		t.Fatalf("MIMEType = %q, want application/octet-stream", part.MIMEType)
	}
}

func TestPartFromReaderRejectsEmpty(t *testing.T) {
	if _, err := PartFromReader(bytes.NewReader(nil), "image/png"); err == nil {
		t.Fatal("expected error for empty stream")
	}
}
