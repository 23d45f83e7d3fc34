package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"thumbstudio/internal/media"
)

func TestStartVideo(t *testing.T) {
	var captured veoPredictRequest
	var path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"name":"operations/abc123"}`))
	})

	name, err := client.StartVideo(context.Background(), VideoRequest{
		Model:       "veo-3.0-fast-generate-001",
		Prompt:      "animate this thumbnail",
		Image:       &media.Part{MIMEType: "image/png", Data: "aW1n"},
		AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatalf("StartVideo returned error: %v", err)
	}
	if name != "operations/abc123" {
		t.Fatalf("operation name = %q", name)
	}
	if !strings.Contains(path, ":predictLongRunning") {
		t.Fatalf("path = %q, want predictLongRunning", path)
	}
	if len(captured.Instances) != 1 {
		t.Fatalf("instances = %+v", captured.Instances)
	}
	inst := captured.Instances[0]
	if inst.Prompt != "animate this thumbnail" {
		t.Fatalf("prompt = %q", inst.Prompt)
	}
	if inst.Image == nil || inst.Image.BytesBase64Encoded != "aW1n" || inst.Image.MimeType != "image/png" {
		t.Fatalf("image = %+v", inst.Image)
	}
	p := captured.Parameters
	if p.AspectRatio != "16:9" || p.Resolution != "720p" || p.SampleCount != 1 {
		t.Fatalf("parameters = %+v", p)
	}
}

func TestStartVideoRequiresOperationName(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	if _, err := client.StartVideo(context.Background(), VideoRequest{Model: "m", Prompt: "x"}); err == nil {
		t.Fatal("expected error for missing operation name")
	}
}

func TestQueryVideoOperation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/operations/abc123" {
			t.Errorf("path = %q, want /operations/abc123", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"name": "operations/abc123",
			"done": true,
			"response": {"generateVideoResponse": {"generatedSamples": [{"video": {"uri": "files/video-1"}}]}}
		}`))
	})

	op, err := client.QueryVideoOperation(context.Background(), "operations/abc123")
	if err != nil {
		t.Fatalf("QueryVideoOperation returned error: %v", err)
	}
	if !op.Done {
		t.Fatal("Done = false, want true")
	}
	if op.VideoURI != "files/video-1" {
		t.Fatalf("VideoURI = %q", op.VideoURI)
	}
}

func TestQueryVideoOperationError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"operations/abc123","done":true,"error":{"message":"safety block"}}`))
	})
	op, err := client.QueryVideoOperation(context.Background(), "operations/abc123")
	if err != nil {
		t.Fatalf("QueryVideoOperation returned error: %v", err)
	}
	if op.Error != "safety block" {
		t.Fatalf("Error = %q", op.Error)
	}
}

func TestDownloadVideoAppendsKey(t *testing.T) {
	var gotKey, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("mp4-bytes"))
	})

	blob, mime, err := client.DownloadVideo(context.Background(), "files/video-1")
	if err != nil {
		t.Fatalf("DownloadVideo returned error: %v", err)
	}
	if string(blob) != "mp4-bytes" {
		t.Fatalf("blob = %q", blob)
	}
	if mime != "video/mp4" {
		t.Fatalf("mime = %q", mime)
	}
	if gotKey != "test-key" {
		t.Fatalf("key = %q, want test-key", gotKey)
	}
	if gotPath != "/files/video-1" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestDownloadVideoDefaultsContentType(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("mp4-bytes"))
	})
	_, mime, err := client.DownloadVideo(context.Background(), "files/video-1")
	if err != nil {
		t.Fatalf("DownloadVideo returned error: %v", err)
	}
	if mime != "video/mp4" {
		t.Fatalf("mime = %q, want video/mp4", mime)
	}
}
