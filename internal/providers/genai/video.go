package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"thumbstudio/internal/media"
)

// ErrNoVideoReference is returned when a completed operation carries no video.
var ErrNoVideoReference = errors.New("genai: completed operation has no video reference")

// VideoRequest submits one long-running clip generation. The optional Image is
// the animation seed; without it the job is text-only.
type VideoRequest struct {
	Model       string
	Prompt      string
	Image       *media.Part
	AspectRatio string
}

// VideoOperation is the polled view of a long-running video job.
type VideoOperation struct {
	Name     string
	Done     bool
	VideoURI string
	Error    string
}

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
}

type veoInstance struct {
	Prompt string    `json:"prompt"`
	Image  *veoImage `json:"image,omitempty"`
}

type veoParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	SampleCount int    `json:"sampleCount,omitempty"`
}

type veoPredictRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoOperationResponse struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Response struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

// videoResolution is the fixed quality tier requested for every clip.
const videoResolution = "720p"

// StartVideo issues the long-running job and returns its operation name.
func (c *Client) StartVideo(ctx context.Context, req VideoRequest) (string, error) {
	instance := veoInstance{Prompt: req.Prompt}
	if req.Image != nil {
		instance.Image = &veoImage{
			BytesBase64Encoded: req.Image.Data,
			MimeType:           req.Image.MIMEType,
		}
	}
	payload := veoPredictRequest{
		Instances: []veoInstance{instance},
		Parameters: veoParameters{
			AspectRatio: req.AspectRatio,
			Resolution:  videoResolution,
			SampleCount: 1,
		},
	}
	var response veoOperationResponse
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(req.Model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return "", err
	}
	if strings.TrimSpace(response.Name) == "" {
		return "", errors.New("genai: video submission returned no operation name")
	}
	c.logger.Debug().Str("operation", response.Name).Msg("genai: video job submitted")
	return response.Name, nil
}

// QueryVideoOperation fetches the current state of a video job.
func (c *Client) QueryVideoOperation(ctx context.Context, name string) (VideoOperation, error) {
	var response veoOperationResponse
	if err := c.get(ctx, name, &response); err != nil {
		return VideoOperation{}, err
	}
	op := VideoOperation{Name: response.Name, Done: response.Done, Error: response.Error.Message}
	if samples := response.Response.GenerateVideoResponse.GeneratedSamples; len(samples) > 0 {
		op.VideoURI = samples[0].Video.URI
	}
	return op, nil
}

// DownloadVideo fetches the generated bytes from the returned location,
// appending the same credential the job ran under.
func (c *Client) DownloadVideo(ctx context.Context, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("genai: create download request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("genai: download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("genai: download video status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("genai: read video: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "video/mp4"
	}
	return blob, mime, nil
}
