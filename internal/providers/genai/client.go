package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"thumbstudio/internal/media"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client is a thin facade over the Gemini REST surface so providers can focus
// on translating domain requests to API calls. It is cheap to construct and is
// meant to be rebuilt per call: the active credential may change between calls
// within one session.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ErrNoImageData is returned when no response candidate carried inline binary data.
var ErrNoImageData = errors.New("genai: no image data in any response candidate")

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("genai: empty model response")

const defaultTimeout = 180 * time.Second

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a generation-friendly timeout is used.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64            `json:"temperature,omitempty"`
	CandidateCount   int                `json:"candidateCount,omitempty"`
	ResponseMimeType string             `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage    `json:"responseSchema,omitempty"`
	ImageConfig      *geminiImageConfig `json:"imageConfig,omitempty"`
	Seed             *int32             `json:"seed,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// TextRequest asks a text model for a completion, optionally constrained to a
// structured-output JSON schema and accompanied by inline media parts.
type TextRequest struct {
	Model          string
	Instruction    string
	Parts          []media.Part
	ResponseSchema json.RawMessage
	Temperature    float64
}

// GenerateText returns the first non-empty text part of the first candidate.
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	parts := []geminiPart{{Text: req.Instruction}}
	for _, p := range req.Parts {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: p.MIMEType, Data: p.Data}})
	}
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    req.Temperature,
			CandidateCount: 1,
		},
	}
	if len(req.ResponseSchema) > 0 {
		payload.GenerationConfig.ResponseMimeType = "application/json"
		payload.GenerationConfig.ResponseSchema = req.ResponseSchema
	}
	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(req.Model)), payload, &response); err != nil {
		return "", err
	}
	text := firstText(response)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ImageRequest generates an image from a prompt plus optional reference parts.
// ImageSize must be empty for models that do not accept a resolution tier.
type ImageRequest struct {
	Model       string
	Prompt      string
	References  []media.Part
	AspectRatio string
	ImageSize   string
	Seed        *int32
}

// GenerateImage returns the first inline-binary part of the first candidate.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (media.Part, error) {
	parts := []geminiPart{{Text: req.Prompt}}
	for _, ref := range req.References {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: ref.MIMEType, Data: ref.Data}})
	}
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount: 1,
			ImageConfig: &geminiImageConfig{
				AspectRatio: req.AspectRatio,
				ImageSize:   req.ImageSize,
			},
			Seed: req.Seed,
		},
	}
	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(req.Model)), payload, &response); err != nil {
		return media.Part{}, err
	}
	return firstInlinePart(response)
}

// EditRequest applies one instruction to a source image. The request carries
// exactly the source part followed by the instruction text and no image
// configuration: the model preserves the source dimensions by default.
type EditRequest struct {
	Model       string
	Source      media.Part
	Instruction string
}

// EditImage returns the edited image with the same extraction rule as GenerateImage.
func (c *Client) EditImage(ctx context.Context, req EditRequest) (media.Part, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{MimeType: req.Source.MIMEType, Data: req.Source.Data}},
				{Text: req.Instruction},
			},
		}},
	}
	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(req.Model)), payload, &response); err != nil {
		return media.Part{}, err
	}
	return firstInlinePart(response)
}

func firstText(resp geminiGenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func firstInlinePart(resp geminiGenerateContentResponse) (media.Part, error) {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return media.Part{MIMEType: mime, Data: part.InlineData.Data}, nil
			}
		}
	}
	return media.Part{}, ErrNoImageData
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("genai: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("genai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("genai: invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("genai: decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strings.TrimLeft(path, "/"), nil)
	if err != nil {
		return fmt.Errorf("genai: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("genai: invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("genai: decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var apiErr geminiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("genai: gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		return fmt.Errorf("genai: gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return fmt.Errorf("genai: gemini status %d", resp.StatusCode)
}
