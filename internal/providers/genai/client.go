package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"topm/internal/domain"
	"topm/internal/imaging"
	"topm/internal/infra"
)

const (
	// maxImageRefs caps reference images per image-generation call; the API
	// payload limit makes more than two counterproductive.
	maxImageRefs = 2
	// maxInfoRefs caps reference images per metadata-extraction call.
	maxInfoRefs = 4
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a facade over the Gemini generateContent API offering the two
// capabilities the pipeline needs: generate a styled image from a prompt plus
// reference photos, and extract structured product metadata from photos.
// Image-generation failures are soft (empty result); metadata transport
// failures propagate so the caller can substitute the deterministic fallback.
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	textModel  string
	httpClient *http.Client
	logger     infra.Logger
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

type geminiGenerateContentRequest struct {
	Contents []geminiContent `json:"contents"`
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

// NewClient constructs a Gemini client with sane defaults. Callers may pass a
// nil HTTP client; a reusable one with a generation-friendly timeout is
// created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}
	textModel := opts.TextModel
	if textModel == "" {
		textModel = "gemini-2.0-flash"
	}

	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		imageModel: imageModel,
		textModel:  textModel,
		httpClient: client,
		logger:     logger,
	}
}

// Enabled reports whether the external capability is configured at all.
// Without an API key every call would fail, so callers short-circuit straight
// to local synthesis.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// ImageModel returns the configured image model identifier.
func (c *Client) ImageModel() string { return c.imageModel }

// TextModel returns the configured text model identifier.
func (c *Client) TextModel() string { return c.textModel }

// GenerateImage asks Gemini for a styled image conditioned on the prompt and
// at most the first two source images. The empty string signals a soft
// failure (transport error, API error, or no image in the response); the
// caller is expected to fall back to local synthesis. Transport errors never
// escape this method.
func (c *Client) GenerateImage(ctx context.Context, sources []string, prompt string) string {
	if !c.Enabled() {
		return ""
	}

	parts := []geminiPart{{Text: prompt}}
	for i := 0; i < len(sources) && i < maxImageRefs; i++ {
		parts = append(parts, inlineImagePart(sources[i]))
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.imageModel, parts, &response); err != nil {
		c.logger.Warn().Err(err).
			Str("model", c.imageModel).
			Msg("genai: image generation failed, caller will use local synthesis")
		return ""
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return "data:" + mime + ";base64," + part.InlineData.Data
			}
		}
	}
	return ""
}

// ExtractProductInfo asks Gemini to describe the product shown in at most the
// first four source images. The response text is parsed defensively (code
// fences stripped, first balanced object located, every field defaulted
// independently), so parsing never fails; only the call itself can.
func (c *Client) ExtractProductInfo(ctx context.Context, sources []string) (domain.ProductInfo, error) {
	if !c.Enabled() {
		return domain.ProductInfo{}, fmt.Errorf("extract product info: %w", domain.ErrProviderFailure)
	}

	parts := []geminiPart{{Text: productInfoPrompt}}
	for i := 0; i < len(sources) && i < maxInfoRefs; i++ {
		parts = append(parts, inlineImagePart(sources[i]))
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.textModel, parts, &response); err != nil {
		return domain.ProductInfo{}, fmt.Errorf("extract product info: %w", err)
	}

	var text strings.Builder
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}
	return ParseProductInfo(text.String()), nil
}

func inlineImagePart(source string) geminiPart {
	return geminiPart{InlineData: &geminiInlineData{
		MimeType: imaging.MIMEType(source),
		Data:     imaging.Base64Payload(source),
	}}
}

func (c *Client) invoke(ctx context.Context, model string, parts []geminiPart, out any) error {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Parts: parts}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
