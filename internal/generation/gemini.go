package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is sent as x-goog-api-key.
	APIKey string

	// ImageModel generates images.
	ImageModel string

	// TextModel generates card game drafts.
	TextModel string

	// RequestTimeout bounds a single generateContent call.
	RequestTimeout time.Duration
}

// DefaultGeminiConfig returns the defaults.
func DefaultGeminiConfig() *GeminiConfig {
	return &GeminiConfig{
		BaseURL:        "https://generativelanguage.googleapis.com",
		ImageModel:     "gemini-2.5-flash-image",
		TextModel:      "gemini-2.5-flash",
		RequestTimeout: 120 * time.Second,
	}
}

// GeminiClient calls the generateContent endpoint. It does not retry.
type GeminiClient struct {
	config     *GeminiConfig
	httpClient *http.Client
}

// NewGeminiClient creates a client; a nil config uses the defaults.
func NewGeminiClient(config *GeminiConfig) *GeminiClient {
	if config == nil {
		config = DefaultGeminiConfig()
	}
	return &GeminiClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ImageModel returns the model used for images.
func (c *GeminiClient) ImageModel() string { return c.config.ImageModel }

// GenerateImage returns the first image part of the response, decoded.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.generate(ctx, c.config.ImageModel, &geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return nil, err
	}

	reason := ""
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || !strings.HasPrefix(p.InlineData.MimeType, "image/") {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode image data: %w", err)
			}
			return data, nil
		}
		if cand.FinishReason != "" && cand.FinishReason != "STOP" {
			reason = cand.FinishReason
		}
	}
	if reason != "" {
		return nil, fmt.Errorf("%w: finish reason %s", ErrNoImage, reason)
	}
	return nil, ErrNoImage
}

// GenerateJSON asks the text model for a JSON reply and returns its text.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) ([]byte, error) {
	temp := 0.8
	resp, err := c.generate(ctx, c.config.TextModel, &geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{ResponseMimeType: "application/json", Temperature: &temp},
	})
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(stripCodeFence(text)), nil
}

func (c *GeminiClient) generate(ctx context.Context, model string, req *geminiRequest) (*geminiResponse, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.config.BaseURL, "/"), model)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.TrimSpace(string(raw))
		var ge geminiError
		if json.Unmarshal(raw, &ge) == nil && ge.Error.Message != "" {
			msg = ge.Error.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("prompt blocked: %s", out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}
	return &out, nil
}

// stripCodeFence removes a ```json fence some models wrap replies in.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
