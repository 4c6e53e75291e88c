package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	maxResponseBytes = 10 * 1024 * 1024
)

// Config configures an OpenRouterClient.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// Optional attribution headers understood by OpenRouter.
	SiteURL  string
	SiteName string

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// OpenRouterClient sends one chat-completion request per question.
// It never retries.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	siteURL    string
	siteName   string
	httpClient *http.Client
}

// NewOpenRouterClient creates a client. An empty BaseURL selects DefaultBaseURL.
func NewOpenRouterClient(cfg Config) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenRouterClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		siteURL:    cfg.SiteURL,
		siteName:   cfg.SiteName,
		httpClient: httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete asks model to answer question.
//
// A 200 response whose body has no answer content is a soft miss: the
// outcome carries NoAnswer and status 200 without an error.
func (c *OpenRouterClient) Complete(ctx context.Context, model, question string) Outcome {
	req, err := c.newRequest(ctx, model, question)
	if err != nil {
		return failed(0, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed(0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return failed(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	slog.Debug("Completion response", "model", model, "status", resp.StatusCode,
		"bytes", len(body), "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(resp.StatusCode, parseProviderError(resp.StatusCode, body))
	}
	if resp.StatusCode != http.StatusOK {
		return Outcome{Text: NoAnswer, Status: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return failed(resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		slog.Debug("Completion response has no answer content", "model", model)
		return Outcome{Text: NoAnswer, Status: resp.StatusCode}
	}

	return Outcome{
		Text:   strings.TrimSpace(*parsed.Choices[0].Message.Content),
		Status: resp.StatusCode,
	}
}

func (c *OpenRouterClient) newRequest(ctx context.Context, model, question string) (*http.Request, error) {
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: question},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}
	return req, nil
}
