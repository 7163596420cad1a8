// Package llm contains the Gemini-backed collaborator clients: clause
// extraction, batch semantic comparison, and embeddings. Responses are
// untrusted; each client decodes defensively and surfaces an explicit
// ParseError instead of propagating malformed payloads inward.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"context"

	"github.com/google/generative-ai-go/genai"

	"clausecheck-backend/resilience"
)

const (
	generationAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-pro-preview:generateContent"
	embeddingAPI  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"

	// maxPromptLength truncates oversized prompts to stay inside context limits
	maxPromptLength = 30000
)

// ParseError reports a collaborator payload that could not be decoded into
// the expected shape
type ParseError struct {
	Payload string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse collaborator response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Client is the shared Gemini REST client used by the collaborator
// implementations
type Client struct {
	httpClient   *http.Client
	retry        resilience.Policy
	geminiClient *genai.Client
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithGeminiClient sets the Gemini SDK client used as the credential check
func WithGeminiClient(client *genai.Client) ClientOption {
	return func(c *Client) {
		c.geminiClient = client
	}
}

// WithRetryPolicy overrides the default retry policy
func WithRetryPolicy(policy resilience.Policy) ClientOption {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Gemini REST client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		retry:      resilience.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generate calls the Gemini generation API and returns the concatenated
// candidate text. Transient API failures are retried per the client's policy.
func (c *Client) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if c.geminiClient == nil {
		// Generation requires the SDK client wired at startup; embedding-only
		// callers never reach this path
		return "", resilience.NewFatal(fmt.Errorf("gemini client not initialized"))
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		// Configuration error: fail fast, never retried
		return "", resilience.NewFatal(fmt.Errorf("GEMINI_API_KEY not set"))
	}

	if len(prompt) > maxPromptLength {
		log.Printf("Warning: Prompt too long (%d chars), truncating to %d chars", len(prompt), maxPromptLength)
		prompt = prompt[:maxPromptLength] + "\n\n[Content truncated due to length...]"
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var content string
	err = c.retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		content, callErr = c.callGenerationAPI(ctx, apiKey, jsonData)
		return callErr
	})
	if err != nil {
		return "", err
	}

	return content, nil
}

func (c *Client) callGenerationAPI(ctx context.Context, apiKey string, jsonData []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", generationAPI, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", resilience.NewTransient(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", resilience.NewTransient(apiErr)
		}
		return "", resilience.NewFatal(apiErr)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		log.Printf("Failed to decode response. Body: %s", string(bodyBytes))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", resilience.NewFatal(fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason))
	}

	if len(apiResp.Candidates) == 0 {
		log.Printf("API returned no candidates. Full response: %s", string(bodyBytes))
		return "", fmt.Errorf("API returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: Candidate %d finished with reason: %s", i, candidate.FinishReason)
		}
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("API returned empty content")
	}

	return result, nil
}

// stripCodeFence removes a surrounding markdown code fence the model often
// wraps JSON output in
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// clampConfidence normalizes an untrusted confidence into [0,1], defaulting
// to 0.5 for out-of-range values
func clampConfidence(confidence float64) float64 {
	if confidence < 0 || confidence > 1 {
		return 0.5
	}
	return confidence
}
