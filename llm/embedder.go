package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"

	"clausecheck-backend/resilience"
)

// Embedding task types understood by the Gemini embedding API
const (
	TaskTypeQuery    = "RETRIEVAL_QUERY"
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
)

// EmbeddingDimensions is the vector width stored in pgvector
const EmbeddingDimensions = 768

// Embedder produces normalized embeddings for similarity search
type Embedder interface {
	EmbedText(ctx context.Context, text, taskType string) ([]float64, error)
}

// GeminiEmbedder calls the Gemini embedding API
type GeminiEmbedder struct {
	client *Client
}

// NewGeminiEmbedder creates an embedder over the shared client
func NewGeminiEmbedder(client *Client) *GeminiEmbedder {
	return &GeminiEmbedder{client: client}
}

// EmbeddingRequest represents an embedding API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents an embedding API response
type EmbeddingResponse struct {
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// EmbedText returns a unit-normalized 768-dimension embedding for text
func (e *GeminiEmbedder) EmbedText(ctx context.Context, text, taskType string) ([]float64, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, resilience.NewFatal(fmt.Errorf("GEMINI_API_KEY not set"))
	}

	reqBody := EmbeddingRequest{
		Model: "models/gemini-embedding-001",
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             taskType,
		OutputDimensionality: EmbeddingDimensions,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var embedding []float64
	err = e.client.retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		embedding, callErr = e.callEmbeddingAPI(ctx, apiKey, jsonData)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	// Normalize so cosine distance in pgvector behaves
	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}

	return embedding, nil
}

func (e *GeminiEmbedder) callEmbeddingAPI(ctx context.Context, apiKey string, jsonData []byte) ([]float64, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", embeddingAPI, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := e.client.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransient(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, resilience.NewTransient(apiErr)
		}
		return nil, resilience.NewFatal(apiErr)
	}

	var apiResp EmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(apiResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("API returned empty embedding")
	}

	return apiResp.Embedding.Values, nil
}
