package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client talks to an OpenAI-compatible chat completions and embeddings API.
type Client struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	EmbedModel string
	dimension  int
	client     *http.Client
}

// NewClient creates a client for an OpenAI-compatible endpoint.
// dimension is the expected embedding vector size; every vector returned by
// Embed is validated against it.
func NewClient(baseURL, apiKey, chatModel, embedModel string, dimension int) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		ChatModel:  chatModel,
		EmbedModel: embedModel,
		dimension:  dimension,
		client:     http.DefaultClient,
	}
}

// Dimension returns the configured embedding dimensionality.
func (c *Client) Dimension() int {
	return c.dimension
}

// Verify checks that the embeddings endpoint is reachable and produces
// vectors of the configured dimension. Called once at startup; a failure
// here is fatal for classification.
func (c *Client) Verify(ctx context.Context) error {
	if _, err := c.Embed(ctx, "notesort startup check"); err != nil {
		return fmt.Errorf("embedding provider unavailable: %w", err)
	}
	return nil
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
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Suggest sends a chat completion request and returns the reply text.
func (c *Client) Suggest(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.ChatModel,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	var resp chatResponse
	if err := c.post(ctx, "/v1/chat/completions", payload, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for text, validated against the
// configured dimension.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := embeddingsRequest{
		Model: c.EmbedModel,
		Input: []string{text},
	}

	var resp embeddingsResponse
	if err := c.post(ctx, "/v1/embeddings", payload, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(resp.Data))
	}

	raw := resp.Data[0].Embedding
	if c.dimension > 0 && len(raw) != c.dimension {
		return nil, fmt.Errorf("expected vector size %d, got %d", c.dimension, len(raw))
	}

	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return vector, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
