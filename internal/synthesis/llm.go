package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// LLMClient abstracts the language-model completion call. The model is an
// opaque black box to the synthesizer; only the completion text comes back.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
)

// OpenAIChatClient calls the OpenAI chat completions endpoint.
type OpenAIChatClient struct {
	client   *http.Client
	apiKey   string
	endpoint string
	model    string
}

func NewOpenAIChatClient(client *http.Client, apiKey, endpoint, model string) *OpenAIChatClient {
	return &OpenAIChatClient{
		client:   client,
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
	}
}

func (c *OpenAIChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, map[string]string{
			"role":    "system",
			"content": systemPrompt,
		})
	}
	messages = append(messages, map[string]string{
		"role":    "user",
		"content": userPrompt,
	})

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  defaultMaxTokens,
		"temperature": defaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion API error (status %d): %s", resp.StatusCode, string(data))
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return payload.Choices[0].Message.Content, nil
}
