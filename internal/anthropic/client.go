// Package anthropic implements the remote inference gateway: a thin client
// for the upstream messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/calmmom/calmmom/internal/domain"
)

const apiVersion = "2023-06-01"

// Message is one turn in the upstream request payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContentBlock is one element of the upstream response content array.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// APIError is a non-2xx reply from the upstream API. The raw body is kept so
// the passthrough endpoint can echo upstream detail verbatim.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API returned status %d", e.StatusCode)
}

// Client calls the upstream chat-completion API with server-held credentials
// and a fixed model identifier and token cap.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// New creates a client. No application-level deadline is applied; timeouts
// are left to the transport's own defaults.
func New(baseURL, apiKey, model string, maxTokens int) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{},
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

type messagesResponse struct {
	Content json.RawMessage `json:"content"`
}

// Complete sends the full message history plus a system instruction and
// returns the upstream content array verbatim, so the passthrough endpoint
// can echo it without reshaping.
func (c *Client) Complete(ctx context.Context, system string, messages []Message) (json.RawMessage, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build messages request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call messages API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read messages response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode messages response: %w", err)
	}
	return parsed.Content, nil
}

// Reply sends the conversation and returns the assistant's text, joining the
// first text block of the response. This is the session controller's view of
// the gateway.
func (c *Client) Reply(ctx context.Context, system string, turns []domain.ChatTurn) (string, error) {
	messages := make([]Message, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, Message{Role: string(turn.Role), Content: turn.Text})
	}

	content, err := c.Complete(ctx, system, messages)
	if err != nil {
		return "", err
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return "", fmt.Errorf("decode content blocks: %w", err)
	}
	for _, block := range blocks {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("upstream response contained no text block")
}
