// Package curriculum generates week-by-week course outlines with the
// Anthropic Messages API. The model is asked for strict JSON; the response
// is defensively extracted from whatever prose or fences surround it.
package curriculum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-3-5-sonnet-20241022"
	maxTokens        = 4096
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("anthropic api key not set")

// ErrNoJSON is returned when no JSON object can be located in the model output.
var ErrNoJSON = errors.New("no json object in model output")

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: anthropicBaseURL,
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a local server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Request describes the course the organizer wants an outline for.
type Request struct {
	Style         string `json:"style"`
	Level         string `json:"level"`
	DurationWeeks int    `json:"duration_weeks"`
	SessionLength string `json:"session_length,omitempty"`
	Focus         string `json:"focus,omitempty"`
}

// Curriculum is the generated outline.
type Curriculum struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Weeks       []Week `json:"weeks"`
}

// Week is one week of the outline.
type Week struct {
	Week       int      `json:"week"`
	Theme      string   `json:"theme"`
	Objectives []string `json:"objectives"`
	Drills     []string `json:"drills"`
}

// Generate asks the model for a curriculum and parses its JSON reply.
func (c *Client) Generate(ctx context.Context, req Request) (*Curriculum, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	body, err := json.Marshal(messagesRequest{
		Model:     anthropicModel,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: buildPrompt(req)}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic api error (%d): %s", resp.StatusCode, truncateBody(respBody))
	}

	var mr messagesResponse
	if err := json.Unmarshal(respBody, &mr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(mr.Content) == 0 {
		return nil, errors.New("empty response content")
	}

	raw, err := ExtractJSON(mr.Content[0].Text)
	if err != nil {
		return nil, err
	}
	var cur Curriculum
	if err := json.Unmarshal([]byte(raw), &cur); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	return &cur, nil
}

func buildPrompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Design a %d-week %s dance course curriculum for %s students.\n",
		req.DurationWeeks, req.Style, req.Level)
	if req.SessionLength != "" {
		fmt.Fprintf(&sb, "Each session is %s long.\n", req.SessionLength)
	}
	if req.Focus != "" {
		fmt.Fprintf(&sb, "Emphasize: %s.\n", req.Focus)
	}
	sb.WriteString(`Respond with only a JSON object shaped as
{"title": string, "description": string, "weeks": [{"week": number, "theme": string, "objectives": [string], "drills": [string]}]}
with one entry per week and no text outside the JSON.`)
	return sb.String()
}

// ExtractJSON cuts the substring from the first '{' to the last '}' of the
// model output. Models occasionally wrap the object in prose or fences even
// when told not to; this tolerates both.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

func truncateBody(b []byte) string {
	const limit = 512
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
