// Package probe performs live connectivity checks against a resolved
// chat-completions endpoint and against a local Ollama instance.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hybridrag/ragctl/internal/endpoint"
	"github.com/hybridrag/ragctl/internal/types"
)

// DefaultTimeout bounds a single probe call.
const DefaultTimeout = 60 * time.Second

// maxBodyExcerpt limits how much of an error body is kept for display.
const maxBodyExcerpt = 500

// Client sends one-shot chat-completions probes.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a probe client with the given timeout. A zero timeout
// uses DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Options controls the probe payload.
type Options struct {
	Prompt      string
	Model       string // standard OpenAI only; Azure takes it from the URL
	MaxTokens   int
	Temperature float64
}

// Result is the outcome of a completed probe call. A non-2xx status is
// still a completed probe; Diagnosis carries the per-status hint.
type Result struct {
	StatusCode int
	Text       string
	Model      string
	Usage      types.Usage
	Latency    time.Duration
	RawBody    string
	Diagnosis  string
}

// OK reports whether the probe got a successful response.
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Chat sends a single chat-completions request using the resolved URL and
// auth header. Transport failures return an error; HTTP error statuses
// return a Result carrying the status and a diagnosis.
func (c *Client) Chat(ctx context.Context, resolved *endpoint.ResolvedRequest, apiKey string, opts Options) (*Result, error) {
	if opts.Prompt == "" {
		opts.Prompt = "say hello"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 50
	}

	payload := types.ChatRequest{
		Messages:    []types.Message{{Role: types.RoleUser, Content: opts.Prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	// Azure ignores the model field; the deployment in the URL decides.
	if resolved.Provider == endpoint.ProviderOpenAICompatible {
		payload.Model = opts.Model
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resolved.FinalURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(resolved.AuthHeaderName, resolved.AuthHeaderValue(apiKey))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	result := &Result{
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		result.RawBody = excerpt(raw)
		result.Diagnosis = DiagnoseStatus(resp.StatusCode, resolved.Provider)
		return result, nil
	}

	var parsed types.ChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		result.RawBody = excerpt(raw)
		result.Diagnosis = "response was not valid JSON; the endpoint may not be a chat-completions API"
		return result, nil
	}

	result.Model = parsed.Model
	result.Usage = parsed.Usage
	if len(parsed.Choices) > 0 {
		result.Text = parsed.Choices[0].Message.Content
	} else {
		result.Diagnosis = "response JSON had no choices; the endpoint may not be a chat-completions API"
		result.RawBody = excerpt(raw)
	}

	return result, nil
}

func excerpt(raw []byte) string {
	if len(raw) > maxBodyExcerpt {
		raw = raw[:maxBodyExcerpt]
	}
	return string(raw)
}
