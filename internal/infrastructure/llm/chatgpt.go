package llm

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

	"golang.org/x/time/rate"

	"HeadlineScreener/internal/config"
	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/ports"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultBaseBackoff = time.Second
	defaultRPM         = 60
)

// ChatGPTClient implements ports.Oracle backed by OpenAI-compatible chat completions.
// Every request is sent with temperature 0.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	baseBackoff  time.Duration
}

var _ ports.Oracle = (*ChatGPTClient)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// retryableError marks failures worth another attempt (transport, 429, 5xx).
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.OracleConfig) *ChatGPTClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRPM
	}
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Limit(float64(rpm)/60), 1),
		maxRetries:   cfg.MaxRetries,
		baseBackoff:  defaultBaseBackoff,
	}
}

// Complete sends prompt as the user message and returns the first choice.
func (c *ChatGPTClient) Complete(ctx context.Context, prompt string, format domain.ResponseFormat) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: chatgpt client is nil", ports.ErrOracleUnavailable)
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("%w: chatgpt client misconfigured", ports.ErrOracleUnavailable)
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: safePrompt(c.systemPrompt)},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}
	if format != "" {
		req.ResponseFormat = &responseFormat{Type: string(format)}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ports.ErrOracleUnavailable, ctx.Err())
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("%w: rate limiter: %v", ports.ErrOracleUnavailable, err)
			}
		}

		answer, err := c.do(ctx, body)
		if err == nil {
			return answer, nil
		}
		lastErr = err

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			break
		}
	}

	if errors.Is(lastErr, ports.ErrMalformedResponse) {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: %v", ports.ErrOracleUnavailable, lastErr)
}

func (c *ChatGPTClient) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("send completion: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &retryableError{err: fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode completion: %v", ports.ErrMalformedResponse, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ports.ErrMalformedResponse)
	}

	return decoded.Choices[0].Message.Content, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return config.DefaultSystemPrompt
	}
	return prompt
}
