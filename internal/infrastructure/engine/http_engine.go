package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	infraconfig "github.com/codeforge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure HTTPEngine implements Engine
var _ Engine = (*HTTPEngine)(nil)

// HTTPEngine talks to an OpenAI-compatible chat completions endpoint with
// server-sent event streaming.
type HTTPEngine struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// HTTPEngineOption is a functional option for configuring HTTPEngine
type HTTPEngineOption func(*HTTPEngine)

// WithEngineLogger sets a custom logger for HTTPEngine
func WithEngineLogger(logger *zap.Logger) HTTPEngineOption {
	return func(e *HTTPEngine) {
		e.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client for HTTPEngine
func WithHTTPClient(client *http.Client) HTTPEngineOption {
	return func(e *HTTPEngine) {
		e.client = client
	}
}

// NewHTTPEngine creates an HTTPEngine from configuration.
func NewHTTPEngine(cfg *infraconfig.EngineConfig, opts ...HTTPEngineOption) (*HTTPEngine, error) {
	if cfg == nil {
		return nil, errors.New("engine configuration is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("engine base URL is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("engine model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	e := &HTTPEngine{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// Stream sends the conversation and consumes the SSE response line by line.
func (e *HTTPEngine) Stream(ctx context.Context, messages []Message, onToken func(token string) error) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    e.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("Engine request failed", zap.Error(err))
		return "", ErrEngineUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		e.logger.Warn("Engine returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", errBody))
		return "", ErrEngineUnavailable
	}

	var completion strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			e.logger.Debug("Skipping malformed stream chunk", zap.Error(err))
			continue
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			completion.WriteString(choice.Delta.Content)
			if onToken != nil {
				if err := onToken(choice.Delta.Content); err != nil {
					return completion.String(), err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return completion.String(), fmt.Errorf("engine stream interrupted: %w", err)
	}

	return completion.String(), nil
}
