package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/veriscope/veriscope/internal/model"
)

// AnthropicProvider streams messages from the Anthropic API over SSE.
type AnthropicProvider struct {
	cfg        model.AnthropicConfig
	maxTokens  int
	httpClient *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	Stream      bool               `json:"stream"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicStreamEvent is the subset of SSE payloads the stream reader
// cares about. Text arrives in content_block_delta events.
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicProvider creates an Anthropic provider. The provider reports
// disabled when no API key is configured.
func NewAnthropicProvider(cfg model.AnthropicConfig, maxTokens int, timeout time.Duration) *AnthropicProvider {
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &AnthropicProvider{
		cfg:        cfg,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) IsEnabled() bool {
	return p.cfg.APIKey != ""
}

// StreamChat posts a streaming messages request and emits text deltas as
// they arrive on the SSE stream.
func (p *AnthropicProvider) StreamChat(ctx context.Context, prompt string, emit func(chunk string)) error {
	chatModel := p.cfg.Model
	if chatModel == "" {
		chatModel = "claude-sonnet-4-20250514"
	}
	maxTokens := p.maxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}

	apiReq := anthropicRequest{
		Model:       chatModel,
		MaxTokens:   maxTokens,
		System:      systemInstruction,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		Stream:      true,
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	baseURL := p.cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	url := fmt.Sprintf("%s/v1/messages", strings.TrimSuffix(baseURL, "/"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	httpReq.Header.Set("Accept", "text/event-stream")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return fmt.Errorf("anthropic API error (%d): %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return readAnthropicStream(httpResp.Body, emit)
}

// readAnthropicStream consumes SSE "data:" lines until message_stop or EOF.
func readAnthropicStream(r io.Reader, emit func(chunk string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Tolerate event types we do not model.
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Text != "" {
				emit(event.Delta.Text)
			}
		case "error":
			return fmt.Errorf("anthropic stream error: %s - %s", event.Error.Type, event.Error.Message)
		case "message_stop":
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
