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

// OllamaProvider streams generations from a local Ollama instance.
type OllamaProvider struct {
	cfg        model.OllamaConfig
	maxTokens  int
	httpClient *http.Client
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaChunk is one NDJSON line of a streaming generate response.
type ollamaChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaProvider creates an Ollama provider. The provider reports
// disabled until a model name is configured; there is no API key.
func NewOllamaProvider(cfg model.OllamaConfig, maxTokens int, timeout time.Duration) *OllamaProvider {
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &OllamaProvider{
		cfg:        cfg,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) IsEnabled() bool {
	return p.cfg.Model != ""
}

// StreamChat posts a streaming generate request and emits each NDJSON
// response fragment.
func (p *OllamaProvider) StreamChat(ctx context.Context, prompt string, emit func(chunk string)) error {
	if p.cfg.Model == "" {
		return fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}
	maxTokens := p.maxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}

	apiReq := ollamaRequest{
		Model:  p.cfg.Model,
		Prompt: prompt,
		System: systemInstruction,
		Stream: true,
		Options: ollamaOptions{
			Temperature: 0.3,
			NumPredict:  maxTokens,
		},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	baseURL := p.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	url := fmt.Sprintf("%s/api/generate", strings.TrimSuffix(baseURL, "/"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return fmt.Errorf("ollama API error (%d): %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return fmt.Errorf("unmarshal chunk: %w", err)
		}
		if chunk.Error != "" {
			return fmt.Errorf("ollama stream error: %s", chunk.Error)
		}
		if chunk.Response != "" {
			emit(chunk.Response)
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
