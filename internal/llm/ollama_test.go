package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veriscope/veriscope/internal/model"
)

func TestOllamaProvider_StreamChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s, want /api/generate", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama3.1:8b" {
			t.Errorf("model = %s, want llama3.1:8b", req.Model)
		}
		if !req.Stream {
			t.Error("stream must be requested")
		}

		fmt.Fprint(w, `{"response":"The ","done":false}`+"\n")
		fmt.Fprint(w, `{"response":"answer.","done":false}`+"\n")
		fmt.Fprint(w, `{"response":"","done":true}`+"\n")
	}))
	defer server.Close()

	provider := NewOllamaProvider(model.OllamaConfig{
		BaseURL: server.URL,
		Model:   "llama3.1:8b",
	}, 100, 5*time.Second)

	var got strings.Builder
	err := provider.StreamChat(context.Background(), "prompt", func(c string) {
		got.WriteString(c)
	})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}
	if got.String() != "The answer." {
		t.Errorf("streamed = %q, want %q", got.String(), "The answer.")
	}
}

func TestOllamaProvider_StreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"model not found"}`+"\n")
	}))
	defer server.Close()

	provider := NewOllamaProvider(model.OllamaConfig{BaseURL: server.URL, Model: "missing"}, 100, 5*time.Second)

	err := provider.StreamChat(context.Background(), "prompt", func(string) {})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("err = %v, want stream error", err)
	}
}

func TestOllamaProvider_IsEnabled(t *testing.T) {
	if NewOllamaProvider(model.OllamaConfig{}, 0, 0).IsEnabled() {
		t.Error("provider without a model must be disabled")
	}
	if !NewOllamaProvider(model.OllamaConfig{Model: "mistral"}, 0, 0).IsEnabled() {
		t.Error("provider with a model must be enabled")
	}
}

func TestNewProviders(t *testing.T) {
	cfg := model.LLMConfig{
		Order:  []string{"openai", "anthropic", "ollama"},
		OpenAI: model.OpenAIConfig{APIKey: "k"},
	}
	providers, err := NewProviders(cfg)
	if err != nil {
		t.Fatalf("NewProviders failed: %v", err)
	}
	if len(providers) != 3 {
		t.Fatalf("providers = %d, want 3", len(providers))
	}
	wantNames := []string{"openai", "anthropic", "ollama"}
	for i, p := range providers {
		if p.Name() != wantNames[i] {
			t.Errorf("provider[%d] = %s, want %s", i, p.Name(), wantNames[i])
		}
	}

	if _, err := NewProviders(model.LLMConfig{Order: []string{"gemini"}}); err == nil {
		t.Error("unknown provider name must error")
	}
	if _, err := NewProviders(model.LLMConfig{Order: []string{"ollama", "ollama"}}); err == nil {
		t.Error("duplicate provider name must error")
	}
}
