package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/veriscope/veriscope/internal/model"
)

// ErrAllProvidersFailed reports that every enabled backend in the chain
// errored, timed out, or produced no output. Callers fall back to the
// deterministic report instead of surfacing this to users.
var ErrAllProvidersFailed = errors.New("all synthesis providers failed")

// Provider is one AI backend in the synthesis chain. Backends self-report
// enabled/disabled; the chain never hard-codes availability.
type Provider interface {
	// Name returns the provider name ("openai", "anthropic", "ollama").
	Name() string

	// IsEnabled reports whether the provider has enough configuration to
	// attempt a call. It must not touch the network.
	IsEnabled() bool

	// StreamChat sends the prompt and invokes emit for each text chunk as
	// it arrives. It returns once the stream is drained or fails.
	StreamChat(ctx context.Context, prompt string, emit func(chunk string)) error
}

// NewProviders builds the ordered provider list from configuration.
// Unknown names in the order are an error; duplicates are an error too.
func NewProviders(cfg model.LLMConfig) ([]Provider, error) {
	seen := make(map[string]bool, len(cfg.Order))
	providers := make([]Provider, 0, len(cfg.Order))

	for _, name := range cfg.Order {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			return nil, fmt.Errorf("provider %q listed twice in llm.order", name)
		}
		seen[name] = true

		switch name {
		case "openai":
			providers = append(providers, NewOpenAIProvider(cfg.OpenAI, cfg.MaxTokens))
		case "anthropic", "claude":
			providers = append(providers, NewAnthropicProvider(cfg.Anthropic, cfg.MaxTokens, cfg.Timeout))
		case "ollama":
			providers = append(providers, NewOllamaProvider(cfg.Ollama, cfg.MaxTokens, cfg.Timeout))
		default:
			return nil, fmt.Errorf("unknown synthesis provider: %s (supported: openai, anthropic, ollama)", name)
		}
	}

	return providers, nil
}

const systemInstruction = "You are an evidence analyst. You describe how well claims are supported by the supplied evidence. You never assert facts beyond that evidence and you never invent sources."
