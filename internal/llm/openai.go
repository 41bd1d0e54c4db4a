package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/veriscope/veriscope/internal/model"
)

// OpenAIProvider streams chat completions from the OpenAI API.
type OpenAIProvider struct {
	cfg       model.OpenAIConfig
	maxTokens int

	// newClient is swappable in tests.
	newClient func() *openai.Client
}

// NewOpenAIProvider creates an OpenAI provider. The provider reports
// disabled when no API key is configured.
func NewOpenAIProvider(cfg model.OpenAIConfig, maxTokens int) *OpenAIProvider {
	p := &OpenAIProvider{cfg: cfg, maxTokens: maxTokens}
	p.newClient = func() *openai.Client {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		return openai.NewClientWithConfig(clientConfig)
	}
	return p
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) IsEnabled() bool {
	return p.cfg.APIKey != ""
}

// StreamChat streams a completion, invoking emit per content delta.
func (p *OpenAIProvider) StreamChat(ctx context.Context, prompt string, emit func(chunk string)) error {
	chatModel := p.cfg.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	maxTokens := p.maxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}

	req := openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
		Stream:      true,
	}

	stream, err := p.newClient().CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("openai stream read: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			emit(delta)
		}
	}
}
