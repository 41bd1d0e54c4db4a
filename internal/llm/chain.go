package llm

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Chain tries an ordered list of providers until one produces output.
// Disabled providers are skipped without an attempt; a provider that
// errors, exceeds its time budget, or streams zero chunks hands over to
// the next. The chain never nests retries: it is a single loop.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChain builds a synthesis chain. timeout is the per-provider streaming
// budget; it does not accumulate across providers sharing ctx.
func NewChain(providers []Provider, timeout time.Duration, logger *zap.Logger) *Chain {
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// EnabledCount reports how many providers would be attempted.
func (c *Chain) EnabledCount() int {
	count := 0
	for _, p := range c.providers {
		if p.IsEnabled() {
			count++
		}
	}
	return count
}

// Synthesize streams the prompt through the first provider that delivers
// output, forwarding each chunk to emit as it arrives. It returns the full
// narrative text and the name of the provider that produced it. When every
// provider fails or none are enabled it returns ErrAllProvidersFailed;
// callers then fall back to FallbackReport.
func (c *Chain) Synthesize(ctx context.Context, prompt string, emit func(chunk string)) (string, string, error) {
	if emit == nil {
		emit = func(string) {}
	}

	for _, provider := range c.providers {
		if !provider.IsEnabled() {
			c.logger.Debug("synthesis provider disabled, skipping", zap.String("provider", provider.Name()))
			continue
		}
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}

		var text strings.Builder
		chunks := 0
		start := time.Now()

		providerCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := provider.StreamChat(providerCtx, prompt, func(chunk string) {
			chunks++
			text.WriteString(chunk)
			emit(chunk)
		})
		cancel()

		switch {
		case err != nil:
			c.logger.Warn("synthesis provider failed, trying next",
				zap.String("provider", provider.Name()),
				zap.Int("chunks_before_failure", chunks),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		case chunks == 0:
			c.logger.Warn("synthesis provider streamed no output, trying next",
				zap.String("provider", provider.Name()),
				zap.Duration("elapsed", time.Since(start)))
		default:
			c.logger.Info("synthesis complete",
				zap.String("provider", provider.Name()),
				zap.Int("chunks", chunks),
				zap.Duration("elapsed", time.Since(start)))
			return text.String(), provider.Name(), nil
		}
	}

	return "", "", ErrAllProvidersFailed
}
