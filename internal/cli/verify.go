package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/veriscope/veriscope/internal/cache"
	"github.com/veriscope/veriscope/internal/engine"
	"github.com/veriscope/veriscope/internal/fusion"
	"github.com/veriscope/veriscope/internal/intent"
	"github.com/veriscope/veriscope/internal/llm"
	"github.com/veriscope/veriscope/internal/logging"
	"github.com/veriscope/veriscope/internal/model"
	"github.com/veriscope/veriscope/internal/render"
	"github.com/veriscope/veriscope/internal/source"
	"github.com/veriscope/veriscope/internal/util"
	"github.com/veriscope/veriscope/internal/validate"
	"github.com/veriscope/veriscope/internal/verify"
	"github.com/veriscope/veriscope/internal/weight"
	"github.com/veriscope/veriscope/internal/worker"
)

var (
	claims     []string
	outJSON    string
	outMD      string
	timeout    time.Duration
	strictMode bool
	noValidate bool
	noCache    bool
	noFooter   bool
	userAgent  string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <topic>",
	Short: "Collect evidence for a topic and verify claims against it",
	Long: `Verify collects evidence for a topic from the registered sources, fuses
and validates it, then checks each --claim against the surviving
evidence and reports support, contradiction, and overall credibility.

Example:
  veriscope verify "Paris" --claim "Paris is the capital of France"
  veriscope verify "climate change" --claim "..." --json report.json --md report.md
  veriscope verify "서울" --claim "서울은 대한민국의 수도이다"`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringArrayVar(&claims, "claim", nil, "claim to verify (repeatable)")
	verifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall request timeout")
	verifyCmd.Flags().BoolVar(&strictMode, "strict", false, "strict validation: require both URL and content validity")
	verifyCmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip evidence validation (no liveness checks)")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caches (force fresh fetches)")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	verifyCmd.Flags().StringVar(&userAgent, "ua", "veriscope/0.1 (+https://github.com/veriscope/veriscope)", "HTTP User-Agent")
}

func runVerify(cmd *cobra.Command, args []string) error {
	topic := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.HTTP.UserAgent = userAgent
	cfg.Validation.Strict = strictMode
	if noValidate {
		cfg.Validation.Enabled = false
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	loadLLMEnv(&cfg.LLM)

	logger := logging.New(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	e, err := buildEngine(*cfg, logger)
	if err != nil {
		return err
	}

	events, err := e.AnalyzeAndVerify(ctx, topic, claims)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	var report *model.Report
	for ev := range events {
		switch ev.Type {
		case model.EventStatus:
			if verbose {
				fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.Phase, ev.Message)
			}
		case model.EventEvidence, model.EventVerification, model.EventAssessment:
			if verbose && ev.Message != "" {
				fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.Phase, ev.Message)
			}
		case model.EventAISynthesis:
			fmt.Print(ev.Message)
		case model.EventComplete:
			fmt.Println()
			if r, ok := ev.Payload.(model.Report); ok {
				report = &r
			}
		case model.EventError:
			return fmt.Errorf("verification aborted: %s", ev.Message)
		}
	}
	if report == nil {
		return fmt.Errorf("verification produced no report")
	}

	renderer := render.NewRenderer(!noFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}
	renderer.RenderSummary(report)

	return nil
}

// buildEngine wires the full pipeline from configuration.
func buildEngine(cfg model.Config, logger *zap.Logger) (*engine.Engine, error) {
	var store cache.Cache
	if !noCache {
		store = cache.NewMemoryCache(15*time.Minute, 5*time.Minute)
	}
	limiter := worker.NewLimiter(2, 4)
	robots := util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	trusted := validate.NewTrustedDomains(cfg.Trusted.Domains)

	registry := fusion.NewRegistry()
	wikipedia := source.NewWikipediaSource(cfg.HTTP, store, limiter, logger)
	registry.RegisterBase(wikipedia)
	registry.Register(wikipedia)

	calculator := weight.NewCalculator(cfg.Weights, logger)
	fuser := fusion.NewEngine(registry, calculator, cfg.Fusion, cfg.Concurrency.FetchWorkers, logger)

	var validator *validate.Validator
	if cfg.Validation.Enabled {
		urlChecker := validate.NewHTTPLivenessChecker(cfg.HTTP, trusted, limiter, robots, store, logger)
		validator = validate.NewValidator(urlChecker, validate.NewHeuristicContentChecker(),
			cfg.Validation, cfg.Concurrency.ValidationWorkers, logger)
	}

	verifier := verify.NewVerifier(cfg.Verify)

	providers, err := llm.NewProviders(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("configure synthesis providers: %w", err)
	}
	chain := llm.NewChain(providers, cfg.LLM.Timeout, logger)

	return engine.New(cfg, intent.NewHeuristic(cfg.Verify.MaxKeywords), registry, fuser, validator, verifier, chain, logger)
}

// loadLLMEnv fills provider credentials from the conventional env vars
// when the config leaves them empty.
func loadLLMEnv(cfg *model.LLMConfig) {
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = os.Getenv("OLLAMA_MODEL")
	}
}
