package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/avoropai/argus/internal/agent"
	"github.com/avoropai/argus/internal/ingest"
	"github.com/avoropai/argus/internal/llm"
	"github.com/avoropai/argus/internal/model"
	"github.com/avoropai/argus/internal/report"
	"github.com/avoropai/argus/internal/search"
	"github.com/avoropai/argus/internal/store"
)

var (
	runFeeds    []string
	runFile     string
	runOutJSON  string
	runOutMD    string
	runNoFooter bool
	runLimit    int
	runWindow   int
	runTimeout  time.Duration
	llmProvider string
	llmModel    string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [\"Attributor: claim text\" ...]",
	Short: "Analyze a batch of claims and produce a briefing",
	Long: `Run analyzes one batch of attributed claims:
- Gather evidence through a bounded search loop
- Judge whether a verifiable action occurred (not just rhetoric)
- Build a falsifiable strategic thesis from the evidence
- Red-team the thesis and record honest stop reasons

Claims come from positional arguments ("Attributor: statement"), from a
YAML file given with --file, from RSS/Atom feeds given with --feed, or
from PENDING claims already in the store when none of those is supplied.

Example:
  argus run "Defense Ministry: troops redeployed to the eastern border"
  argus run --file claims.yaml --md briefing.md
  argus run --feed https://example.org/statements.rss --md briefing.md
  argus run --llm-provider anthropic --llm-model claude-3-5-sonnet-20241022`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayVar(&runFeeds, "feed", nil, "RSS/Atom feed URL to ingest before the run (repeatable)")
	runCmd.Flags().StringVar(&runFile, "file", "", "YAML file with claims to analyze")
	runCmd.Flags().StringVar(&runOutJSON, "json", "", "output JSON path (optional)")
	runCmd.Flags().StringVar(&runOutMD, "md", "", "output Markdown path (optional)")
	runCmd.Flags().BoolVar(&runNoFooter, "no-footer", false, "disable footer in Markdown reports")
	runCmd.Flags().IntVar(&runLimit, "limit", 20, "max claims drawn from the store")
	runCmd.Flags().IntVar(&runWindow, "hours", 24, "claim freshness window in hours")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "overall run timeout")
	runCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	runCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if llmProvider != "" && llmProvider != cfg.LLM.Provider {
		// Provider changed on the command line; the configured key no
		// longer applies, resolve it from the environment.
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if runNoFooter {
		cfg.Output.IncludeFooter = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	if len(runFeeds) > 0 {
		fetcher := ingest.NewFeedFetcher(cfg.Search.Timeout, logger)
		ingested := ingestFeeds(ctx, st, fetcher, runFeeds, logger)
		if verbose {
			fmt.Fprintf(os.Stderr, "Ingested %d claims from %d feeds\n", ingested, len(runFeeds))
		}
	}

	claims, err := collectClaims(ctx, st, args)
	if err != nil {
		return err
	}
	if len(claims) == 0 {
		fmt.Println("No claims to analyze.")
		return nil
	}

	reasoner, err := llm.NewReasoner(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return fmt.Errorf("create reasoner: %w", err)
	}

	provider, err := search.NewClient(search.Config{
		APIKeys:       cfg.Search.APIKeys,
		BaseURL:       cfg.Search.BaseURL,
		Timeout:       cfg.Search.Timeout,
		RatePerSecond: cfg.Search.RatePerSecond,
		RateBurst:     cfg.Search.RateBurst,
		CacheEnabled:  cfg.Search.CacheEnabled,
		CacheTTL:      cfg.Search.CacheTTL,
	}, logger)
	if err != nil {
		return fmt.Errorf("create search client: %w", err)
	}

	orch := agent.NewOrchestrator(reasoner, provider, st, cfg, logger)

	briefing, err := orch.RunBatch(ctx, claims)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}
	if briefing == nil {
		fmt.Println("No claims to analyze.")
		return nil
	}

	markdown := orch.Render(ctx, briefing)

	if runOutMD != "" {
		if err := os.WriteFile(runOutMD, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("write markdown report: %w", err)
		}
		fmt.Printf("Markdown report: %s\n", runOutMD)
	}
	if runOutJSON != "" {
		renderer := report.NewRenderer(cfg.Output.IncludeFooter)
		if err := renderer.WriteJSON(briefing, runOutJSON); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
		fmt.Printf("JSON report: %s\n", runOutJSON)
	}
	if runOutMD == "" && runOutJSON == "" {
		fmt.Println(markdown)
	} else {
		report.NewRenderer(cfg.Output.IncludeFooter).RenderSummary(briefing)
	}

	return nil
}

// collectClaims resolves the batch: the claims file and positional
// arguments win, otherwise PENDING claims are drained from the store.
func collectClaims(ctx context.Context, st store.Store, args []string) ([]model.Claim, error) {
	now := time.Now().UTC()
	var batch []model.Claim

	if runFile != "" {
		fromFile, err := loadClaimsFile(runFile, now)
		if err != nil {
			return nil, err
		}
		batch = append(batch, fromFile...)
	}
	for _, arg := range args {
		batch = append(batch, parseClaimArg(arg, now))
	}

	if len(batch) == 0 {
		claims, err := st.GetPendingClaims(ctx, runLimit, runWindow)
		if err != nil {
			return nil, fmt.Errorf("load pending claims: %w", err)
		}
		return claims, nil
	}

	claims := make([]model.Claim, 0, len(batch))
	for _, claim := range batch {
		id, err := st.InsertClaim(ctx, claim)
		if err != nil {
			return nil, fmt.Errorf("insert claim: %w", err)
		}
		claim.ID = id
		claims = append(claims, claim)
	}
	return claims, nil
}

type fileClaim struct {
	Text         string     `yaml:"text"`
	AttributedTo string     `yaml:"attributed_to"`
	SourceURL    string     `yaml:"source_url"`
	ObservedAt   *time.Time `yaml:"observed_at"`
}

// loadClaimsFile reads a YAML list of claims. Entries without text are
// skipped.
func loadClaimsFile(path string, observed time.Time) ([]model.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims file: %w", err)
	}

	var entries []fileClaim
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse claims file: %w", err)
	}

	claims := make([]model.Claim, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Text) == "" {
			continue
		}
		attributor := strings.TrimSpace(entry.AttributedTo)
		if attributor == "" {
			attributor = "unattributed"
		}
		observedAt := entry.ObservedAt
		if observedAt == nil {
			observedAt = &observed
		}
		claims = append(claims, model.Claim{
			Text:         strings.TrimSpace(entry.Text),
			AttributedTo: attributor,
			SourceURL:    entry.SourceURL,
			ObservedAt:   observedAt,
			Status:       model.ClaimPending,
		})
	}
	return claims, nil
}

// parseClaimArg splits "Attributor: statement" on the first colon. Without
// a colon the whole argument is the statement.
func parseClaimArg(arg string, observed time.Time) model.Claim {
	attributor := "unattributed"
	text := strings.TrimSpace(arg)
	if idx := strings.Index(arg, ":"); idx > 0 {
		attributor = strings.TrimSpace(arg[:idx])
		text = strings.TrimSpace(arg[idx+1:])
	}
	return model.Claim{
		Text:         text,
		AttributedTo: attributor,
		ObservedAt:   &observed,
		Status:       model.ClaimPending,
	}
}
