package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avoropai/argus/internal/search"
	"github.com/avoropai/argus/internal/store"
	"github.com/avoropai/argus/internal/verify"
)

var verifyTimeout time.Duration

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-check pending hypotheses against their falsifiable conditions",
	Long: `Verify sweeps every PROPOSED hypothesis:
- Past its deadline, the hypothesis is marked EXPIRED
- If fresh evidence matches the falsifiable condition it is WEAKENED
- If the condition stayed silent it is STRENGTHENED

This is how the system keeps score against its own predictions.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 5*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Search.APIKeys) == 0 {
		return fmt.Errorf("no search API keys configured (set search.api_keys or ARGUS_SEARCH_API_KEYS)")
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

	verifier := verify.NewVerifier(st, provider, cfg.Search.MaxResults, logger)
	result, err := verifier.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("verification sweep: %w", err)
	}

	fmt.Printf("Checked %d hypotheses: %d strengthened, %d weakened, %d expired\n",
		result.Checked, result.Strengthened, result.Weakened, result.Expired)

	return nil
}
