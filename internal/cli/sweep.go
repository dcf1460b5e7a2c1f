package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/ingest"
	"github.com/avoropai/argus/internal/store"
)

var sweepTimeout time.Duration

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep <feed-url>...",
	Short: "Fetch feeds and store new claims as PENDING",
	Long: `Sweep fetches each RSS/Atom feed, extracts attributed statements
and stores them as PENDING claims for a later run.

Feeds are fetched politely: robots.txt is honored and crawl delays
are respected.

Example:
  argus sweep https://example.org/statements.rss
  argus sweep https://a.example/feed.xml https://b.example/atom.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().DurationVar(&sweepTimeout, "timeout", 2*time.Minute, "overall sweep timeout")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
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

	fetcher := ingest.NewFeedFetcher(cfg.Search.Timeout, logger)
	ingested := ingestFeeds(ctx, st, fetcher, args, logger)
	fmt.Printf("Ingested %d claims from %d feeds\n", ingested, len(args))

	return nil
}

// ingestFeeds fetches each feed and stores the resulting claims. A dead feed
// is logged and skipped so it cannot abort the others.
func ingestFeeds(ctx context.Context, st store.ClaimStore, fetcher *ingest.FeedFetcher, feeds []string, logger *zap.Logger) int {
	ingested := 0
	for _, feedURL := range feeds {
		claims, err := fetcher.Fetch(ctx, feedURL)
		if err != nil {
			logger.Warn("feed fetch failed", zap.String("feed", feedURL), zap.Error(err))
			continue
		}
		for _, claim := range claims {
			if _, err := st.InsertClaim(ctx, claim); err != nil {
				logger.Warn("claim insert failed", zap.String("feed", feedURL), zap.Error(err))
				continue
			}
			ingested++
		}
	}
	return ingested
}
