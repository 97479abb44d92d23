package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topicalmd/contentpipe/internal/domain"
	"github.com/topicalmd/contentpipe/internal/model"
	"github.com/topicalmd/contentpipe/internal/pipeline"
)

var (
	maxArticles  int
	domainFilter string
	dryRun       bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the content pipeline end to end",
	Long: `Generate researches content gaps, writes articles through the agent
chain, and publishes them to the content store.

Example:
  contentpipe generate --max-articles=3 --domain=all --dry-run
  contentpipe generate --domain=joint_pain --verbose`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&maxArticles, "max-articles", 3, "maximum articles to generate")
	generateCmd.Flags().StringVar(&domainFilter, "domain", "all", "domain filter (all, "+strings.Join(domain.Active, ", ")+")")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "run pipeline without pushing to the content store")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if domainFilter != "all" && !domain.Valid(domainFilter) {
		return fmt.Errorf("unknown domain %q (valid: all, %s)", domainFilter, strings.Join(domain.Active, ", "))
	}

	setupLogging(verbose)

	cfg := loadConfig()
	cfg.Pipeline.MaxArticles = maxArticles

	ctx := context.Background()
	runner, err := pipeline.New(ctx, cfg)
	if err != nil {
		return err
	}

	results, err := runner.Run(ctx, domainFilter, dryRun)
	if err != nil {
		return err
	}

	// Non-zero exit only when every attempted article failed
	if len(results) > 0 && allFailed(results) {
		return fmt.Errorf("all %d articles failed", len(results))
	}
	return nil
}

func allFailed(results []model.ItemResult) bool {
	for _, res := range results {
		if res.Success {
			return false
		}
	}
	return true
}

// setupLogging installs the process-wide structured logger
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
