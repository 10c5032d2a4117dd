package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/discovery"
	"github.com/sells-group/leadgen-cli/internal/lead"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

var discoverLocation string

var discoverCmd = &cobra.Command{
	Use:   "discover QUERY...",
	Short: "Discover leads via Google Places text search",
	Long:  "Runs a discovery batch: one Places text search per query, website scoring, deduplication, and lead creation.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("discovery"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc := lead.NewService(st)
		client := places.NewClient(cfg.Google.Key,
			places.WithLanguage(cfg.Google.Language),
			places.WithRateLimit(cfg.Discovery.RateLimit),
		)

		runner := discovery.NewRunner(client, discovery.NewLeadIngestor(svc), &cfg.Discovery)
		report := runner.Run(ctx, args, discoverLocation)

		zap.L().Info("discovery complete",
			zap.Int("total_found", report.TotalFound),
			zap.Int("total_created", report.TotalCreated),
			zap.Int("errors", len(report.Errors)),
		)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Found %d candidates, created %d leads\n", report.TotalFound, report.TotalCreated)
		for _, qr := range report.Results {
			fmt.Fprintf(out, "  %-30s %d candidates, %d errors\n", qr.Query, len(qr.Candidates), len(qr.Errors))
		}
		for _, e := range report.Errors {
			fmt.Fprintf(out, "  error: %s\n", e)
		}

		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverLocation, "location", "", "location appended to each query (default from config)")
	rootCmd.AddCommand(discoverCmd)
}
