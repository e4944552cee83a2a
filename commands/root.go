package commands

import (
	"context"
	"fmt"
	"os"

	"aoe2-units/config"
	"aoe2-units/pipeline"
	"aoe2-units/scraper"
	"aoe2-units/services"
	"aoe2-units/storage"
	"aoe2-units/utils"

	"github.com/spf13/cobra"
)

var (
	unitsFile  string
	csvFile    string
	refresh    bool
	skipEnrich bool
)

var rootCmd = &cobra.Command{
	Use:   "aoe2-units",
	Short: "Scrapes Age of Empires II unit statistics and wiki matchups into a JSON file.",
	Long: `Loads units.json (or scrapes the unit statistics table when it is missing),
fills strong/weak matchups from the Age of Empires wiki, copies them from each
base unit to its elite variant and saves the result.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&unitsFile, "file", "f", "", "units JSON file (overrides UNITS_FILE)")
	rootCmd.Flags().StringVar(&csvFile, "csv", "", "also write the raw stats table to this CSV file")
	rootCmd.Flags().BoolVar(&refresh, "refresh", false, "scrape the stats table even if the units file exists")
	rootCmd.Flags().BoolVar(&skipEnrich, "no-enrich", false, "skip fetching wiki matchups")
}

// ExecuteContext runs the CLI and exits non-zero on failure
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig applies command-line overrides on top of config.Load
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if unitsFile != "" {
		cfg.UnitsFile = unitsFile
	}
	if csvFile != "" {
		cfg.CSVFilePath = csvFile
	}
	return cfg, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Age of Empires II unit scraper")
	logger.Info("Units file: %s | Fetch mode: %s | Rate delay: %dms | Retries: %d",
		cfg.UnitsFile, cfg.FetchMode, cfg.RateLimitDelay, cfg.MaxRetries)

	fetcher, closeFetcher := scraper.NewFetcher(cfg, logger)
	defer closeFetcher()

	p := pipeline.New(cfg, fetcher, logger)

	if cfg.DatabaseURL != "" {
		sqlWriter, err := storage.NewSQLWriter(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("cannot connect to %s: %w", cfg.DatabaseDriver, err)
		}
		defer sqlWriter.Close()
		p.SetSink(sqlWriter)
	}

	report, err := p.Run(cmd.Context(), pipeline.Options{Refresh: refresh, SkipEnrich: skipEnrich})
	if report != nil {
		services.PrintInsightReport(cmd.OutOrStdout(), report)
	}
	if err != nil {
		return fmt.Errorf("run finished with errors: %w", err)
	}

	logger.Info("Done! Units saved to %s", cfg.UnitsFile)
	return nil
}
