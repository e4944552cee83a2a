package commands

import (
	"aoe2-units/services"
	"aoe2-units/storage"
	"aoe2-units/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--file <units.json>]",
	Short: "Prints the summary report for a saved units file without fetching anything.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := utils.NewLogger(cfg.LogLevel)
		defer logger.Sync()

		store := storage.NewUnitStore(logger)
		if err := store.Load(cfg.UnitsFile); err != nil {
			return err
		}

		report := services.NewInsightService(logger).Generate(store.Units())
		services.PrintInsightReport(cmd.OutOrStdout(), report)
		return nil
	},
}
