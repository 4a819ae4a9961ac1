package main

import (
	"github.com/spf13/cobra"

	"github.com/mahan2079/DeVana-sub002/internal/logging"
)

var (
	logLevel string
	logger   *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "devana",
	Short: "Parametric vibration-design optimization",
	Long: `DeVana tunes absorber parameters against a target frequency response
using simulated annealing, evolution strategies, Bayesian optimization, or a
multi-objective genetic search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.NewLogger(&logging.Config{
			Level:  logLevel,
			Format: "json",
			Output: "stderr",
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
