package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fuzzycharge/config"
	"github.com/kilianp07/fuzzycharge/infra/logger"
)

var (
	cfgPath  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "fuzzycharge",
	Short:             "Fuzzy-logic battery charging simulator",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if err := logger.SetLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := logger.SetFormat(c.Logging.Format); err != nil {
		return err
	}
	cfg = c
	return nil
}
