package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/summitfloors/pricebook/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pricebook",
	Short: "Vendor price list import and catalog reconciliation",
	Long:  "Reads vendor CSV/XLSX price lists, matches rows against the product catalog, and applies reviewed changes in a single transaction.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
