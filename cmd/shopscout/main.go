package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/FranksOps/shopscout/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shopscout",
	Short: "Find products on a retailer's site",
	Long:  "Searches one retailer's domain for a free-text query, fetches each product page found and extracts title, price, image and description.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		l, err := config.InitLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./shopscout.yaml or $HOME/.config/shopscout/shopscout.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
