package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/knbiosciences/agriaqua-go/internal/config"
	"github.com/knbiosciences/agriaqua-go/internal/logging"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:     "agriaqua",
	Short:   "agriaqua - KN Biosciences agri-aqua commerce toolkit",
	Long:    `Command line access to the agri-aqua commerce platform: authentication, smart pricing, and dealer calculations.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logging.Init(logging.Config{
			Format:    cfg.LogFormat,
			Level:     cfg.LogLevel,
			Component: "agriaqua-cli",
		})
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("agriaqua %s (built %s)\n", Version, BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(marginCmd)
	rootCmd.AddCommand(demandCmd)
	rootCmd.AddCommand(loginCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
