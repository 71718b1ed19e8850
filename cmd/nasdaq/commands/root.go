package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nasdaq",
	Short: "NASDAQ public API client",
	Long: `NASDAQ public API client

Fetches company, quote, ownership, news and filing data from the NASDAQ
public JSON API and normalizes it into typed records. A shared session
credential (bot-detection cookies) is minted on demand and refreshed
when upstream rejects it.

Usage:
  go run ./cmd/nasdaq [command]

Examples:
  go run ./cmd/nasdaq profile AAPL
  go run ./cmd/nasdaq historical MSFT --days 30
  go run ./cmd/nasdaq session status
  go run ./cmd/nasdaq serve --port 8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "table", "json":
			return nil
		default:
			return fmt.Errorf("unknown output format %q (table|json)", outputFormat)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table|json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
