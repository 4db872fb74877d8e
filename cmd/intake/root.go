package main

import (
	"github.com/spf13/cobra"

	"github.com/brotwerk/intake/internal/api"
	"github.com/brotwerk/intake/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Order intake service with LLM-powered structured extraction",
	Long: `Intake turns unstructured order input into validated order records.

Voice transcripts, photographed order slips and audio recordings go
through an LLM tool call with bounded schema-repair retries; the result
is a spreadsheet-shaped list of orders with normalized dates, payment
methods and products checked against the product list.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.intake/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
