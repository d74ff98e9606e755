package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cyvat/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "cyvat",
	Short: "cyvat - Cyprus VAT calculation for construction and property invoices",
	Long: `cyvat computes Cyprus VAT for construction and property invoices.

It supports the standard 19% rate, the reduced 5% rate for renovation of
dwellings and for the first 130 m² of a primary residence, and the reverse
charge mechanism for construction services between VAT-registered parties.

Every calculation can be checked for internal consistency and exported as a
tax record to JSON or to a Google Sheet.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("cyvat executed without subcommand")

		_ = cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
