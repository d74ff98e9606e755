package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cyvat/internal/vat"
)

var locationCmd = &cobra.Command{
	Use:   "location <place>",
	Short: "Check whether a location is in Cyprus",
	Long: `Check whether a property location names a known place in Cyprus.

The check is a case-insensitive match against Cyprus districts, towns and
villages in English and Greek spelling. Unknown places are not an error:
Cyprus VAT rules may simply not apply to them.`,
	Example: `  cyvat location "Agios Athanasios, Limassol"
  cyvat location Λευκωσία`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		place := strings.Join(args, " ")
		if vat.IsCyprusProperty(place) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: in Cyprus\n", place)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: not recognised as Cyprus\n", place)
	},
}

func init() {
	rootCmd.AddCommand(locationCmd)
}
