package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/movers/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "movers version %s\n", common.GetFullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
