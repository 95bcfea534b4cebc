package cmd

import (
	"fmt"

	"github.com/chukul/credctl/internal"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	// no config or logger needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), internal.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
