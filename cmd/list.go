package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/chukul/credctl/internal/ui"
	"github.com/spf13/cobra"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output names as a JSON array")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all stored profiles",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := service.ListProfiles()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listJSON {
			b, err := json.Marshal(profiles)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		if len(profiles) == 0 {
			fmt.Fprintln(out, ui.MutedStyle.Render("No profiles found."))
			return nil
		}
		for _, p := range profiles {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}
