package cmd

import (
	"fmt"

	"github.com/chukul/credctl/internal/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:     "delete [profile]",
	Aliases: []string{"rm", "remove"},
	Short:   "Remove a profile from the credentials file",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := profileArg(args, "Select Profile to Delete")
		if err != nil {
			return err
		}

		if !deleteYes && stdinIsTerminal() {
			if !confirm(fmt.Sprintf("⚠️  Delete profile '%s'?", name)) {
				fmt.Fprintln(cmd.ErrOrStderr(), "❌ Operation cancelled.")
				return nil
			}
		}

		if err := service.DeleteProfile(name); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render(fmt.Sprintf("✅ Profile '%s' removed successfully.", name)))
		return nil
	},
}

// profileArg returns args[0], or lets the user pick a stored profile when
// running on a terminal.
func profileArg(args []string, title string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !stdinIsTerminal() {
		return "", errors.New("a profile name is required")
	}

	profiles, err := service.ListProfiles()
	if err != nil {
		return "", err
	}
	if len(profiles) == 0 {
		return "", errors.New("no stored profiles found")
	}
	return ui.SelectProfile(title, profiles)
}
