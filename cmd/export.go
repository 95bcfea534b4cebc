package cmd

import (
	"fmt"

	"github.com/juju/utils/v4"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <profile>",
	Short: "Print a profile's credentials as shell export statements",
	Example: `  # Load a profile into the current shell
  eval $(credctl export dev)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := service.GetProfile(args[0])
		if err != nil {
			return err
		}

		// Values are single-quoted so eval never expands them
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "export AWS_ACCESS_KEY_ID=%s\n", utils.ShQuote(s.AccessKeyID))
		fmt.Fprintf(out, "export AWS_SECRET_ACCESS_KEY=%s\n", utils.ShQuote(s.SecretAccessKey.Reveal()))
		if s.SessionToken.IsZero() {
			fmt.Fprintln(out, "unset AWS_SESSION_TOKEN")
		} else {
			fmt.Fprintf(out, "export AWS_SESSION_TOKEN=%s\n", utils.ShQuote(s.SessionToken.Reveal()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
