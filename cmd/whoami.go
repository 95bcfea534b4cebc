package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chukul/credctl/internal"
	"github.com/chukul/credctl/internal/ui"
	"github.com/spf13/cobra"
)

var whoamiJSON bool

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "Output the identity in JSON format")
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami [profile]",
	Aliases: []string{"check"},
	Short:   "Check which identity a profile's credentials resolve to",
	Long: `Call STS GetCallerIdentity with the credentials stored under a profile.
The call is made once, read-only, and is bounded by --timeout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := profileArg(args, "Select Profile to Check")
		if err != nil {
			return err
		}

		id, err := checkIdentity(cmd.Context(), name)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if whoamiJSON {
			b, err := json.MarshalIndent(id, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintln(out, id.Display())
		return nil
	},
}

func checkIdentity(ctx context.Context, name string) (*internal.Identity, error) {
	if !stderrIsTerminal() {
		return service.CheckIdentity(ctx, name)
	}

	res, err := ui.Spin(ctx, fmt.Sprintf("Checking identity for '%s'...", name), func(ctx context.Context) (any, error) {
		return service.CheckIdentity(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return res.(*internal.Identity), nil
}
