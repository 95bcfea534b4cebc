package cmd

import (
	"fmt"

	"github.com/chukul/credctl/internal"
	"github.com/chukul/credctl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	setAccessKeyID     string
	setSecretAccessKey string
	setSessionToken    string
	setAskToken        bool
)

func init() {
	setCmd.Flags().StringVar(&setAccessKeyID, "access-key-id", "", "Access key id")
	setCmd.Flags().StringVar(&setSecretAccessKey, "secret-access-key", "", "Secret access key (prompted for when omitted)")
	setCmd.Flags().StringVar(&setSessionToken, "session-token", "", "Session token for temporary credentials")
	setCmd.Flags().BoolVar(&setAskToken, "ask-session-token", false, "Prompt for a session token")
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:     "set <profile>",
	Aliases: []string{"add", "edit"},
	Short:   "Create a profile or replace its credentials",
	Long: `Create a profile, or replace the access key, secret and session token of an
existing one. Leaving out the session token removes any token stored before.
Other keys in the profile, such as region, are kept.`,
	Example: `  credctl set dev --access-key-id AKIA...
  credctl set ci --access-key-id AKIA... --secret-access-key "$SECRET"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		interactive := stdinIsTerminal()

		accessKeyID := setAccessKeyID
		if accessKeyID == "" && interactive {
			v, err := ui.Ask(ui.Field{Title: "Access key id for " + name, Placeholder: "AKIA..."})
			if err != nil {
				return err
			}
			accessKeyID = v
		}

		secret := setSecretAccessKey
		if secret == "" && interactive {
			v, err := ui.Ask(ui.Field{Title: "Secret access key for " + name, Secret: true})
			if err != nil {
				return err
			}
			secret = v
		}

		token := setSessionToken
		if token == "" && setAskToken && interactive {
			v, err := ui.Ask(ui.Field{Title: "Session token for " + name, Secret: true, Optional: true})
			if err != nil {
				return err
			}
			token = v
		}

		err := service.UpsertProfile(internal.Profile{
			Name: name,
			Credentials: internal.Credentials{
				AccessKeyID:     accessKeyID,
				SecretAccessKey: internal.NewSecret(secret),
				SessionToken:    internal.NewSecret(token),
			},
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render(fmt.Sprintf("✅ Profile '%s' saved", name)))
		return nil
	},
}
