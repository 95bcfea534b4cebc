package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/chukul/credctl/internal"
	"github.com/spf13/cobra"
)

var (
	showReveal bool
	showJSON   bool
)

func init() {
	showCmd.Flags().BoolVar(&showReveal, "reveal", false, "Print secret values in plaintext")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(showCmd)
}

type profileDetails struct {
	Name            string `json:"name"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken,omitempty"`
}

var showCmd = &cobra.Command{
	Use:   "show <profile>",
	Short: "Show the credentials stored under a profile",
	Long:  `Show the access key id of a profile. Secrets are masked unless --reveal is given.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := service.GetProfile(args[0])
		if err != nil {
			return err
		}

		d := newProfileDetails(p, showReveal)
		out := cmd.OutOrStdout()
		if showJSON {
			b, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		token := d.SessionToken
		if token == "" {
			token = "(none)"
		}
		fmt.Fprintf(out, "%-18s %s\n", "Profile:", d.Name)
		fmt.Fprintf(out, "%-18s %s\n", "Access key id:", d.AccessKeyID)
		fmt.Fprintf(out, "%-18s %s\n", "Secret access key:", d.SecretAccessKey)
		fmt.Fprintf(out, "%-18s %s\n", "Session token:", token)
		return nil
	},
}

func newProfileDetails(p *internal.Profile, reveal bool) profileDetails {
	d := profileDetails{
		Name:            p.Name,
		AccessKeyID:     p.AccessKeyID,
		SecretAccessKey: p.SecretAccessKey.String(),
		SessionToken:    p.SessionToken.String(),
	}
	if reveal {
		d.SecretAccessKey = p.SecretAccessKey.Reveal()
		d.SessionToken = p.SessionToken.Reveal()
	}
	return d
}
