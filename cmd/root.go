package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/chukul/credctl/internal"
	"github.com/chukul/credctl/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	settings = internal.NewViper()
	service  *internal.ProfileService
)

var rootCmd = &cobra.Command{
	Use:   "credctl",
	Short: "credctl manages the profiles in your AWS shared credentials file",
	Long: `credctl lists, shows, creates, updates and deletes the named profiles in
~/.aws/credentials and checks which identity a profile resolves to.

Unknown keys and comments in the file are preserved on every write.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// setup loads configuration, the logger and the profile service.
func setup() error {
	cfg, err := internal.LoadConfig(settings)
	if err != nil {
		return err
	}
	if err := internal.InitLogger(cfg.Log); err != nil {
		return err
	}

	log.Debug().
		Str("config", settings.ConfigFileUsed()).
		Str("credentials_file", cfg.CredentialsFile).
		Str("region", cfg.Region).
		Msg("Loaded configuration")

	store := internal.NewStore(cfg.CredentialsFile, log.Logger)
	verifier := internal.NewIdentityVerifier(internal.VerifierOptions{
		Region:   cfg.Region,
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.Timeout,
	}, log.Logger)
	service = internal.NewProfileService(store, verifier, log.Logger)
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("❌ "+describeError(err)))
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("credentials-file", "", "Credentials file (default $AWS_SHARED_CREDENTIALS_FILE or ~/.aws/credentials)")
	flags.String("region", internal.DefaultRegion, "Region used to reach STS")
	flags.String("endpoint", "", "Override the STS endpoint URL")
	flags.Duration("timeout", internal.DefaultVerifyTimeout, "Timeout for identity checks")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")

	bind := map[string]string{
		"credentials_file": "credentials-file",
		"region":           "region",
		"endpoint":         "endpoint",
		"timeout":          "timeout",
		"log.level":        "log-level",
		"log.format":       "log-format",
	}
	for key, flag := range bind {
		if err := settings.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
