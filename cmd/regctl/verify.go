package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/cache"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/mailer"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/repositories"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/services"
)

func newVerifySMTPCmd() *cobra.Command {
	var stored bool

	cmd := &cobra.Command{
		Use:   "verify-smtp",
		Short: "Log in to the SMTP server without sending anything",
		Long: `Log in to the SMTP server without sending anything.

By default the EMAIL_* environment is used. With --stored the account saved
through the admin API is checked instead, falling back to the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadEnv()

			if stored {
				db, err := openDB(cfg)
				if err != nil {
					return err
				}
				defer db.Close()

				settings := services.NewEmailSettingsService(
					repositories.NewEmailSettingsRepository(db),
					cfg.Email,
					cache.New[*models.EmailConfig](cfg.Cache.TTL),
					cliLogger(cfg),
				)
				current, source := settings.Get(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "checking %s:%d as %s (%s)\n", current.Host, current.Port, current.User, source)
				if err := settings.Test(cmd.Context(), nil); err != nil {
					return err
				}
			} else {
				smtp, err := mailer.NewSMTP(cfg.Email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "checking %s:%d as %s (environment)\n", cfg.Email.Host, cfg.Email.Port, cfg.Email.User)
				if err := smtp.VerifyConnection(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "SMTP login succeeded")
			return nil
		},
	}

	cmd.Flags().BoolVar(&stored, "stored", false, "check the account saved in the database")
	return cmd
}
