package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/app"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/templating"
)

func newSendTestCmd() *cobra.Command {
	var (
		templateID string
		sample     map[string]string
	)

	cmd := &cobra.Command{
		Use:   "send-test <email>",
		Short: "Render a template with sample data and send it",
		Long: `Render a template with sample data and send it through the configured SMTP account.

Examples:
  regctl send-test organiser@example.com
  regctl send-test organiser@example.com --set teamName="Null Pointers"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			log := cliLogger(cfg)
			deps, err := app.Build(cmd.Context(), cfg, db, log)
			if err != nil {
				return err
			}
			if err := deps.Templates.SeedDefaults(cmd.Context()); err != nil {
				log.WithError(err).Warn("Failed to seed defaults")
			}

			id, err := deps.Templates.SendTest(cmd.Context(), templateID, models.TestTemplateRequest{
				Email:      args[0],
				SampleData: sample,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s (message id %s)\n", templateID, args[0], id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateID, "template", "t", templating.DefaultRegistrationTemplateID, "template id")
	cmd.Flags().StringToStringVar(&sample, "set", nil, "override a sample value, key=value")
	return cmd
}
