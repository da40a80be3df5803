package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/services"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/sheets"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

func newExportCmd() *cobra.Command {
	var (
		output string
		filter models.RegistrationFilter
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export registrations from the sheet as CSV",
		Long: `Export registrations from the sheet as CSV.

Examples:
  # Everything, to stdout
  regctl export

  # Beginners from CSE, to a file
  regctl export --department CSE --experience beginner -o beginners.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			sheet, err := sheets.New(cmd.Context(), cfg.Sheets, metrics.NewMetrics())
			if err != nil {
				return fmt.Errorf("connect to registration sheet: %w", err)
			}
			admin := services.NewAdminService(sheet, nil, cliLogger(cfg))

			w, closeFn, err := outputWriter(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			n, err := admin.ExportCSV(cmd.Context(), filter, w)
			if cerr := closeFn(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d registrations to %s\n", n, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&filter.Search, "search", "", "match leader name, team name or email")
	cmd.Flags().StringVar(&filter.Department, "department", "", "only this department")
	cmd.Flags().StringVar(&filter.Experience, "experience", "", "only this experience level")
	return cmd
}

// outputWriter returns stdout, or a created file when path is set
func outputWriter(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
