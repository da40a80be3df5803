package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/database"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/logger"
)

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "regctl",
		Short:         "Maintenance tool for the hackathon registration backend",
		Long:          `regctl reads the same environment (and .env) as the server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(
		newMigrateCmd(),
		newExportCmd(),
		newSendTestCmd(),
		newVerifySMTPCmd(),
	)
	return root
}

// cliLogger logs to stderr so stdout stays clean for CSV output
func cliLogger(cfg *config.Config) *logrus.Logger {
	l := logger.New(cfg.Logger.Level, "text")
	l.SetOutput(os.Stderr)
	return l
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
