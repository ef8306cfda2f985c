package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sustainability-quiz-service/internal/app"
)

// NewExportCmd writes the CSV export straight from the configured store.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the session CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("export: %w", errNoPostgres)
			}

			svc, err := openServices(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			rows, err := svc.analytics.ExportCSVRows(cmd.Context())
			if err != nil {
				return err
			}
			data, err := app.ExportCSV(rows)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			log.Info("export written", "path", out, "sessions", len(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", app.ExportFilename, `output file, "-" for stdout`)
	return cmd
}
