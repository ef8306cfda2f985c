package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sustainability-quiz-service/internal/domain"
)

// NewUserCmd groups dashboard account management.
func NewUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard users",
	}
	cmd.AddCommand(newUserAddCmd(configPath))
	return cmd
}

func newUserAddCmd(configPath *string) *cobra.Command {
	var email, password, role string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a dashboard user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("user add: %w", errNoPostgres)
			}
			if err := runMigrations(cmd.Context(), cfg, log); err != nil {
				return err
			}

			svc, err := openServices(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			u, err := svc.auth.CreateUser(cmd.Context(), email, password, role)
			if err != nil {
				return err
			}
			log.Info("user created", "id", u.ID, "email", u.Email, "role", u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&role, "role", domain.RoleAdmin, "user role")
	return cmd
}
