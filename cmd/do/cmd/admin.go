package cmd

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/config"
	"github.com/AKT74/shareulbi-backend/internal/db"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

// CreateAdminCmd bootstraps an approved admin account. Admins cannot register
// through the API.
func CreateAdminCmd() *cobra.Command {
	var fullname, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an approved admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, conn *sqlx.DB) error {
				err := db.RunMigrations(conn.DB, cfg.DBDriver)
				if err != nil {
					return err
				}

				emails := service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppURL, cfg.AppName, cfg.IsDevelopment())
				auth := service.NewAuthService(
					repository.NewUserRepository(conn),
					emails,
					activity.NewPublisher(nil),
					service.EmailPolicy{},
					cfg.JWTSecret,
					time.Hour,
					cfg.SecureCookies(),
				)

				user, err := auth.CreateAdmin(cmd.Context(), fullname, email, password)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fullname, "name", "Administrator", "full name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
