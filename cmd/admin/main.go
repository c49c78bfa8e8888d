// Command admin seeds and checks administrator accounts directly against the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"birthdayReminderTracker/internal/auth"
	"birthdayReminderTracker/internal/config"
	"birthdayReminderTracker/internal/db"
	"birthdayReminderTracker/models"
	"birthdayReminderTracker/repository"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Manage administrator accounts",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (defaults to DB_PATH)")

	open := func() (*repository.UserRepository, *repository.BirthdayRepository, func(), error) {
		path := dbPath
		if path == "" {
			if err := config.LoadDotenv(); err != nil {
				return nil, nil, nil, err
			}
			cfg, err := config.LoadWithDefaults()
			if err != nil {
				return nil, nil, nil, err
			}
			path = cfg.DB.Path
		}
		d, g, err := db.OpenGorm(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open db: %w", err)
		}
		return repository.NewUserRepository(g), repository.NewBirthdayRepository(g), func() { _ = d.Close() }, nil
	}

	root.AddCommand(newCreateCmd(open), newVerifyCmd(open))
	return root
}

type openFunc func() (*repository.UserRepository, *repository.BirthdayRepository, func(), error)

func newCreateCmd(open openFunc) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account, or promote an existing account to admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, _, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return createAdmin(ctx, cmd.OutOrStdout(), users, name, email, password)
		},
	}
	cmd.Flags().StringVar(&name, "name", "admin", "display name")
	cmd.Flags().StringVar(&email, "email", "admin@admin.com", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newVerifyCmd(open openFunc) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that an admin account exists and accepts a password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, birthdays, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return verifyAdmin(ctx, cmd.OutOrStdout(), users, birthdays, email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@admin.com", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, out io.Writer, users repository.UserRepositoryI, name, email, password string) error {
	email = repository.NormalizeEmail(email)
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsAdmin() {
			fmt.Fprintf(out, "admin %s already exists (id=%d)\n", existing.Email, existing.ID)
			return nil
		}
		if err := users.UpdateRole(ctx, email, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote %s: %w", email, err)
		}
		fmt.Fprintf(out, "promoted %s to admin (id=%d)\n", existing.Email, existing.ID)
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := models.NewAdmin(name, email)
	u.PasswordHash = hash
	created, err := users.Create(ctx, u)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(out, "created admin %s (id=%d)\n", created.Email, created.ID)
	return nil
}

var errVerifyFailed = errors.New("admin verification failed")

func verifyAdmin(ctx context.Context, out io.Writer, users repository.UserRepositoryI, birthdays repository.BirthdayRepositoryI, email, password string) error {
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil || !u.IsAdmin() {
		fmt.Fprintf(out, "no admin account for %s\n", repository.NormalizeEmail(email))
		return errVerifyFailed
	}
	fmt.Fprintf(out, "admin found: id=%d name=%q email=%s created=%s\n", u.ID, u.Name, u.Email, u.CreatedAt.Format(time.RFC3339))
	if !auth.VerifyPassword(password, u.PasswordHash) {
		fmt.Fprintln(out, "password check: FAILED")
		return errVerifyFailed
	}
	fmt.Fprintln(out, "password check: ok")

	totalUsers, err := users.Count(ctx)
	if err != nil {
		return err
	}
	totalBirthdays, err := birthdays.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "users=%d active_birthdays=%d\n", totalUsers, totalBirthdays)
	return nil
}
