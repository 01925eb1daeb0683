package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/auth"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/notify"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/service"
)

// StoreOpener opens the store the commands work on.
type StoreOpener func(ctx context.Context) (repository.KeyValueStore, error)

// app is built by the root command before any subcommand runs.
type app struct {
	store      repository.KeyValueStore
	accounts   *service.AuthService
	onboarding *service.OnboardingService
	profiles   *service.ProfileService
	settings   *service.SettingsService
}

func newRootCmd(open StoreOpener) *cobra.Command {
	var (
		configPath string
		verbose    bool
		timeout    time.Duration
		a          app
	)

	root := &cobra.Command{
		Use:           "bonvanctl",
		Short:         "Inspect and repair the Bonvan dashboard store",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
					return err
				}
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			store, err := open(ctx)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}

			// bonvanctl never hashes passwords, the scheme only matters to SignUp.
			passwords, err := auth.NewPasswordService(auth.SchemeSHA256, 0)
			if err != nil {
				store.Close()
				return err
			}

			a.store = store
			a.accounts = service.NewAuthService(store, passwords, logger)
			a.onboarding = service.NewOnboardingService(store, &notify.Subject{}, logger)
			a.profiles = service.NewProfileService(store, a.onboarding, logger)
			a.settings = service.NewSettingsService(store, logger)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: $CONFIG_PATH, then environment only)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "store connection timeout")

	root.AddCommand(
		newUsersCmd(&a),
		newSessionCmd(&a),
		newOnboardingCmd(&a),
		newProfileCmd(&a),
		newDevCmd(&a),
		newSettingsCmd(&a),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
