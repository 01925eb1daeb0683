package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUsersCmd(a *app) *cobra.Command {
	users := &cobra.Command{Use: "users", Short: "Registered accounts"}
	users.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.accounts.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tCREATED")
			for _, u := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Email, u.CreatedAt)
			}
			return tw.Flush()
		},
	})
	return users
}

func newSessionCmd(a *app) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "The signed-in session"}
	session.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the session, or null when nobody is signed in",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.accounts.LoadSession(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Sign out, invalidating every issued cookie",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.accounts.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
				return nil
			},
		},
	)
	return session
}

func newOnboardingCmd(a *app) *cobra.Command {
	onboarding := &cobra.Command{Use: "onboarding", Short: "The onboarding record"}
	onboarding.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the completion record",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rec, err := a.onboarding.Load(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rec)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the record so the wizard runs again",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.onboarding.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "onboarding reset")
				return nil
			},
		},
	)
	return onboarding
}

func newProfileCmd(a *app) *cobra.Command {
	profile := &cobra.Command{Use: "profile", Short: "The user profile"}
	profile.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored profile, defaults filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.profiles.Load(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	})
	return profile
}

func newDevCmd(a *app) *cobra.Command {
	dev := &cobra.Command{Use: "dev", Short: "Development switches"}
	dev.AddCommand(&cobra.Command{
		Use:       "auth-bypass [on|off]",
		Short:     "Show or set the stored auth bypass flag",
		Long:      "The server only honors the stored flag when dev.honor_stored_bypass is set.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := a.settings.SetAuthBypass(cmd.Context(), args[0] == "on"); err != nil {
					return err
				}
			}
			on, err := a.settings.AuthBypass(cmd.Context())
			if err != nil {
				return err
			}
			state := "off"
			if on {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "auth bypass: %s\n", state)
			return nil
		},
	})
	return dev
}

func newSettingsCmd(a *app) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Theme, language and notification settings"}
	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print every setting, defaults filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	})
	return settings
}
