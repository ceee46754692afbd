// ABOUTME: CLI commands for the owner profile.
// ABOUTME: Sets and shows the single user record.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/storage"
)

var (
	userFullName    string
	userDisplayName string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the owner profile",
}

var userSetCmd = &cobra.Command{
	Use:   "set [user_id]",
	Short: "Create or update the profile",
	Long: `Create or update the profile. Both name fields are overwritten; omit a flag
to clear it. The id defaults to the configured user_id.

EXAMPLES:

  trainload user set --full-name "Ada Runner" --display-name ada
  trainload user set coach --full-name "Coach"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := cfg.GetUserID()
		if len(args) == 1 {
			id = args[0]
		}

		u := &models.User{ID: id}
		if userFullName != "" {
			u.FullName = models.String(userFullName)
		}
		if userDisplayName != "" {
			u.DisplayName = models.String(userDisplayName)
		}
		if err := db.UpsertUser(cmd.Context(), u); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		color.Green("✓ Saved user %s", id)
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show [user_id]",
	Short: "Show the profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := cfg.GetUserID()
		if len(args) == 1 {
			id = args[0]
		}

		u, err := db.GetUser(cmd.Context(), id)
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("no user %q (run 'trainload user set')", id)
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s %s\n", faint.Sprint("id           "), u.ID)
		fmt.Printf("%s %s\n", faint.Sprint("full name    "), deref(u.FullName))
		fmt.Printf("%s %s\n", faint.Sprint("display name "), deref(u.DisplayName))
		return nil
	},
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func init() {
	userSetCmd.Flags().StringVar(&userFullName, "full-name", "", "full name")
	userSetCmd.Flags().StringVar(&userDisplayName, "display-name", "", "display name")
	userCmd.AddCommand(userSetCmd, userShowCmd)
	rootCmd.AddCommand(userCmd)
}
