package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goodtune/devtime/internal/storage"
	"github.com/spf13/cobra"
)

var userTimezone string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage tracked users",
}

var userSetCmd = &cobra.Command{
	Use:     "set [flags] USER",
	Short:   "Create a user or update their timezone",
	Example: `  devtime user set alice --timezone Europe/Berlin`,
	Args:    cobra.ExactArgs(1),
	RunE:    runUserSet,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked users",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

func init() {
	userSetCmd.Flags().StringVar(&userTimezone, "timezone", "", "IANA timezone, empty for the configured default")

	userCmd.AddCommand(userSetCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserSet(cmd *cobra.Command, args []string) error {
	if userTimezone != "" {
		if _, err := time.LoadLocation(userTimezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", userTimezone, err)
		}
	}

	env, err := openCLI()
	if err != nil {
		return err
	}
	defer env.Close()

	user := storage.User{ID: args[0], Timezone: userTimezone}
	if err := env.store.Users().Upsert(context.Background(), user); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	fmt.Fprintf(os.Stdout, "User %s timezone set to %s\n", user.ID, env.compiler.Location(user))
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	env, err := openCLI()
	if err != nil {
		return err
	}
	defer env.Close()

	users, err := env.store.Users().List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	for _, u := range users {
		tz := u.Timezone
		if tz == "" {
			tz = "(default)"
		}
		fmt.Fprintf(os.Stdout, "%-24s %-24s %s\n", u.ID, tz, u.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
