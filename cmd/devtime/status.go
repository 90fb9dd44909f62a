package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/goodtune/devtime/internal/stats"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status USER",
	Short:   "Show what a user is doing right now",
	Long:    `Classify the user's latest session as coding, idle or away.`,
	Example: `  devtime status alice`,
	Args:    cobra.ExactArgs(1),
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := openCLI()
	if err != nil {
		return err
	}
	defer env.Close()

	activity, err := env.compiler.CurrentActivity(context.Background(), args[0])
	if err != nil {
		return err
	}

	c := color.New(color.FgWhite)
	switch activity.State {
	case stats.ActivityCoding:
		c = color.New(color.FgGreen, color.Bold)
	case stats.ActivityIdle:
		c = color.New(color.FgYellow, color.Bold)
	case stats.ActivityAway:
		c = color.New(color.FgRed, color.Bold)
	}

	_, _ = c.Fprintf(os.Stdout, "%-8s", activity.State)
	fmt.Fprintf(os.Stdout, " %s\n", activity.Message())
	return nil
}
