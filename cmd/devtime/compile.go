package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goodtune/devtime/internal/compile"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile yesterday's stats for every user now",
	Long:  `Run the nightly compile once: yesterday, in each user's timezone, is computed and cached.`,
	Args:  cobra.NoArgs,
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	env, err := openCLI()
	if err != nil {
		return err
	}
	defer env.Close()

	scheduler, err := compile.NewScheduler(env.store.Users(), env.compiler, env.cfg.Stats.CompileTime, nil, env.logger)
	if err != nil {
		return err
	}

	result, err := scheduler.RunOnce(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Compiled %d of %d user(s), %d failed\n", result.Compiled, result.Users, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d user(s) failed to compile", result.Failed)
	}
	return nil
}
