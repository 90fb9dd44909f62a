package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/goodtune/devtime/internal/stats"
	"github.com/spf13/cobra"
)

var (
	statsUser     string
	statsTimezone string
	statsRefresh  bool
	statsJSON     bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show coding statistics",
	Long:  `Show per-day coding statistics computed in the user's timezone.`,
}

var statsDayCmd = &cobra.Command{
	Use:   "day [flags] [DATE]",
	Short: "Show stats for one day",
	Long:  `Show stats for one calendar day (YYYY-MM-DD). Defaults to today in the user's timezone.`,
	Example: `  devtime stats day --user alice
  devtime stats day --user alice --refresh 2024-01-15`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatsDay,
}

var statsRangeCmd = &cobra.Command{
	Use:   "range [flags] START [END]",
	Short: "Show stats for a range of days",
	Long:  `Show stats for every day from START to END inclusive (YYYY-MM-DD). END defaults to START.`,
	Example: `  devtime stats range --user alice 2024-01-01 2024-01-07
  devtime stats range --user alice --json 2024-01-01`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runStatsRange,
}

func init() {
	for _, c := range []*cobra.Command{statsDayCmd, statsRangeCmd} {
		c.Flags().StringVar(&statsUser, "user", "", "User ID (required)")
		c.Flags().StringVar(&statsTimezone, "tz", "", "Override the user's timezone (IANA name)")
		c.Flags().BoolVar(&statsJSON, "json", false, "Print JSON instead of a report")
		_ = c.MarkFlagRequired("user")
	}
	statsDayCmd.Flags().BoolVar(&statsRefresh, "refresh", false, "Ignore cached stats and recompute the day")

	statsCmd.AddCommand(statsDayCmd)
	statsCmd.AddCommand(statsRangeCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStatsDay(cmd *cobra.Command, args []string) error {
	env, err := openCLI()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	user, err := resolveUser(ctx, env.store.Users(), statsUser, statsTimezone)
	if err != nil {
		return err
	}

	date := env.compiler.Today(user)
	if len(args) == 1 {
		if date, err = stats.ParseDate(args[0]); err != nil {
			return err
		}
	}

	if statsRefresh {
		if err := env.compiler.Invalidate(ctx, user.ID, date); err != nil {
			return err
		}
	}

	summary, err := env.compiler.StatsForDate(ctx, user, date, !statsRefresh)
	if err != nil {
		return err
	}

	if statsJSON {
		return writeJSON(os.Stdout, map[string]stats.Summary{date.Key(): summary})
	}

	printSummary(os.Stdout, user.ID, env.compiler.Location(user).String(), date, summary)
	return nil
}

func runStatsRange(cmd *cobra.Command, args []string) error {
	start, err := stats.ParseDate(args[0])
	if err != nil {
		return err
	}
	end := start
	if len(args) == 2 {
		if end, err = stats.ParseDate(args[1]); err != nil {
			return err
		}
	}

	env, err := openCLI()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	user, err := resolveUser(ctx, env.store.Users(), statsUser, statsTimezone)
	if err != nil {
		return err
	}

	days, err := env.compiler.RangeStats(ctx, user, start, end)
	if err != nil {
		return err
	}

	if statsJSON {
		return writeJSON(os.Stdout, days)
	}

	loc := env.compiler.Location(user).String()
	total := stats.NewSummary()
	for d := start; !d.After(end); d = d.AddDays(1) {
		summary := days[d.Key()]
		printSummary(os.Stdout, user.ID, loc, d, summary)
		total.Total += summary.Total
		total.IdleFor += summary.IdleFor
	}

	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(os.Stdout, "\n%d day(s): %s coding, %s idle\n",
		len(days), formatMinutes(total.Total), formatMinutes(total.IdleFor))
	return nil
}

func printSummary(w io.Writer, userID, timezone string, date stats.Date, s stats.Summary) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	_, _ = cyan.Fprintf(w, "\n%s  %s (%s)\n", date, userID, timezone)
	fmt.Fprintf(w, "  Total:  ")
	_, _ = green.Fprintln(w, formatMinutes(s.Total))
	fmt.Fprintf(w, "  Idle:   ")
	_, _ = yellow.Fprintln(w, formatMinutes(s.IdleFor))

	printBreakdown(w, "Languages", s.Languages)
	printBreakdown(w, "Editors", s.Editors)
}

func printBreakdown(w io.Writer, title string, m map[string]int) {
	if len(m) == 0 {
		return
	}

	fmt.Fprintf(w, "  %s:\n", title)
	for _, name := range rankKeys(m) {
		fmt.Fprintf(w, "    %-16s %s\n", name, formatMinutes(m[name]))
	}
}

// rankKeys orders keys by descending value, then by name
func rankKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
