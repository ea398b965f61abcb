package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matchbook/matchbook/internal/chart"
	"github.com/matchbook/matchbook/internal/stats"
)

var (
	statsYear string

	chartYear   string
	chartFormat string
	chartOut    string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your record and monthly results",
	Long: `Show the dashboard stat cards and the month by month result counts.

Examples:
  matchbook stats
  matchbook stats --year 2024 -o json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Download the performance chart",
	Long: `Download the monthly performance chart as SVG or PNG.

Examples:
  matchbook chart --out performance.svg
  matchbook chart --year 2024 --format png --out 2024.png`,
	Args: cobra.NoArgs,
	RunE: runChart,
}

func init() {
	statsCmd.Flags().StringVar(&statsYear, "year", stats.AllTime, `Year to summarise or "All Time"`)

	chartCmd.Flags().StringVar(&chartYear, "year", stats.AllTime, `Year to chart or "All Time"`)
	chartCmd.Flags().StringVar(&chartFormat, "format", string(chart.SVG), "svg or png")
	chartCmd.Flags().StringVar(&chartOut, "out", "", "Output file (required)")
	chartCmd.MarkFlagRequired("out")
}

func runStats(cmd *cobra.Command, args []string) error {
	if !stats.ValidYearFilter(statsYear) {
		return fmt.Errorf("invalid year %q", statsYear)
	}
	client, err := NewClient()
	if err != nil {
		return err
	}
	d, err := client.Dashboard(statsYear)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	return printOutput(cmd.OutOrStdout(), d, func(w *tableWriter) {
		s := d.Summary
		w.row("Period:", d.Filter)
		w.row("Record (W-L-H):", s.Record)
		w.row("Win rate:", fmt.Sprintf("%.0f%%", s.WinRate))
		w.row("Unbeaten streak:", fmt.Sprint(s.UnbeatenStreak))
		w.row("Favourite course:", s.FavoriteCourse)
		w.row("Best win:", s.BestWin)
		w.row()
		w.row("MONTH", "WIN", "HALF", "LOSS")
		for _, m := range d.Monthly {
			w.row(m.Name, fmt.Sprint(m.Win), fmt.Sprint(m.Half), fmt.Sprint(m.Loss))
		}
	})
}

func runChart(cmd *cobra.Command, args []string) error {
	format, err := chart.ParseFormat(chartFormat)
	if err != nil {
		return err
	}
	if !stats.ValidYearFilter(chartYear) {
		return fmt.Errorf("invalid year %q", chartYear)
	}
	client, err := NewClient()
	if err != nil {
		return err
	}
	b, err := client.Chart(chartYear, string(format))
	if err != nil {
		return fmt.Errorf("failed to download chart: %w", err)
	}
	if err := os.WriteFile(chartOut, b, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", chartOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", chartOut, len(b))
	return nil
}
