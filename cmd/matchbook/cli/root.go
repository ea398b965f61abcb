package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "matchbook",
	Short: "Matchbook: a match play golf logbook",
	Long: `Matchbook records your match play rounds and summarises them:
record, unbeaten streak, favourite course, best win and a month by month
performance chart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case outputTable, outputJSON, outputYAML:
			return nil
		}
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputTable, "Output format: table, json or yaml")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(versionCmd)
}
