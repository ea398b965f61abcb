package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matchbook/matchbook/internal/db"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Browse known courses",
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known course",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := NewClient()
		if err != nil {
			return err
		}
		courses, err := client.ListCourses()
		if err != nil {
			return fmt.Errorf("failed to list courses: %w", err)
		}
		return printCourses(cmd, courses)
	},
}

var courseSuggestCmd = &cobra.Command{
	Use:   "suggest QUERY",
	Short: "Suggest courses whose name contains QUERY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := NewClient()
		if err != nil {
			return err
		}
		courses, err := client.SuggestCourses(args[0])
		if err != nil {
			return fmt.Errorf("failed to suggest courses: %w", err)
		}
		return printCourses(cmd, courses)
	},
}

func init() {
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseSuggestCmd)
}

func printCourses(cmd *cobra.Command, courses []db.Course) error {
	return printOutput(cmd.OutOrStdout(), courses, func(w *tableWriter) {
		if len(courses) == 0 {
			w.row("No courses found.")
			return
		}
		w.row("NAME", "ID")
		for _, c := range courses {
			w.row(c.Name, c.ID)
		}
	})
}
