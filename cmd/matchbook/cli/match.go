package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/logbook"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Log and browse matches",
	Long: `Log and browse match play results.

Examples:
  matchbook match add --course Erinvale --opponent Sam --result Win --score "3 & 2"
  matchbook match list --period "This Year" --result Win
  matchbook match delete 3f0c...`,
}

var (
	addDate     string
	addCourse   string
	addOpponent string
	addFormat   string
	addResult   string
	addScore    string

	listPeriod string
	listResult string
	listCourse string
)

var matchAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a played match",
	Long: `Log a match. The course is created on first use and reused (ignoring
case) afterwards. Date defaults to today, format to Singles and result to Win.`,
	Args: cobra.NoArgs,
	RunE: runMatchAdd,
}

var matchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List matches grouped by month",
	Args:  cobra.NoArgs,
	RunE:  runMatchList,
}

var matchShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one match",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchShow,
}

var matchDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := NewClient()
		if err != nil {
			return err
		}
		if err := client.DeleteMatch(args[0]); err != nil {
			return fmt.Errorf("failed to delete match: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Deleted match %s\n", args[0])
		return nil
	},
}

func init() {
	matchAddCmd.Flags().StringVar(&addDate, "date", "", "Date played, YYYY-MM-DD (default today)")
	matchAddCmd.Flags().StringVar(&addCourse, "course", "", "Course name")
	matchAddCmd.Flags().StringVar(&addOpponent, "opponent", "", "Opponent name")
	matchAddCmd.Flags().StringVar(&addFormat, "format", db.FormatSingles, "Singles, Betterball or Foursomes")
	matchAddCmd.Flags().StringVar(&addResult, "result", db.ResultWin, "Win, Loss or Half")
	matchAddCmd.Flags().StringVar(&addScore, "score", "", `Margin such as "3 & 2" (optional)`)
	matchAddCmd.MarkFlagRequired("course")
	matchAddCmd.MarkFlagRequired("opponent")

	matchListCmd.Flags().StringVar(&listPeriod, "period", logbook.All, `All, "Last 30 Days", "This Year" or "Last Year"`)
	matchListCmd.Flags().StringVar(&listResult, "result", logbook.All, "All, Win, Loss or Half")
	matchListCmd.Flags().StringVar(&listCourse, "course", logbook.All, "Course name or All")

	matchCmd.AddCommand(matchAddCmd)
	matchCmd.AddCommand(matchListCmd)
	matchCmd.AddCommand(matchShowCmd)
	matchCmd.AddCommand(matchDeleteCmd)
}

func runMatchAdd(cmd *cobra.Command, args []string) error {
	form := logbook.Form{
		Date:       addDate,
		CourseName: addCourse,
		Format:     addFormat,
		Opponent:   addOpponent,
		Result:     addResult,
		Score:      addScore,
	}
	// Catch obvious mistakes before the round trip; the server validates again.
	form.Normalize(time.Now())
	if err := form.Validate(); err != nil {
		return err
	}

	client, err := NewClient()
	if err != nil {
		return err
	}
	logged, err := client.CreateMatch(form)
	if err != nil {
		return fmt.Errorf("failed to log match: %w", err)
	}

	if logged.CourseCreated {
		fmt.Fprintf(os.Stderr, "Added new course %s\n", form.CourseName)
	}
	return printOutput(cmd.OutOrStdout(), logged, func(w *tableWriter) {
		w.row("ID", "DATE", "COURSE", "OPPONENT", "FORMAT", "RESULT", "SCORE")
		matchRow(w, *logged.Match)
	})
}

func runMatchList(cmd *cobra.Command, args []string) error {
	client, err := NewClient()
	if err != nil {
		return err
	}
	book, err := client.Logbook(logbook.Filter{Period: listPeriod, Result: listResult, Course: listCourse})
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}

	return printOutput(cmd.OutOrStdout(), book, func(w *tableWriter) {
		if len(book.Groups) == 0 {
			w.row("No matches found.")
			return
		}
		for i, g := range book.Groups {
			if i > 0 {
				w.row()
			}
			w.row(g.Title)
			for _, m := range g.Items {
				w.row("  "+logbook.DisplayDate(m), logbook.DisplayCourse(m), "vs "+m.Opponent, m.Format, m.Result, logbook.DisplayScore(m.Score), m.ID)
			}
		}
	})
}

func runMatchShow(cmd *cobra.Command, args []string) error {
	client, err := NewClient()
	if err != nil {
		return err
	}
	m, err := client.GetMatch(args[0])
	if err != nil {
		return fmt.Errorf("failed to get match: %w", err)
	}
	return printOutput(cmd.OutOrStdout(), m, func(w *tableWriter) {
		w.row("ID:", m.ID)
		w.row("Date:", logbook.DisplayDate(*m))
		w.row("Course:", logbook.DisplayCourse(*m))
		w.row("Opponent:", m.Opponent)
		w.row("Format:", m.Format)
		w.row("Result:", m.Result)
		w.row("Score:", logbook.DisplayScore(m.Score))
	})
}

func matchRow(w *tableWriter, m db.Match) {
	w.row(m.ID, m.Date, logbook.DisplayCourse(m), m.Opponent, m.Format, m.Result, logbook.DisplayScore(m.Score))
}
