package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/xvierd/fuzzle/internal/domain"
)

var (
	logsPage int
	logsMine bool
)

// wideTableWidth is the terminal width needed to show session ids.
const wideTableWidth = 90

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List study sessions, newest first",
	Long:  `List recorded study sessions one page at a time. Pages start at 1.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if logsPage < 1 {
			return fmt.Errorf("--page must be 1 or more")
		}

		var userID *string
		if logsMine {
			id, err := app.history.CurrentUserID(ctx)
			if err != nil {
				return fmt.Errorf("failed to resolve current user: %w", err)
			}
			userID = &id
		}

		sessions, hasMore, err := app.history.ListSessions(ctx, userID, logsPage-1)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			list := make([]map[string]interface{}, 0, len(sessions))
			for _, s := range sessions {
				list = append(list, sessionJSON(s))
			}
			return writeJSON(out, map[string]interface{}{
				"page":     logsPage,
				"has_more": hasMore,
				"sessions": list,
				"count":    len(list),
			})
		}

		if len(sessions) == 0 {
			fmt.Fprintln(out, "No study sessions found.")
			return nil
		}

		fmt.Fprintf(out, "📚 Study sessions (page %d):\n\n", logsPage)
		writeSessionTable(out, sessions, terminalWidth())
		if hasMore {
			fmt.Fprintf(out, "\nMore sessions: fuzzle logs --page %d\n", logsPage+1)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logsPage, "page", "p", 1, "Page number to show")
	logsCmd.Flags().BoolVarP(&logsMine, "mine", "m", false, "Only show the current user's sessions")
}

// terminalWidth reports the stdout width, or 0 when stdout is not a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil {
		return 0
	}
	return w
}

// writeSessionTable prints one row per session. Ids are only shown when the
// terminal is wide enough or output is not a terminal.
func writeSessionTable(w io.Writer, sessions []*domain.StudySession, width int) {
	showID := width == 0 || width >= wideTableWidth

	header := fmt.Sprintf("%-17s %-8s %-11s %6s", "DATE", "LENGTH", "ENDED", "POINTS")
	if showID {
		header += "  ID"
	}
	fmt.Fprintln(w, header)

	for _, s := range sessions {
		ended := "finished"
		if s.EndedEarly {
			ended = "early"
		}
		row := fmt.Sprintf("%-17s %-8s %-11s %6d",
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			formatMinutes(s.Duration()),
			ended,
			s.PointsEarned,
		)
		if showID {
			row += "  " + s.ID
		}
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// sessionJSON is the JSON shape shared by logs and show.
func sessionJSON(s *domain.StudySession) map[string]interface{} {
	var userID interface{}
	if s.UserID != nil {
		userID = *s.UserID
	}
	return map[string]interface{}{
		"id":               s.ID,
		"user_id":          userID,
		"duration_minutes": s.DurationMinutes,
		"breaks_taken":     s.BreaksTaken,
		"hints_given":      s.HintsGiven,
		"distractions":     s.Distractions,
		"points_earned":    s.PointsEarned,
		"ended_early":      s.EndedEarly,
		"created_at":       s.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w io.Writer, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(jsonData))
	return nil
}
