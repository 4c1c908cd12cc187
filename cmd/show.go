package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xvierd/fuzzle/internal/domain"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one study session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		session, err := app.history.GetSession(ctx, args[0])
		if errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("no session with id %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), sessionJSON(session))
		}
		writeSessionDetail(cmd.OutOrStdout(), session)
		return nil
	},
}

func writeSessionDetail(w io.Writer, s *domain.StudySession) {
	owner := s.OwnerID()
	if owner == "" {
		owner = "-"
	}
	ended := "no"
	if s.EndedEarly {
		ended = "yes"
	}

	fmt.Fprintf(w, "Session %s\n\n", s.ID)
	fmt.Fprintf(w, "  User:          %s\n", owner)
	fmt.Fprintf(w, "  Started:       %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  Duration:      %s\n", formatMinutes(s.Duration()))
	fmt.Fprintf(w, "  Ended early:   %s\n", ended)
	fmt.Fprintf(w, "  Breaks taken:  %d\n", s.BreaksTaken)
	fmt.Fprintf(w, "  Hints given:   %d\n", s.HintsGiven)
	fmt.Fprintf(w, "  Distractions:  %d\n", s.Distractions)
	fmt.Fprintf(w, "  Points earned: %d\n", s.PointsEarned)
}
