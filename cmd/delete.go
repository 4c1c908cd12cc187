package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/fuzzle/internal/domain"
)

var deleteYes bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a study session",
	Long: `Delete a study session record by its ID. Points already earned for the
session stay in the total. This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id := args[0]

		session, err := app.history.GetSession(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("no session with id %s", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		if !deleteYes && !jsonOutput {
			if !confirmDelete(cmd.InOrStdin(), cmd.OutOrStdout(), session) {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
				return nil
			}
		}

		if err := app.history.DeleteSession(ctx, id); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("no session with id %s", id)
			}
			return err
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"deleted": true, "session_id": id})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s deleted.\n", id)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")
}

// confirmDelete asks before removing a session. Anything but y or yes declines.
func confirmDelete(in io.Reader, out io.Writer, s *domain.StudySession) bool {
	fmt.Fprintf(out, "Delete the %s session from %s? [y/N]: ",
		formatMinutes(s.Duration()), s.CreatedAt.Local().Format("2006-01-02 15:04"))

	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
