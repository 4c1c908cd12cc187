package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/fuzzle/internal/domain"
)

// pointsCmd represents the points command
var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show the current user's points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()

		total, err := app.history.CurrentPoints(ctx)
		if errors.Is(err, domain.ErrNoIdentity) {
			return fmt.Errorf("no user set: pass --user or set user_id in the config")
		}
		if err != nil {
			return fmt.Errorf("failed to load points: %w", err)
		}

		if jsonOutput {
			var lastUpdated interface{}
			if !total.LastUpdated.IsZero() {
				lastUpdated = total.LastUpdated.Format(time.RFC3339)
			}
			return writeJSON(out, map[string]interface{}{
				"user_id":      total.UserID,
				"total_points": total.TotalPoints,
				"last_updated": lastUpdated,
			})
		}

		if total.LastUpdated.IsZero() {
			fmt.Fprintf(out, "⭐ %s has no points yet.\n", total.UserID)
			return nil
		}
		fmt.Fprintf(out, "⭐ %s has %d points\n", total.UserID, total.TotalPoints)
		return nil
	},
}
