package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xvierd/fuzzle/internal/domain"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start [minutes]",
	Short: "Start a study session",
	Long: `Start a study session right away and open the app on the countdown.
Minutes must be between 5 and 120 in steps of 5. Without an argument the
configured default (timer.default_minutes) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := parseMinutesArg(args, app.controller.DefaultMinutes())
		if err != nil {
			return err
		}

		ctx := setupSignalHandler()

		if _, err := app.controller.Ready(); err != nil {
			return fmt.Errorf("failed to prepare session: %w", err)
		}
		if _, err := app.controller.Navigate(domain.ScreenTimer); err != nil {
			return fmt.Errorf("failed to prepare session: %w", err)
		}
		state, err := app.controller.StartSession(ctx, minutes)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		if session, _, ok := domain.ActiveOf(state); ok && !session.Ref.IsRemote() {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠️  Studying offline: this session will not be saved.")
		}

		return launchApp(ctx)
	},
}

// parseMinutesArg returns the requested duration or fallback when none is given.
func parseMinutesArg(args []string, fallback int) (int, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidDuration, args[0])
	}
	if err := domain.ValidateDuration(minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}
