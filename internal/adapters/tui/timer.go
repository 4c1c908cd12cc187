package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg is sent on every countdown tick. Ticks from an older chain carry
// an older generation and are dropped.
type tickMsg struct {
	gen int
	at  time.Time
}

// tickCmd schedules exactly one tick. The handler schedules the next one.
func tickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

// Run starts the full-screen app and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, model Model) error {
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
