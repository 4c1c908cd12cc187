package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// glyphs maps each digit and the colon to a three-row half-block shape.
var glyphs = map[rune][3]string{
	'0': {"█▀█", "█ █", "▀▀▀"},
	'1': {"▀█ ", " █ ", "▀▀▀"},
	'2': {"▀▀█", "█▀▀", "▀▀▀"},
	'3': {"▀▀█", " ▀█", "▀▀▀"},
	'4': {"█ █", "▀▀█", "  ▀"},
	'5': {"█▀▀", "▀▀█", "▀▀▀"},
	'6': {"█▀▀", "█▀█", "▀▀▀"},
	'7': {"▀▀█", "  █", "  ▀"},
	'8': {"█▀█", "█▀█", "▀▀▀"},
	'9': {"█▀█", "▀▀█", "▀▀▀"},
	':': {"▄", " ", "▀"},
}

// clockText formats seconds as MM:SS. Minutes are not wrapped into hours.
func clockText(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// renderBigClock draws the remaining time in large digits, or a single bold
// line when the terminal is too narrow.
func renderBigClock(seconds int, color lipgloss.Color, width int) string {
	text := clockText(seconds)
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < 30 {
		return style.Render(text)
	}

	var rows [3][]string
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] = append(rows[i], glyph[i])
		}
	}

	out := make([]string, len(rows))
	for i, parts := range rows {
		out[i] = style.Render(strings.Join(parts, " "))
	}
	return strings.Join(out, "\n")
}
