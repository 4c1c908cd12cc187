package tui

import (
	"reflect"

	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/fuzzle/internal/config"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

type styles struct {
	title    lipgloss.Style
	primary  lipgloss.Style
	accent   lipgloss.Style
	muted    lipgloss.Style
	err      lipgloss.Style
	selected lipgloss.Style
	box      lipgloss.Style
	dialOn   lipgloss.Style
	dialOff  lipgloss.Style
}

func newStyles(theme config.ThemeConfig) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorTitle)),
		primary:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorPrimary)),
		accent:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorAccent)),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorMuted)),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorError)),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorAccent)),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.ColorMuted)).
			Padding(1, 3),
		dialOn:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorPrimary)),
		dialOff: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorMuted)),
	}
}
