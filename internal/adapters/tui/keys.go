package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Enter      key.Binding
	Back       key.Binding
	Timer      key.Binding
	Logs       key.Binding
	Settings   key.Binding
	Toggle     key.Binding
	GivePoints key.Binding
	NoPoints   key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "less"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "more"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Timer: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "study"),
	),
	Logs: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "study logs"),
	),
	Settings: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "settings"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "n"),
		key.WithHelp("space", "toggle notifications"),
	),
	GivePoints: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "end and give points"),
	),
	NoPoints: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "end with no points"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

// helpFor returns the bindings shown in the footer of each screen.
func (k keyMap) helpFor(screen string) []key.Binding {
	switch screen {
	case "home":
		return []key.Binding{k.Timer, k.Logs, k.Settings, k.Quit}
	case "settings":
		return []key.Binding{k.Toggle, k.Back}
	case "study_logs":
		prev := key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "newer"))
		next := key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "older"))
		return []key.Binding{prev, next, k.Back}
	case "timer":
		return []key.Binding{k.Left, k.Right, withHelp(k.Enter, "start"), k.Back}
	case "in_progress":
		return []key.Binding{withHelp(k.Back, "end early")}
	case "confirm_end":
		return []key.Binding{k.GivePoints, k.NoPoints, withHelp(k.Back, "keep studying")}
	case "points_form":
		return []key.Binding{withHelp(k.Enter, "award"), withHelp(k.Back, "cancel")}
	case "session_complete":
		return []key.Binding{withHelp(k.Enter, "home")}
	}
	return nil
}

func withHelp(b key.Binding, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(b.Keys()...), key.WithHelp(b.Help().Key, desc))
}
