package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/fuzzle/internal/domain"
)

// View renders the TUI.
func (m Model) View() string {
	state := m.ctrl.State()

	var body string
	helpKey := string(state.Screen.Kind())
	switch screen := state.Screen.(type) {
	case domain.Loading:
		body = m.styles.muted.Render("Loading…")
	case domain.Home:
		body = m.viewHome()
	case domain.Settings:
		body = m.viewSettings()
	case domain.StudyLogs:
		body = m.viewLogs(screen)
	case domain.Timer:
		body = m.viewTimer(screen)
	case domain.InProgress:
		body = m.viewInProgress(screen)
	case domain.ConfirmEnd:
		body = m.viewConfirmEnd(screen)
		if m.pointsForm != nil {
			helpKey = "points_form"
		}
	case domain.SessionComplete:
		body = m.viewComplete(screen)
	}

	var b strings.Builder
	b.WriteString(body)
	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(m.styles.err.Render("Error: " + m.err.Error()))
	}
	if bindings := keys.helpFor(helpKey); len(bindings) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView(bindings))
	}

	if m.width == 0 || m.height == 0 {
		return b.String()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

func (m Model) viewHome() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.theme.IconApp + " Fuzzle"))
	b.WriteString("\n\n")

	if m.points != nil {
		b.WriteString(m.styles.accent.Render(fmt.Sprintf("%s %d points", m.theme.IconPoints, m.points.TotalPoints)))
	} else {
		b.WriteString(m.styles.muted.Render(m.theme.IconPoints + " no points yet"))
	}
	b.WriteString("\n\n")

	for i, kind := range homeMenu {
		label := domain.GetScreenLabel(kind)
		if i == m.homeCursor {
			b.WriteString(m.styles.selected.Render("▸ " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewSettings() string {
	account := m.userID
	if account == "" {
		account = "not signed in"
	}
	toggle := "off"
	if m.notificationsEnabled {
		toggle = "on"
	}

	lines := []string{
		m.styles.title.Render("Settings"),
		"",
		m.styles.muted.Render("Account"),
		"  " + account,
		"",
		m.styles.muted.Render("Notifications"),
		"  " + m.styles.accent.Render(toggle),
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewLogs(screen domain.StudyLogs) string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Study Logs"))
	b.WriteString(m.styles.muted.Render(fmt.Sprintf("  page %d", screen.Page+1)))
	b.WriteString("\n\n")

	if m.logs.loading {
		b.WriteString(m.styles.muted.Render("Loading…"))
		return b.String()
	}
	if len(m.logs.sessions) == 0 {
		b.WriteString(m.styles.muted.Render("No study sessions yet."))
		return b.String()
	}

	b.WriteString(m.logs.chart.View())
	b.WriteString("\n\n")
	for _, s := range m.logs.sessions {
		line := fmt.Sprintf("%s  %3d min", s.CreatedAt.Local().Format("Jan 02 15:04"), s.DurationMinutes)
		if s.EndedEarly {
			line += fmt.Sprintf("  ended early · %d pts", s.PointsEarned)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.logs.hasMore {
		b.WriteString(m.styles.muted.Render("more →"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildChart plots minutes studied per session, oldest on the left.
func (m Model) buildChart(sessions []*domain.StudySession) barchart.Model {
	width := clamp(m.width-10, 20, 70)
	chart := barchart.New(width, 8)

	bars := make([]barchart.BarData, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		style := m.styles.dialOn
		if s.EndedEarly {
			style = m.styles.muted
		}
		bars = append(bars, barchart.BarData{
			Label: s.CreatedAt.Local().Format("01/02"),
			Values: []barchart.BarValue{{
				Name:  "minutes",
				Value: float64(s.DurationMinutes),
				Style: style,
			}},
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart
}

func (m Model) viewTimer(screen domain.Timer) string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Study Timer"))
	b.WriteString("\n\n")
	b.WriteString(m.renderDial(m.dial.Rotation(), screen.Selected))
	b.WriteString("\n\n")
	if m.starting || screen.Starting {
		b.WriteString(m.styles.muted.Render("Starting…"))
	} else {
		b.WriteString(m.styles.muted.Render("drag the dial or use ←/→"))
	}
	return b.String()
}

const (
	dialRadiusX = 12
	dialRadiusY = 6
	dialTicks   = 24
)

// renderDial draws a ring of ticks, lit up to rotation degrees clockwise
// from twelve o'clock, with the selection in the middle.
func (m Model) renderDial(rotation float64, minutes int) string {
	w, h := dialRadiusX*2+1, dialRadiusY*2+1
	grid := make([][]string, h)
	for y := range grid {
		grid[y] = make([]string, w)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	for i := 0; i < dialTicks; i++ {
		deg := float64(i) * 360 / dialTicks
		rad := deg * math.Pi / 180
		x := dialRadiusX + int(math.Round(dialRadiusX*math.Sin(rad)))
		y := dialRadiusY - int(math.Round(dialRadiusY*math.Cos(rad)))
		if rotation > 0 && deg <= rotation {
			grid[y][x] = m.styles.dialOn.Render("●")
		} else {
			grid[y][x] = m.styles.dialOff.Render("·")
		}
	}

	label := []rune(fmt.Sprintf("%d min", minutes))
	start := dialRadiusX - len(label)/2
	for i, r := range label {
		grid[dialRadiusY][start+i] = m.styles.accent.Render(string(r))
	}

	rows := make([]string, h)
	for y, row := range grid {
		rows[y] = strings.Join(row, "")
	}
	return strings.Join(rows, "\n")
}

func (m Model) viewInProgress(screen domain.InProgress) string {
	total := screen.Session.TotalSeconds()
	ratio := 0.0
	if total > 0 {
		ratio = float64(screen.Remaining) / float64(total)
	}
	minutes := domain.MinutesDisplay(screen.Remaining)
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}

	lines := []string{
		m.styles.title.Render("Studying"),
		"",
		renderBigClock(screen.Remaining, lipgloss.Color(m.theme.ColorPrimary), m.width),
		"",
		m.styles.muted.Render(fmt.Sprintf("%d %s left", minutes, unit)),
		"",
		m.progress.ViewAs(ratio),
	}
	if !screen.Session.Ref.IsRemote() {
		lines = append(lines, "", m.styles.muted.Render("offline session: results will not be saved"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewConfirmEnd(screen domain.ConfirmEnd) string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("End Early"))
	b.WriteString("\n\n")
	b.WriteString("Do you wish to end this session early?\n")
	b.WriteString(m.styles.muted.Render(clockText(screen.Remaining) + " remaining"))
	b.WriteString("\n\n")

	switch {
	case m.saving || screen.Submitting:
		b.WriteString(m.styles.accent.Render("Saving…"))
	case m.pointsForm != nil:
		b.WriteString(m.pointsForm.View())
	default:
		b.WriteString("[p] Yes, and give points   [n] Yes, and give no points")
	}
	if screen.Err != nil {
		b.WriteString("\n\n")
		b.WriteString(m.styles.err.Render(screen.Err.Error()))
	}
	return m.styles.box.Render(b.String())
}

func (m Model) viewComplete(screen domain.SessionComplete) string {
	record := m.completed
	if record == nil {
		record = &domain.StudySession{
			DurationMinutes: screen.Session.DurationMinutes,
			PointsEarned:    screen.PointsAwarded,
			EndedEarly:      true,
		}
	}

	rows := [][2]string{
		{"Duration", fmt.Sprintf("%d minutes", record.DurationMinutes)},
		{"Breaks taken", fmt.Sprintf("%d", record.BreaksTaken)},
		{"Hints given", fmt.Sprintf("%d", record.HintsGiven)},
		{"Distractions", fmt.Sprintf("%d", record.Distractions)},
		{"Points earned", fmt.Sprintf("%s %d", m.theme.IconPoints, record.PointsEarned)},
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("Session Complete"))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("%-14s", row[0])))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	return m.styles.box.Render(strings.TrimRight(b.String(), "\n"))
}
