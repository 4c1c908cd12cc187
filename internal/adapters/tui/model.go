// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/xvierd/fuzzle/internal/config"
	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/logging"
	"github.com/xvierd/fuzzle/internal/services"
)

// Options wires the model to the application services.
type Options struct {
	Controller   *services.Controller
	History      *services.HistoryService
	Theme        *config.ThemeConfig
	TickInterval time.Duration
	Logger       logging.Logger
	Context      context.Context
	// Now defaults to time.Now. It must agree with the controller's clock.
	Now func() time.Time

	NotificationsEnabled  bool
	OnToggleNotifications func(bool)
}

// Async results delivered back to Update.
type (
	startedMsg struct{ err error }
	awardMsg   struct{ err error }
	pointsMsg  struct {
		total *domain.PointsTotal
		err   error
	}
	userMsg struct {
		id  string
		err error
	}
	logsMsg struct {
		page     int
		sessions []*domain.StudySession
		hasMore  bool
		err      error
	}
	sessionMsg struct {
		id      string
		session *domain.StudySession
		err     error
	}
)

// logsPage is the loaded content of the study logs screen.
type logsPage struct {
	page     int
	sessions []*domain.StudySession
	hasMore  bool
	loading  bool
	chart    barchart.Model
}

// Model represents the TUI state. The lifecycle itself lives in the
// controller; the model keeps only view state and in-flight flags.
type Model struct {
	ctrl         *services.Controller
	history      *services.HistoryService
	logger       logging.Logger
	ctx          context.Context
	now          func() time.Time
	tickInterval time.Duration

	theme    config.ThemeConfig
	styles   styles
	progress progress.Model
	help     help.Model

	width  int
	height int

	homeCursor int
	points     *domain.PointsTotal
	userID     string
	logs       logsPage
	dial       *domain.DurationDial
	tickGen    int
	starting   bool

	pointsForm  *huh.Form
	pointsValue *string
	saving      bool

	completed *domain.StudySession

	notificationsEnabled bool
	notificationToggle   func(bool)

	err error
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	theme := resolveTheme(opts.Theme)
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	value := ""
	return Model{
		ctrl:         opts.Controller,
		history:      opts.History,
		logger:       opts.Logger,
		ctx:          opts.Context,
		now:          opts.Now,
		tickInterval: opts.TickInterval,
		theme:        theme,
		styles:       newStyles(theme),
		progress: progress.New(
			progress.WithGradient(theme.GradientStart, theme.GradientEnd),
			progress.WithoutPercentage(),
		),
		help:                 help.New(),
		dial:                 domain.NewDurationDial(opts.Controller.DefaultMinutes()),
		pointsValue:          &value,
		notificationsEnabled: opts.NotificationsEnabled,
		notificationToggle:   opts.OnToggleNotifications,
	}
}

// Init initializes the TUI. A session started before the program ran gets
// its tick chain here.
func (m Model) Init() tea.Cmd {
	if _, ok := m.ctrl.State().Screen.(domain.InProgress); ok {
		return tickCmd(m.tickInterval, m.tickGen)
	}
	return nil
}

// Screen returns the screen the controller is on.
func (m Model) Screen() domain.ScreenKind {
	return m.ctrl.State().Screen.Kind()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = clamp(msg.Width-20, 20, 60)
		m.help.Width = msg.Width
		if m.Screen() == domain.ScreenLoading {
			if _, err := m.ctrl.Ready(); err != nil {
				m.err = err
				return m, nil
			}
			return m.enter(domain.ScreenLoading)
		}
		return m, nil

	case tickMsg:
		return m.handleTick(msg)

	case startedMsg:
		m.starting = false
		if msg.err != nil && !errors.Is(msg.err, domain.ErrStaleTransition) {
			m.err = msg.err
		}
		return m.enter(domain.ScreenTimer)

	case awardMsg:
		return m.handleAward(msg)

	case pointsMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, domain.ErrNoIdentity) {
				m.logger.Warnf("failed to load points: %v", msg.err)
			}
			m.points = nil
			return m, nil
		}
		m.points = msg.total
		return m, nil

	case userMsg:
		m.userID = msg.id
		return m, nil

	case logsMsg:
		return m.handleLogs(msg), nil

	case sessionMsg:
		if msg.err != nil {
			m.logger.Warnf("failed to load session %s: %v", msg.id, msg.err)
			return m, nil
		}
		m.completed = msg.session
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			if snap := m.ctrl.Snapshot(); snap.Session != nil {
				m.logger.Warnf("quit with session %s active (%ds left); it will not be finalized",
					snap.Session.Ref.ID, snap.Remaining)
			}
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	if m.pointsForm != nil {
		return m.updatePointsForm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()
	switch screen := state.Screen.(type) {
	case domain.Home:
		return m.handleHomeKey(msg)

	case domain.Settings:
		switch {
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			m.notificationsEnabled = !m.notificationsEnabled
			if m.notificationToggle != nil {
				m.notificationToggle(m.notificationsEnabled)
			}
		case key.Matches(msg, keys.Back):
			return m.navigate(domain.ScreenHome)
		}

	case domain.StudyLogs:
		switch {
		case key.Matches(msg, keys.Left):
			if screen.Page > 0 {
				return m.showPage(screen.Page - 1)
			}
		case key.Matches(msg, keys.Right):
			if m.logs.hasMore && !m.logs.loading {
				return m.showPage(screen.Page + 1)
			}
		case key.Matches(msg, keys.Back):
			return m.navigate(domain.ScreenHome)
		}

	case domain.Timer:
		if m.starting {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Down):
			return m.selectDuration(m.dial.Nudge(-1))
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.Up):
			return m.selectDuration(m.dial.Nudge(1))
		case key.Matches(msg, keys.Enter):
			return m.startSession(m.dial.Selected())
		case key.Matches(msg, keys.Back):
			return m.navigate(domain.ScreenHome)
		}

	case domain.InProgress:
		if key.Matches(msg, keys.Back) {
			if _, err := m.ctrl.RequestEndEarly(m.now()); err != nil {
				m.err = err
			}
			return m.enter(domain.ScreenInProgress)
		}

	case domain.ConfirmEnd:
		if m.pointsForm != nil {
			if key.Matches(msg, keys.Back) {
				m.pointsForm = nil
				return m, nil
			}
			return m.updatePointsForm(msg)
		}
		switch {
		case key.Matches(msg, keys.GivePoints), key.Matches(msg, keys.Enter):
			return m.openPointsForm()
		case key.Matches(msg, keys.NoPoints):
			if _, err := m.ctrl.DeclinePoints(); err != nil {
				m.err = err
			}
			return m.enter(domain.ScreenConfirmEnd)
		case key.Matches(msg, keys.Back):
			if _, err := m.ctrl.CancelEndEarly(m.now()); err != nil {
				m.err = err
			}
			return m.enter(domain.ScreenConfirmEnd)
		}

	case domain.SessionComplete:
		if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Back) {
			if _, err := m.ctrl.Acknowledge(); err != nil {
				m.err = err
			}
			return m.enter(domain.ScreenSessionComplete)
		}
	}
	return m, nil
}

var homeMenu = []domain.ScreenKind{domain.ScreenTimer, domain.ScreenStudyLogs, domain.ScreenSettings}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		m.homeCursor = (m.homeCursor + len(homeMenu) - 1) % len(homeMenu)
	case key.Matches(msg, keys.Down):
		m.homeCursor = (m.homeCursor + 1) % len(homeMenu)
	case key.Matches(msg, keys.Enter):
		return m.navigate(homeMenu[m.homeCursor])
	case key.Matches(msg, keys.Timer):
		return m.navigate(domain.ScreenTimer)
	case key.Matches(msg, keys.Logs):
		return m.navigate(domain.ScreenStudyLogs)
	case key.Matches(msg, keys.Settings):
		return m.navigate(domain.ScreenSettings)
	}
	return m, nil
}

// dialCenter is where the dial is drawn. Terminal cells are about twice as
// tall as they are wide, so y coordinates are doubled before angles are taken.
func (m Model) dialCenter() (float64, float64) {
	return float64(m.width) / 2, float64(m.height)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if _, ok := m.ctrl.State().Screen.(domain.Timer); !ok || m.starting {
		return m, nil
	}
	cx, cy := m.dialCenter()
	x, y := float64(msg.X), float64(msg.Y)*2

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.dial.Begin(x, y, cx, cy)
		}
	case tea.MouseActionMotion:
		if m.dial.Dragging() {
			before := m.dial.Selected()
			if after := m.dial.Move(x, y, cx, cy); after != before {
				return m.selectDuration(after)
			}
		}
	case tea.MouseActionRelease:
		m.dial.End()
	}
	return m, nil
}

func (m Model) navigate(to domain.ScreenKind) (tea.Model, tea.Cmd) {
	from := m.Screen()
	if _, err := m.ctrl.Navigate(to); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	return m.enter(from)
}

func (m Model) showPage(page int) (tea.Model, tea.Cmd) {
	if _, err := m.ctrl.ShowLogsPage(page); err != nil {
		m.err = err
		return m, nil
	}
	m.logs.loading = true
	return m, m.loadLogsCmd(page)
}

func (m Model) selectDuration(minutes int) (tea.Model, tea.Cmd) {
	if _, err := m.ctrl.SelectDuration(minutes); err != nil {
		m.err = err
	}
	return m, nil
}

func (m Model) startSession(minutes int) (tea.Model, tea.Cmd) {
	m.starting = true
	m.err = nil
	ctrl, ctx := m.ctrl, m.ctx
	return m, func() tea.Msg {
		_, err := ctrl.StartSession(ctx, minutes)
		return startedMsg{err: err}
	}
}

func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.tickGen {
		return m, nil
	}
	if _, ok := m.ctrl.State().Screen.(domain.InProgress); !ok {
		return m, nil
	}
	if _, err := m.ctrl.Tick(msg.at); err != nil {
		m.logger.Warnf("tick rejected: %v", err)
		return m, nil
	}
	if _, ok := m.ctrl.State().Screen.(domain.InProgress); ok {
		return m, tickCmd(m.tickInterval, m.tickGen)
	}
	return m.enter(domain.ScreenInProgress)
}

// enter runs the side effects of arriving on a new screen. from is the
// screen the model was on before the last controller call.
func (m Model) enter(from domain.ScreenKind) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()
	if state.Screen.Kind() == from {
		return m, nil
	}

	switch screen := state.Screen.(type) {
	case domain.Home:
		m.homeCursor = 0
		return m, m.loadPointsCmd()
	case domain.Settings:
		return m, m.loadUserCmd()
	case domain.StudyLogs:
		m.logs = logsPage{page: screen.Page, loading: true}
		return m, m.loadLogsCmd(screen.Page)
	case domain.Timer:
		m.dial = domain.NewDurationDial(screen.Selected)
	case domain.InProgress:
		m.tickGen++
		m.pointsForm = nil
		return m, tickCmd(m.tickInterval, m.tickGen)
	case domain.ConfirmEnd:
		m.pointsForm = nil
		m.saving = false
	case domain.SessionComplete:
		m.pointsForm = nil
		m.completed = nil
		return m, m.loadSessionCmd(screen.Session)
	}
	return m, nil
}

func (m Model) openPointsForm() (tea.Model, tea.Cmd) {
	m.pointsForm = newPointsForm(m.pointsValue)
	return m, m.pointsForm.Init()
}

func newPointsForm(value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("How many points?").
				Placeholder("0").
				CharLimit(6).
				Value(value),
		),
	).WithShowHelp(false).WithShowErrors(true)
}

func (m Model) updatePointsForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.saving {
		// Enter is ignored while an award is being written.
		return m, nil
	}
	form, cmd := m.pointsForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.pointsForm = f
	}

	switch m.pointsForm.State {
	case huh.StateCompleted:
		return m.submitPoints(*m.pointsValue)
	case huh.StateAborted:
		m.pointsForm = nil
		return m, nil
	}
	return m, cmd
}

// submitPoints sends the award to the controller in the background.
func (m Model) submitPoints(input string) (Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	m.saving = true
	ctrl, ctx := m.ctrl, m.ctx
	return m, func() tea.Msg {
		_, err := ctrl.AwardPoints(ctx, input)
		return awardMsg{err: err}
	}
}

func (m Model) handleAward(msg awardMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if errors.Is(msg.err, domain.ErrStaleTransition) {
		return m, nil
	}
	if msg.err != nil {
		// The controller keeps the error on the confirm screen; ask again.
		m.pointsForm = newPointsForm(m.pointsValue)
		return m, m.pointsForm.Init()
	}
	*m.pointsValue = ""
	return m.enter(domain.ScreenConfirmEnd)
}

func (m Model) handleLogs(msg logsMsg) Model {
	screen, ok := m.ctrl.State().Screen.(domain.StudyLogs)
	if !ok || screen.Page != msg.page {
		return m
	}
	m.logs.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m
	}
	m.err = nil
	m.logs.page = msg.page
	m.logs.sessions = msg.sessions
	m.logs.hasMore = msg.hasMore
	m.logs.chart = m.buildChart(msg.sessions)
	return m
}

func (m Model) loadPointsCmd() tea.Cmd {
	if m.history == nil {
		return nil
	}
	history, ctx := m.history, m.ctx
	return func() tea.Msg {
		total, err := history.CurrentPoints(ctx)
		return pointsMsg{total: total, err: err}
	}
}

func (m Model) loadUserCmd() tea.Cmd {
	if m.history == nil {
		return nil
	}
	history, ctx := m.history, m.ctx
	return func() tea.Msg {
		id, err := history.CurrentUserID(ctx)
		return userMsg{id: id, err: err}
	}
}

func (m Model) loadLogsCmd(page int) tea.Cmd {
	if m.history == nil {
		return nil
	}
	history, ctx := m.history, m.ctx
	return func() tea.Msg {
		sessions, hasMore, err := history.ListSessions(ctx, nil, page)
		return logsMsg{page: page, sessions: sessions, hasMore: hasMore, err: err}
	}
}

func (m Model) loadSessionCmd(session domain.ActiveSession) tea.Cmd {
	if m.history == nil || !session.Ref.IsRemote() {
		return nil
	}
	history, ctx, id := m.history, m.ctx, session.Ref.ID
	return func() tea.Msg {
		record, err := history.GetSession(ctx, id)
		return sessionMsg{id: id, session: record, err: err}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
