package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/logging"
	"github.com/xvierd/fuzzle/internal/ports"
)

// Controller owns the session lifecycle: the current screen, the running
// countdown and the store writes at session start and early end. It is safe
// for concurrent use; store calls run without holding the lock.
type Controller struct {
	mu        sync.Mutex
	state     domain.State
	countdown *domain.Countdown
	lastAward *domain.Award
	// lateAward is a committed award whose response arrived after the user
	// cancelled. The session is finalized in the store, so it must not be
	// written again.
	lateAward *domain.Award

	storage        ports.Storage
	identity       ports.IdentityProvider
	logger         logging.Logger
	now            func() time.Time
	defaultMinutes int

	onFinished []func(domain.ActiveSession)
	onAwarded  []func(domain.ActiveSession, int)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithDefaultMinutes sets the dial's initial selection.
func WithDefaultMinutes(minutes int) ControllerOption {
	return func(c *Controller) { c.defaultMinutes = minutes }
}

// NewController creates a controller in the Loading state.
func NewController(storage ports.Storage, identity ports.IdentityProvider, logger logging.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Controller{
		state:          domain.InitialState(),
		storage:        storage,
		identity:       identity,
		logger:         logger,
		now:            time.Now,
		defaultMinutes: domain.DefaultDurationMinutes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSessionFinished registers fn to run after a countdown reaches zero.
// Hooks run on the caller's goroutine and must not block.
func (c *Controller) OnSessionFinished(fn func(domain.ActiveSession)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinished = append(c.onFinished, fn)
}

// OnPointsAwarded registers fn to run after a successful award.
func (c *Controller) OnPointsAwarded(fn func(domain.ActiveSession, int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAwarded = append(c.onAwarded, fn)
}

// State returns the current lifecycle state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a flattened view of the current state.
func (c *Controller) Snapshot() domain.StateSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Snapshot(c.state, c.now())
}

// LastAward returns the result of the most recent successful award, if any.
func (c *Controller) LastAward() *domain.Award {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAward
}

// DefaultMinutes returns the dial's initial selection.
func (c *Controller) DefaultMinutes() int {
	return c.defaultMinutes
}

// Ready leaves the loading screen.
func (c *Controller) Ready() (domain.State, error) {
	return c.dispatch(domain.Ready{})
}

// Navigate moves between Home and the Settings, StudyLogs and Timer screens.
func (c *Controller) Navigate(to domain.ScreenKind) (domain.State, error) {
	return c.dispatch(domain.Navigate{To: to, DefaultMinutes: c.defaultMinutes})
}

// ShowLogsPage switches the study logs to page.
func (c *Controller) ShowLogsPage(page int) (domain.State, error) {
	return c.dispatch(domain.LogsPage{Page: page})
}

// SelectDuration records the dial selection on the timer screen.
func (c *Controller) SelectDuration(minutes int) (domain.State, error) {
	return c.dispatch(domain.DurationSelected{Minutes: minutes})
}

// StartSession creates the session record and starts the countdown. When
// there is no user or the record cannot be created, the session runs against
// a local ref and nothing is written at its end.
func (c *Controller) StartSession(ctx context.Context, minutes int) (domain.State, error) {
	if err := domain.ValidateDuration(minutes); err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	if timer, ok := c.state.Screen.(domain.Timer); ok && !timer.Starting && timer.Selected != minutes {
		if _, err := c.applyLocked(domain.DurationSelected{Minutes: minutes}); err != nil {
			c.mu.Unlock()
			return c.State(), err
		}
	}
	state, err := c.applyLocked(domain.StartRequested{})
	c.mu.Unlock()
	if err != nil {
		return state, err
	}
	version := state.Version

	active := c.createSession(ctx, minutes)

	c.mu.Lock()
	if c.state.Version != version {
		current := c.state
		c.mu.Unlock()
		c.logger.Warnf("session %s started after the screen changed; ignoring", active.Ref.ID)
		return current, domain.ErrStaleTransition
	}
	state, err = c.applyLocked(domain.SessionStarted{Session: active})
	if err == nil {
		c.countdown = domain.NewCountdown(active.TotalSeconds(), 0, c.now())
		c.lastAward = nil
		c.lateAward = nil
	}
	c.mu.Unlock()

	if err == nil {
		c.logger.Infof("study session %s started: %d minutes (remote=%t)", active.Ref.ID, minutes, active.Ref.IsRemote())
	}
	return state, err
}

func (c *Controller) createSession(ctx context.Context, minutes int) domain.ActiveSession {
	active := domain.ActiveSession{DurationMinutes: minutes, Ref: domain.LocalRef()}

	if c.identity == nil {
		c.logger.Warn("no identity provider; running session locally")
		return active
	}
	userID, err := c.identity.CurrentUserID(ctx)
	if err != nil {
		c.logger.Warnf("could not resolve user, running session locally: %v", err)
		return active
	}
	active.UserID = userID

	if c.storage == nil {
		c.logger.Warn("no storage configured; running session locally")
		return active
	}
	session, err := domain.NewStudySession(&userID, minutes)
	if err != nil {
		c.logger.Warnf("invalid session, running locally: %v", err)
		return active
	}
	if err := c.storage.Sessions().Create(ctx, session); err != nil {
		c.logger.Warnf("failed to create session record, running locally: %v", err)
		return active
	}

	active.Ref = domain.RemoteRef(session.ID)
	return active
}

// Tick advances the countdown to now. When it reaches zero the app returns
// home without writing anything.
func (c *Controller) Tick(now time.Time) (domain.State, error) {
	c.mu.Lock()
	cur, ok := c.state.Screen.(domain.InProgress)
	if !ok || c.countdown == nil {
		state := c.state
		c.mu.Unlock()
		return state, domain.ErrInvalidTransition
	}

	res := c.countdown.Tick(now)
	if !res.Finished {
		state, err := c.applyLocked(domain.Tick{Remaining: res.Remaining})
		c.mu.Unlock()
		return state, err
	}

	state, err := c.finishLocked()
	hooks := c.onFinished
	c.mu.Unlock()

	if err == nil {
		c.logger.Infof("study session %s finished", cur.Session.Ref.ID)
		for _, fn := range hooks {
			fn(cur.Session)
		}
	}
	return state, err
}

func (c *Controller) finishLocked() (domain.State, error) {
	state, err := c.applyLocked(domain.CountdownFinished{})
	if err == nil {
		c.countdown = nil
	}
	return state, err
}

// RequestEndEarly pauses the countdown and asks for confirmation.
func (c *Controller) RequestEndEarly(now time.Time) (domain.State, error) {
	c.mu.Lock()
	cur, ok := c.state.Screen.(domain.InProgress)
	if !ok || c.countdown == nil {
		state := c.state
		c.mu.Unlock()
		return state, domain.ErrInvalidTransition
	}

	res := c.countdown.Tick(now)
	if res.Finished {
		// Time ran out before the request; finish normally.
		state, err := c.finishLocked()
		hooks := c.onFinished
		c.mu.Unlock()
		if err == nil {
			for _, fn := range hooks {
				fn(cur.Session)
			}
		}
		return state, err
	}

	state, err := c.applyLocked(domain.EndEarlyRequested{Remaining: res.Remaining})
	if err == nil {
		c.countdown = nil
	}
	c.mu.Unlock()
	return state, err
}

// CancelEndEarly resumes the countdown from the paused remaining time.
func (c *Controller) CancelEndEarly(now time.Time) (domain.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	confirm, _ := c.state.Screen.(domain.ConfirmEnd)
	state, err := c.applyLocked(domain.EndEarlyCancelled{})
	if err != nil {
		return state, err
	}
	if confirm.Submitting {
		c.logger.Warnf("end early cancelled while award for %s was in flight", confirm.Session.Ref.ID)
	}
	c.countdown = domain.NewCountdown(confirm.Session.TotalSeconds(), confirm.Remaining, now)
	return state, nil
}

// AwardPoints validates input and, for a stored session, adds the points to
// the user's total and marks the session as ended early. On failure the
// confirmation screen stays up with the error.
func (c *Controller) AwardPoints(ctx context.Context, input string) (domain.State, error) {
	c.mu.Lock()
	confirm, ok := c.state.Screen.(domain.ConfirmEnd)
	if !ok {
		state := c.state
		c.mu.Unlock()
		return state, domain.ErrInvalidTransition
	}
	if confirm.Submitting {
		state := c.state
		c.mu.Unlock()
		return state, domain.ErrTransitionInFlight
	}

	points, err := domain.ParsePoints(input)
	if err != nil {
		state, _ := c.applyLocked(domain.PointsRejected{Err: err})
		c.mu.Unlock()
		return state, err
	}

	state, err := c.applyLocked(domain.AwardSubmitted{})
	prior := c.lateAward
	c.mu.Unlock()
	if err != nil {
		return state, err
	}
	version := state.Version
	session := confirm.Session

	var award *domain.Award
	var writeErr error
	if prior != nil && prior.Session != nil && prior.Session.ID == session.Ref.ID {
		award = prior
		points = prior.Session.PointsEarned
		c.logger.Infof("session %s already received %d points; not writing again", session.Ref.ID, points)
	} else if session.CanPersist() {
		award, writeErr = c.storage.AwardPoints(ctx, ports.AwardRequest{
			SessionID: session.Ref.ID,
			UserID:    session.UserID,
			Points:    points,
		})
	} else {
		c.logger.Infof("session %s is local; skipping points write", session.Ref.ID)
	}

	c.mu.Lock()
	if c.state.Version != version {
		current := c.state
		if writeErr == nil && award != nil {
			c.lateAward = award
		}
		c.mu.Unlock()
		c.logger.Warnf("award response for %s arrived after the screen changed (err=%v); ignoring", session.Ref.ID, writeErr)
		return current, domain.ErrStaleTransition
	}

	if writeErr != nil {
		state, _ = c.applyLocked(domain.AwardFailed{Err: writeErr})
		c.mu.Unlock()
		c.logger.Errorf("failed to award %d points for %s: %v", points, session.Ref.ID, writeErr)
		return state, writeErr
	}

	state, err = c.applyLocked(domain.AwardSucceeded{Points: points})
	if err == nil {
		c.lastAward = award
		c.lateAward = nil
	}
	hooks := c.onAwarded
	c.mu.Unlock()

	if err == nil {
		c.logger.Infof("awarded %d points for session %s", points, session.Ref.ID)
		for _, fn := range hooks {
			fn(session, points)
		}
	}
	return state, err
}

// DeclinePoints ends the session early without writing anything.
func (c *Controller) DeclinePoints() (domain.State, error) {
	return c.dispatch(domain.PointsDeclined{})
}

// Acknowledge leaves the completion screen.
func (c *Controller) Acknowledge() (domain.State, error) {
	return c.dispatch(domain.CompleteAcknowledged{})
}

// Remaining returns the active session's remaining seconds and its total.
func (c *Controller) Remaining() (remaining, total int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, remaining, ok := domain.ActiveOf(c.state)
	return remaining, session.TotalSeconds(), ok
}

func (c *Controller) dispatch(ev domain.Event) (domain.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(ev)
}

// applyLocked runs the reducer. c.mu must be held.
func (c *Controller) applyLocked(ev domain.Event) (domain.State, error) {
	from := c.state.Screen
	next, err := domain.Reduce(c.state, ev)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPoints) || errors.Is(err, domain.ErrInvalidDuration) {
			c.logger.Debugf("rejected %s: %v", ev.EventName(), err)
		} else {
			c.logger.Warnf("rejected %s on %s: %v", ev.EventName(), from.Kind(), err)
		}
		return c.state, err
	}
	c.state = next
	if from.Kind() != next.Screen.Kind() {
		c.logger.Debugf("screen %s -> %s (%s)", from.Kind(), next.Screen.Kind(), ev.EventName())
	}
	return next, nil
}
