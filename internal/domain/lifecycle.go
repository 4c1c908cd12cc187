package domain

import "fmt"

// ScreenKind names the screen a State is on.
type ScreenKind string

const (
	ScreenLoading         ScreenKind = "loading"
	ScreenHome            ScreenKind = "home"
	ScreenSettings        ScreenKind = "settings"
	ScreenStudyLogs       ScreenKind = "study_logs"
	ScreenTimer           ScreenKind = "timer"
	ScreenInProgress      ScreenKind = "in_progress"
	ScreenConfirmEnd      ScreenKind = "confirm_end"
	ScreenSessionComplete ScreenKind = "session_complete"
)

// Screen is one node of the session lifecycle. Each implementation carries
// exactly the data that screen needs.
type Screen interface {
	Kind() ScreenKind
}

type (
	Loading  struct{}
	Home     struct{}
	Settings struct{}

	StudyLogs struct {
		Page int
	}

	Timer struct {
		Selected int
		// Starting is set while the session record is being created.
		Starting bool
	}

	InProgress struct {
		Session   ActiveSession
		Remaining int
	}

	ConfirmEnd struct {
		Session   ActiveSession
		Remaining int
		// Submitting is set while a points award is being written.
		Submitting bool
		Err        error
	}

	SessionComplete struct {
		Session       ActiveSession
		PointsAwarded int
	}
)

func (Loading) Kind() ScreenKind         { return ScreenLoading }
func (Home) Kind() ScreenKind            { return ScreenHome }
func (Settings) Kind() ScreenKind        { return ScreenSettings }
func (StudyLogs) Kind() ScreenKind       { return ScreenStudyLogs }
func (Timer) Kind() ScreenKind           { return ScreenTimer }
func (InProgress) Kind() ScreenKind      { return ScreenInProgress }
func (ConfirmEnd) Kind() ScreenKind      { return ScreenConfirmEnd }
func (SessionComplete) Kind() ScreenKind { return ScreenSessionComplete }

// Event is an input to Reduce.
type Event interface {
	EventName() string
}

type (
	Ready    struct{}
	Navigate struct {
		To ScreenKind
		// DefaultMinutes preselects the dial when navigating to the timer.
		DefaultMinutes int
	}
	LogsPage             struct{ Page int }
	DurationSelected     struct{ Minutes int }
	StartRequested       struct{}
	SessionStarted       struct{ Session ActiveSession }
	Tick                 struct{ Remaining int }
	CountdownFinished    struct{}
	EndEarlyRequested    struct{ Remaining int }
	EndEarlyCancelled    struct{}
	AwardSubmitted       struct{}
	AwardFailed          struct{ Err error }
	AwardSucceeded       struct{ Points int }
	PointsRejected       struct{ Err error }
	PointsDeclined       struct{}
	CompleteAcknowledged struct{}
)

func (Ready) EventName() string                { return "ready" }
func (Navigate) EventName() string             { return "navigate" }
func (LogsPage) EventName() string             { return "logs_page" }
func (DurationSelected) EventName() string     { return "duration_selected" }
func (StartRequested) EventName() string       { return "start_requested" }
func (SessionStarted) EventName() string       { return "session_started" }
func (Tick) EventName() string                 { return "tick" }
func (CountdownFinished) EventName() string    { return "countdown_finished" }
func (EndEarlyRequested) EventName() string    { return "end_early_requested" }
func (EndEarlyCancelled) EventName() string    { return "end_early_cancelled" }
func (AwardSubmitted) EventName() string       { return "award_submitted" }
func (AwardFailed) EventName() string          { return "award_failed" }
func (AwardSucceeded) EventName() string       { return "award_succeeded" }
func (PointsRejected) EventName() string       { return "points_rejected" }
func (PointsDeclined) EventName() string       { return "points_declined" }
func (CompleteAcknowledged) EventName() string { return "complete_acknowledged" }

// State is the lifecycle position plus a version that increases on every
// accepted transition.
type State struct {
	Screen  Screen
	Version uint64
}

// InitialState returns the state the app starts in.
func InitialState() State {
	return State{Screen: Loading{}}
}

// Reduce applies ev to s. On error s is returned unchanged.
func Reduce(s State, ev Event) (State, error) {
	next, err := transition(s.Screen, ev)
	if err != nil {
		return s, err
	}
	return State{Screen: next, Version: s.Version + 1}, nil
}

func transition(screen Screen, ev Event) (Screen, error) {
	switch cur := screen.(type) {
	case Loading:
		if _, ok := ev.(Ready); ok {
			return Home{}, nil
		}

	case Home:
		if nav, ok := ev.(Navigate); ok {
			switch nav.To {
			case ScreenSettings:
				return Settings{}, nil
			case ScreenStudyLogs:
				return StudyLogs{}, nil
			case ScreenTimer:
				selected := nav.DefaultMinutes
				if ValidateDuration(selected) != nil {
					selected = DefaultDurationMinutes
				}
				return Timer{Selected: selected}, nil
			}
		}

	case Settings:
		if isNavigateHome(ev) {
			return Home{}, nil
		}

	case StudyLogs:
		switch e := ev.(type) {
		case Navigate:
			if e.To == ScreenHome {
				return Home{}, nil
			}
		case LogsPage:
			if e.Page < 0 {
				return nil, fmt.Errorf("%w: page %d", ErrInvalidTransition, e.Page)
			}
			return StudyLogs{Page: e.Page}, nil
		}

	case Timer:
		switch e := ev.(type) {
		case Navigate:
			if e.To == ScreenHome {
				if cur.Starting {
					return nil, ErrTransitionInFlight
				}
				return Home{}, nil
			}
		case DurationSelected:
			if cur.Starting {
				return nil, ErrTransitionInFlight
			}
			if err := ValidateDuration(e.Minutes); err != nil {
				return nil, err
			}
			return Timer{Selected: e.Minutes}, nil
		case StartRequested:
			if cur.Starting {
				return nil, ErrTransitionInFlight
			}
			return Timer{Selected: cur.Selected, Starting: true}, nil
		case SessionStarted:
			if !cur.Starting {
				return nil, ErrStaleTransition
			}
			return InProgress{Session: e.Session, Remaining: e.Session.TotalSeconds()}, nil
		}

	case InProgress:
		switch e := ev.(type) {
		case Tick:
			return InProgress{Session: cur.Session, Remaining: e.Remaining}, nil
		case CountdownFinished:
			return Home{}, nil
		case EndEarlyRequested:
			return ConfirmEnd{Session: cur.Session, Remaining: e.Remaining}, nil
		}

	case ConfirmEnd:
		switch e := ev.(type) {
		case EndEarlyCancelled:
			return InProgress{Session: cur.Session, Remaining: cur.Remaining}, nil
		case AwardSubmitted:
			if cur.Submitting {
				return nil, ErrTransitionInFlight
			}
			cur.Submitting = true
			cur.Err = nil
			return cur, nil
		case PointsRejected:
			if cur.Submitting {
				return nil, ErrTransitionInFlight
			}
			cur.Err = e.Err
			return cur, nil
		case AwardFailed:
			if !cur.Submitting {
				return nil, ErrStaleTransition
			}
			cur.Submitting = false
			cur.Err = e.Err
			return cur, nil
		case AwardSucceeded:
			if !cur.Submitting {
				return nil, ErrStaleTransition
			}
			return SessionComplete{Session: cur.Session, PointsAwarded: e.Points}, nil
		case PointsDeclined:
			if cur.Submitting {
				return nil, ErrTransitionInFlight
			}
			return Home{}, nil
		}

	case SessionComplete:
		if _, ok := ev.(CompleteAcknowledged); ok {
			return Home{}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev.EventName(), kindOf(screen))
}

func isNavigateHome(ev Event) bool {
	nav, ok := ev.(Navigate)
	return ok && nav.To == ScreenHome
}

func kindOf(s Screen) ScreenKind {
	if s == nil {
		return ""
	}
	return s.Kind()
}
