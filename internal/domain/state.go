package domain

import (
	"time"
)

// StateSnapshot captures what the app is showing at a point in time.
type StateSnapshot struct {
	Timestamp time.Time
	Screen    ScreenKind
	Session   *ActiveSession
	Remaining int
	Version   uint64
}

// Snapshot flattens s for callers outside the state machine.
func Snapshot(s State, now time.Time) StateSnapshot {
	snap := StateSnapshot{
		Timestamp: now,
		Screen:    kindOf(s.Screen),
		Version:   s.Version,
	}
	if session, remaining, ok := ActiveOf(s); ok {
		snap.Session = &session
		snap.Remaining = remaining
	}
	return snap
}

// ActiveOf returns the session being studied, if any, and its remaining
// seconds.
func ActiveOf(s State) (ActiveSession, int, bool) {
	switch cur := s.Screen.(type) {
	case InProgress:
		return cur.Session, cur.Remaining, true
	case ConfirmEnd:
		return cur.Session, cur.Remaining, true
	}
	return ActiveSession{}, 0, false
}

// IsSessionActive returns true while a countdown is running or paused for
// confirmation.
func (s State) IsSessionActive() bool {
	_, _, ok := ActiveOf(s)
	return ok
}

// GetScreenLabel returns a human-readable label for a screen.
func GetScreenLabel(k ScreenKind) string {
	switch k {
	case ScreenLoading:
		return "Loading"
	case ScreenHome:
		return "Home"
	case ScreenSettings:
		return "Settings"
	case ScreenStudyLogs:
		return "Study Logs"
	case ScreenTimer:
		return "Study Timer"
	case ScreenInProgress:
		return "Studying"
	case ScreenConfirmEnd:
		return "End Early?"
	case ScreenSessionComplete:
		return "Session Complete"
	default:
		return "Unknown"
	}
}
