package domain

import (
	"fmt"
	"time"
)

// Duration dial bounds, in minutes.
const (
	MinDurationMinutes     = 5
	MaxDurationMinutes     = 120
	DurationStepMinutes    = 5
	DefaultDurationMinutes = 60
)

// StudySession is one timed study interval with its recorded outcome.
type StudySession struct {
	ID              string
	UserID          *string
	DurationMinutes int
	BreaksTaken     int
	HintsGiven      int
	Distractions    int
	PointsEarned    int
	EndedEarly      bool
	CreatedAt       time.Time
}

// NewStudySession creates an unsaved session record with zeroed counters.
// The store assigns ID and CreatedAt.
func NewStudySession(userID *string, durationMinutes int) (*StudySession, error) {
	if err := ValidateDuration(durationMinutes); err != nil {
		return nil, err
	}
	return &StudySession{
		UserID:          userID,
		DurationMinutes: durationMinutes,
	}, nil
}

// ValidateDuration checks that minutes is within the dial range and on a step.
func ValidateDuration(minutes int) error {
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes || minutes%DurationStepMinutes != 0 {
		return fmt.Errorf("%w: %d minutes (must be %d-%d in steps of %d)",
			ErrInvalidDuration, minutes, MinDurationMinutes, MaxDurationMinutes, DurationStepMinutes)
	}
	return nil
}

// Duration returns the planned length as a time.Duration.
func (s *StudySession) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// OwnerID returns the owner's id or "" when the session has no owner.
func (s *StudySession) OwnerID() string {
	if s.UserID == nil {
		return ""
	}
	return *s.UserID
}

// SessionUpdate holds the only fields that may change after creation.
type SessionUpdate struct {
	PointsEarned *int
	EndedEarly   *bool
}

// EndedEarlyWithPoints builds the terminal update written when a session is
// stopped early and points are awarded.
func EndedEarlyWithPoints(points int) SessionUpdate {
	endedEarly := true
	return SessionUpdate{PointsEarned: &points, EndedEarly: &endedEarly}
}

// Apply copies the set fields of u onto s.
func (u SessionUpdate) Apply(s *StudySession) {
	if u.PointsEarned != nil {
		s.PointsEarned = *u.PointsEarned
	}
	if u.EndedEarly != nil {
		s.EndedEarly = *u.EndedEarly
	}
}

// IsEmpty reports whether the update changes nothing.
func (u SessionUpdate) IsEmpty() bool {
	return u.PointsEarned == nil && u.EndedEarly == nil
}

// SessionRef identifies the record a running session will be finalized
// against. A local ref means no record exists and no write will happen.
type SessionRef struct {
	ID    string
	Local bool
}

// RemoteRef refers to a stored session record.
func RemoteRef(id string) SessionRef {
	return SessionRef{ID: id}
}

// LocalRef synthesizes a placeholder reference.
func LocalRef() SessionRef {
	return SessionRef{ID: generateLocalID(), Local: true}
}

// IsRemote returns true if the ref points at a stored record.
func (r SessionRef) IsRemote() bool {
	return !r.Local && r.ID != ""
}

// ActiveSession is the in-memory state of the session being studied.
type ActiveSession struct {
	Ref             SessionRef
	UserID          string
	DurationMinutes int
}

// TotalSeconds returns the planned length in seconds.
func (a ActiveSession) TotalSeconds() int {
	return a.DurationMinutes * 60
}

// CanPersist returns true when the end-of-session writes can target a real
// record owned by a known user.
func (a ActiveSession) CanPersist() bool {
	return a.Ref.IsRemote() && a.UserID != ""
}
