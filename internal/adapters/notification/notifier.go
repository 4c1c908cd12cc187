// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/fuzzle/internal/config"
	"github.com/xvierd/fuzzle/internal/domain"
)

// Notifier handles desktop notifications. It is safe for concurrent use.
type Notifier struct {
	mu   sync.RWMutex
	cfg  *config.NotificationConfig
	send func(title, message string) error
	beep func() error
}

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg: cfg,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	n.mu.RLock()
	enabled := n.cfg != nil && n.cfg.Enabled
	sound := enabled && n.cfg.Sound
	n.mu.RUnlock()
	if !enabled {
		return nil
	}

	if err := n.send(title, message); err != nil {
		return err
	}
	if sound && n.beep != nil {
		return n.beep()
	}
	return nil
}

// NotifySessionFinished is sent when the countdown runs out.
func (n *Notifier) NotifySessionFinished(session domain.ActiveSession) error {
	title := "📚 Study Session Complete!"
	message := fmt.Sprintf("Great job! You studied for %d minutes.", session.DurationMinutes)
	return n.Notify(title, message)
}

// NotifyPointsAwarded is sent after a parent awards points.
func (n *Notifier) NotifyPointsAwarded(session domain.ActiveSession, points int) error {
	title := "⭐ Points Awarded"
	message := fmt.Sprintf("You earned %d points for your %d minute session.", points, session.DurationMinutes)
	return n.Notify(title, message)
}

// SetEnabled turns notifications on or off for the rest of the run.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cfg == nil {
		n.cfg = &config.NotificationConfig{}
	}
	n.cfg.Enabled = enabled
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg != nil && n.cfg.Enabled
}
