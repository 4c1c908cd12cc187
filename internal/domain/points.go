package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PointsTotal is a user's cumulative reward balance.
type PointsTotal struct {
	UserID      string
	TotalPoints int
	LastUpdated time.Time
}

// ParsePoints validates user input for a points award.
func ParsePoints(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidPoints
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPoints, input)
	}
	return n, nil
}

// Award is the outcome of a successful points award.
type Award struct {
	Session *StudySession
	Total   *PointsTotal
}
