package domain

import "github.com/google/uuid"

// localIDPrefix marks ids that were synthesized on this device and never stored.
const localIDPrefix = "local-"

// GenerateID creates a new unique identifier.
func GenerateID() string {
	return uuid.New().String()
}

// generateLocalID creates a placeholder id for a session that has no stored record.
func generateLocalID() string {
	return localIDPrefix + uuid.New().String()
}
