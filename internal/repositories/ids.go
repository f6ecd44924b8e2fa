package repositories

import "github.com/google/uuid"

// newID returns a time-ordered UUID so that records created in the same
// instant still sort by insertion.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
