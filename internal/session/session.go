// Package session persists per-login snapshots outside the request cycle.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"astromatch/internal/calendar"
	"astromatch/internal/models"
)

var (
	// ErrNotFound is returned when no live snapshot exists for a key.
	ErrNotFound = errors.New("session not found")
	// ErrCorrupt is returned when stored bytes do not decode to a snapshot.
	ErrCorrupt = errors.New("session data corrupt")
)

// Store keeps opaque session payloads by key.
type Store interface {
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Snapshot is what a session remembers between requests: the logged-in
// profile and the last calendar month the user looked at.
type Snapshot struct {
	User    models.User       `json:"user"`
	View    calendar.MonthKey `json:"view"`
	SavedAt time.Time         `json:"saved_at"`
}

// Encode serializes s. The password hash is never part of the payload.
func Encode(s Snapshot) ([]byte, error) {
	s.User.Password = ""
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return b, nil
}

// Decode parses a stored payload.
func Decode(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.User.ID == "" || !s.View.Valid() {
		return Snapshot{}, ErrCorrupt
	}
	return s, nil
}
