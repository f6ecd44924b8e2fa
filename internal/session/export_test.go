package session

import "time"

// SetClock replaces the time source of a MemoryStore.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }
