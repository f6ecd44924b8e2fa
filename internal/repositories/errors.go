package repositories

import "errors"

// Sentinel errors shared by every Store implementation. Callers match them
// with errors.Is; the wrapped message carries the record key.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)
