package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Snapshot is a serialized document stored under a fixed key.
type Snapshot struct {
	Key     string
	Payload string // JSON document
	SavedAt time.Time
}
