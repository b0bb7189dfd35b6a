package types

import (
	"errors"
	"time"
)

// Entry is one executed command as recorded in the journal. Exactly one of
// Error or (Value, Unit) is meaningful: a failed command has a non-empty
// Error.
type Entry struct {
	EntryID   string    `json:"entry_id"`
	SessionID string    `json:"session_id"`
	Command   string    `json:"command"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Failed reports whether the recorded command failed.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Journal is an append-only log of executed commands. It is an audit trail
// only: entries are never replayed into a session.
type Journal interface {
	// Attach opens the backend described by config, creating DataDir if it
	// does not exist. Returns ErrAlreadyAttached if called twice.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Record appends an entry. When EntryID is empty a UUID v7 is generated.
	// Returns the ID used.
	Record(entry Entry) (string, error)

	// Recent returns up to limit entries, newest first. A non-positive limit
	// returns every entry.
	Recent(limit int) ([]Entry, error)

	// Import inserts entries whose EntryID is not present yet and returns
	// how many were added. Entries must be complete; nothing is imported
	// when one is not.
	Import(entries []Entry) (int, error)
}

// Journal lifecycle errors.
var (
	ErrJournalDetached = errors.New("journal is detached")
	ErrAlreadyAttached = errors.New("journal is already attached")
	ErrInvalidEntry    = errors.New("invalid journal entry")
)
