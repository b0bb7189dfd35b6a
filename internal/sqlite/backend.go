// Package sqlite implements the command journal on SQLite. The journal is an
// audit log of executed commands; it is never replayed into a session.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/unitforge/pkg/types"
)

// DBFileName is the name of the journal database inside the data directory.
const DBFileName = "journal.db"

// timeLayout has fixed-width fractional seconds so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal implements types.Journal using SQLite.
type Journal struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	now      func() time.Time
}

// NewJournal creates a new SQLite journal instance.
// The journal is not attached; call Attach with a Config to initialize.
func NewJournal() *Journal {
	return &Journal{now: time.Now}
}

// Attach opens journal.db in config.DataDir, creating the directory and
// schema if needed. Existing entries are kept.
// Returns ErrAlreadyAttached if already attached.
func (j *Journal) Attach(config types.Config) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	j.db = db
	j.config = config
	j.attached = true

	logrus.WithField("path", dbPath).Debug("journal attached")
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrJournalDetached. Detach is idempotent.
func (j *Journal) Detach() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return nil
	}

	if j.db != nil {
		if err := j.db.Close(); err != nil {
			return err
		}
		j.db = nil
	}

	j.attached = false
	return nil
}

// Record appends an entry and returns its ID. A missing EntryID is
// generated, a zero CreatedAt is set to the current time.
// Returns ErrInvalidEntry when SessionID or Command is empty.
func (j *Journal) Record(entry types.Entry) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return "", types.ErrJournalDetached
	}
	if entry.SessionID == "" {
		return "", fmt.Errorf("%w: session id is empty", types.ErrInvalidEntry)
	}
	if strings.TrimSpace(entry.Command) == "" {
		return "", fmt.Errorf("%w: command is empty", types.ErrInvalidEntry)
	}

	if entry.EntryID == "" {
		entry.EntryID = generateUUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = j.now()
	}

	_, err := j.db.Exec(
		`INSERT INTO entries (entry_id, session_id, command, value, unit, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID,
		entry.SessionID,
		entry.Command,
		entry.Value,
		entry.Unit,
		entry.Error,
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}
	return entry.EntryID, nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (j *Journal) Recent(limit int) ([]types.Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.attached {
		return nil, types.ErrJournalDetached
	}

	query := `SELECT entry_id, session_id, command, value, unit, error, created_at
		FROM entries ORDER BY created_at DESC, entry_id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []types.Entry
	for rows.Next() {
		e, err := hydrateEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// hydrateEntry converts a result row into an Entry.
func hydrateEntry(rows *sql.Rows) (types.Entry, error) {
	var (
		e         types.Entry
		createdAt string
	)
	if err := rows.Scan(&e.EntryID, &e.SessionID, &e.Command, &e.Value, &e.Unit, &e.Error, &createdAt); err != nil {
		return types.Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return types.Entry{}, fmt.Errorf("parse created_at: %w", err)
	}
	e.CreatedAt = t
	return e, nil
}

// generateUUID generates a new UUID v7 for entry IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
