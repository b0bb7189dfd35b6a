package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/unitforge/pkg/types"
)

// ReadJSONL reads journal entries from a JSONL file, one JSON object per
// line. Blank and malformed lines are skipped.
func ReadJSONL(path string) ([]types.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var entries []types.Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e types.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return entries, nil
}

// WriteJSONL atomically writes entries to a JSONL file using the temp-file,
// fsync, rename pattern.
func WriteJSONL(path string, entries []types.Entry) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fail("encoding entry: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fail("writing entry: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Import inserts entries that are not in the journal yet, matched by
// EntryID, and returns how many were added. Entries must carry an ID, a
// session ID, a command and a timestamp. The import is all-or-nothing.
func (j *Journal) Import(entries []types.Entry) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return 0, types.ErrJournalDetached
	}
	for i, e := range entries {
		if e.EntryID == "" || e.SessionID == "" || e.Command == "" || e.CreatedAt.IsZero() {
			return 0, fmt.Errorf("%w: entry %d is incomplete", types.ErrInvalidEntry, i+1)
		}
	}

	tx, err := j.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, e := range entries {
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO entries (entry_id, session_id, command, value, unit, error, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.EntryID, e.SessionID, e.Command, e.Value, e.Unit, e.Error,
			e.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return 0, fmt.Errorf("import entry %s: %w", e.EntryID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("import entry %s: %w", e.EntryID, err)
		}
		added += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return added, nil
}
