// Package sqlite provides the public API for the SQLite command journal.
// This package exposes the factory function while keeping implementation
// details internal.
package sqlite

import (
	"github.com/mesh-intelligence/unitforge/internal/sqlite"
	"github.com/mesh-intelligence/unitforge/pkg/types"
)

// NewJournal creates a new SQLite journal instance.
// The journal is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	journal := sqlite.NewJournal()
//	err := journal.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: dataDir,
//	})
//	defer journal.Detach()
func NewJournal() types.Journal {
	return sqlite.NewJournal()
}
