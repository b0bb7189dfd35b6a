package sqlite

// Schema DDL for the journal. Statements are idempotent so Attach can run
// them against an existing database.
const (
	createEntries = `CREATE TABLE IF NOT EXISTS entries (
    entry_id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    command TEXT NOT NULL,
    value REAL NOT NULL,
    unit TEXT NOT NULL,
    error TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	idxEntriesCreated = `CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);`
	idxEntriesSession = `CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id);`
)

// schemaDDL lists the statements Attach executes, in order.
var schemaDDL = []string{
	createEntries,
	idxEntriesCreated,
	idxEntriesSession,
}
