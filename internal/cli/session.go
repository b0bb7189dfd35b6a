package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/unitforge/internal/defs"
	"github.com/mesh-intelligence/unitforge/internal/paths"
	"github.com/mesh-intelligence/unitforge/pkg/interp"
	"github.com/mesh-intelligence/unitforge/pkg/registry"
	"github.com/mesh-intelligence/unitforge/pkg/sqlite"
	"github.com/mesh-intelligence/unitforge/pkg/types"
)

// loadRegistry builds the registry from the built-in definitions with any
// user definitions merged over them. A user category replaces the built-in
// category of the same name.
func loadRegistry() (*registry.Registry, error) {
	all := defs.Default()

	path, err := paths.ResolveDefinitions(flags.definitions, settings.GetString(cfgKeyDefinitionsDir), configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve definitions: %w", err))
	}
	if path != "" {
		user, err := defs.Load(path)
		if err != nil {
			return nil, userError(fmt.Errorf("load definitions: %w", err))
		}
		all.Merge(user)
	}

	reg, err := registry.Build(all)
	if err != nil {
		return nil, userError(fmt.Errorf("build unit registry: %w", err))
	}
	logrus.WithFields(logrus.Fields{
		"definitions": path,
		"units":       reg.Len(),
	}).Debug("unit registry built")
	return reg, nil
}

// attachJournal resolves the data directory and attaches the journal. The
// caller must Detach it.
func attachJournal() (types.Journal, error) {
	dataDir, err := paths.ResolveDataDir(flags.dataDir, settings.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	journal := sqlite.NewJournal()
	if err := journal.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}); err != nil {
		return nil, fmt.Errorf("attach journal: %w", err)
	}
	return journal, nil
}

// runner executes commands in one session, prints their results and records
// them in the journal when it is enabled.
type runner struct {
	session   *interp.Session
	journal   types.Journal
	sessionID string
	out       *printer
}

func newRunner(cmd *cobra.Command) (*runner, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	r := &runner{
		session:   interp.NewSession(reg),
		sessionID: uuid.New().String(),
		out:       newPrinter(cmd, reg),
	}

	// The journal is an audit trail; a session runs without it if it cannot
	// be opened.
	if settings.GetBool(cfgKeyJournal) {
		journal, err := attachJournal()
		if err != nil {
			logrus.WithError(err).Warn("journal disabled")
		} else {
			r.journal = journal
		}
	}
	return r, nil
}

// execute runs one command and reports whether it succeeded.
func (r *runner) execute(command string) bool {
	v, err := r.session.Execute(command)
	r.record(command, v, err)
	if err != nil {
		r.out.printError(command, err)
		return false
	}
	r.out.printValue(command, v)
	return true
}

func (r *runner) record(command string, v interp.Value, cmdErr error) {
	if r.journal == nil {
		return
	}
	entry := types.Entry{
		SessionID: r.sessionID,
		Command:   command,
	}
	if cmdErr != nil {
		entry.Error = cmdErr.Error()
	} else {
		entry.Value = v.Number
		entry.Unit = v.Unit
	}
	if _, err := r.journal.Record(entry); err != nil {
		logrus.WithError(err).Warn("record command in journal")
	}
}

func (r *runner) close() {
	if r.journal == nil {
		return
	}
	if err := r.journal.Detach(); err != nil {
		logrus.WithError(err).Warn("detach journal")
	}
}
