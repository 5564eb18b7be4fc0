// Package objectdatabase implements the model.ObjectDatabase spec.md §6
// describes: named, typed, indexed in-memory tables whose mutations route
// through whichever UndoSession the UndoStack currently has on top (spec
// §4.1). It has no teacher-repo equivalent - kaspad's model.StagingArea
// (domain/consensus/model/staging_area.go) is commit-only and never reverses
// - so its shape generalizes StagingArea's GetOrCreateShard-by-name pattern
// to add the reverse-apply half spec §4.1 requires.
package objectdatabase

import (
	"sync"

	"github.com/discretemind/graphene-core/domain/consensus/model"
)

// Database is the concrete model.ObjectDatabase: a name-keyed registry of
// UndoableTables plus the single ChangeRecorder mutations currently record
// into.
type Database struct {
	mu       sync.RWMutex
	tables   map[string]model.UndoableTable
	recorder model.ChangeRecorder
}

// New returns an empty Database.
func New() *Database {
	return &Database{
		tables: make(map[string]model.UndoableTable),
	}
}

// Table implements model.ObjectDatabase.
func (db *Database) Table(name string, newTable func() model.UndoableTable) model.UndoableTable {
	db.mu.Lock()
	defer db.mu.Unlock()

	if t, ok := db.tables[name]; ok {
		return t
	}
	t := newTable()
	db.tables[name] = t
	return t
}

// ActiveRecorder implements model.ObjectDatabase.
func (db *Database) ActiveRecorder() model.ChangeRecorder {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.recorder
}

// SetActiveRecorder implements model.ObjectDatabase.
func (db *Database) SetActiveRecorder(r model.ChangeRecorder) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.recorder = r
}
