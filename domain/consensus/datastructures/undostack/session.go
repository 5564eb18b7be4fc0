// Package undostack implements model.UndoStack: a stack of reversible
// UndoSessions over a model.ObjectDatabase (spec §4.1). Like package
// objectdatabase, it has no direct teacher-repo counterpart - kaspad's
// model.StagingArea (domain/consensus/model/staging_area.go) never reverses
// its shards - so its session-stack shape is grounded directly on spec.md
// §4.1 and db_block.cpp's undo_session usage, expressed with the teacher's
// small-manager-struct idiom and its use of github.com/google/uuid for
// opaque identifiers.
package undostack

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/infrastructure/logger"
)

type changeKind int

const (
	changeCreate changeKind = iota
	changeModify
	changeRemove
)

type change struct {
	kind     changeKind
	table    model.UndoableTable
	ref      model.ObjectRef
	snapshot interface{}
}

// Session is the concrete model.UndoSession and model.ChangeRecorder: it
// records every mutation made while it sits on top of its Stack, and knows
// how to fold or reverse them.
type Session struct {
	id      string
	stack   *Stack
	parent  *Session
	changes []change
	open    bool
}

var _ model.UndoSession = (*Session)(nil)
var _ model.ChangeRecorder = (*Session)(nil)

// ID implements model.UndoSession.
func (s *Session) ID() string { return s.id }

// ChangedRefs implements model.UndoSession.
func (s *Session) ChangedRefs() []model.ObjectRef {
	seen := make(map[model.ObjectRef]bool, len(s.changes))
	refs := make([]model.ObjectRef, 0, len(s.changes))
	for _, c := range s.changes {
		if !seen[c.ref] {
			seen[c.ref] = true
			refs = append(refs, c.ref)
		}
	}
	return refs
}

// RecordCreate implements model.ChangeRecorder.
func (s *Session) RecordCreate(table model.UndoableTable, ref model.ObjectRef) {
	s.changes = append(s.changes, change{kind: changeCreate, table: table, ref: ref})
}

// RecordModify implements model.ChangeRecorder.
func (s *Session) RecordModify(table model.UndoableTable, ref model.ObjectRef, snapshot interface{}) {
	s.changes = append(s.changes, change{kind: changeModify, table: table, ref: ref, snapshot: snapshot})
}

// RecordRemove implements model.ChangeRecorder.
func (s *Session) RecordRemove(table model.UndoableTable, ref model.ObjectRef, snapshot interface{}) {
	s.changes = append(s.changes, change{kind: changeRemove, table: table, ref: ref, snapshot: snapshot})
}

// Commit implements model.UndoSession (spec §4.1 "commit").
func (s *Session) Commit() error {
	if err := s.requireTop(); err != nil {
		return err
	}
	s.stack.popOpen(s)

	if s.parent != nil {
		s.parent.changes = append(s.parent.changes, s.changes...)
		s.stack.setActiveRecorder(s.parent)
		return nil
	}

	s.stack.retainHistory(s)
	s.stack.setActiveRecorder(s.stack.topOpen())
	return nil
}

// Merge implements model.UndoSession (spec §4.1 "merge"). Nested, it is
// identical to Commit. At the root of the stack it leaves the session open
// for more children, per spec §4.1's note that the two differ only there;
// the pipeline never actually merges a root session (only child sessions
// opened atop a pending session), so this branch exists for completeness.
func (s *Session) Merge() error {
	if err := s.requireTop(); err != nil {
		return err
	}

	if s.parent != nil {
		s.stack.popOpen(s)
		s.parent.changes = append(s.parent.changes, s.changes...)
		s.stack.setActiveRecorder(s.parent)
		return nil
	}

	// Root session: fold is a no-op (there is nothing above it to receive
	// the changes) and the session stays open.
	return nil
}

// Discard implements model.UndoSession (spec §4.1 "implicit discard on
// drop"): it reverses every recorded change, most recent first.
func (s *Session) Discard() error {
	if !s.open {
		return nil
	}
	if err := s.requireTop(); err != nil {
		return err
	}
	s.stack.popOpen(s)
	s.undoAll()
	s.stack.setActiveRecorder(s.stack.topOpen())
	return nil
}

func (s *Session) undoAll() {
	for i := len(s.changes) - 1; i >= 0; i-- {
		c := s.changes[i]
		switch c.kind {
		case changeCreate:
			c.table.UndoCreate(c.ref)
		case changeModify:
			c.table.UndoModify(c.ref, c.snapshot)
		case changeRemove:
			c.table.UndoRemove(c.ref, c.snapshot)
		}
	}
}

func (s *Session) requireTop() error {
	if s.stack.topOpen() != s {
		return fmt.Errorf("undostack: session %s is not the top of its stack", s.id)
	}
	return nil
}

func newSession(stack *Stack, parent *Session) *Session {
	return &Session{
		id:     uuid.NewString(),
		stack:  stack,
		parent: parent,
		open:   true,
	}
}

var log = mustLogger()

func mustLogger() *logger.Logger {
	l, err := logger.Get(logger.SubsystemTags.UNDO)
	if err != nil {
		panic(err)
	}
	return l
}
