package undostack

import (
	"fmt"
	"sync"

	"github.com/discretemind/graphene-core/domain/consensus/model"
)

// Stack is the concrete model.UndoStack.
type Stack struct {
	mu      sync.Mutex
	db      model.ObjectDatabase
	open    []*Session
	history []*Session
	maxSize int
}

var _ model.UndoStack = (*Stack)(nil)

// New returns an empty Stack over db, retaining at most maxSize committed
// root sessions for PopBlock (spec §4.1 "max_size").
func New(db model.ObjectDatabase, maxSize int) *Stack {
	return &Stack{db: db, maxSize: maxSize}
}

// StartSession implements model.UndoStack.
func (s *Stack) StartSession() model.UndoSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.topOpenLocked()
	session := newSession(s, parent)
	s.open = append(s.open, session)
	s.db.SetActiveRecorder(session)
	return session
}

// Size implements model.UndoStack.
func (s *Stack) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// MaxSize implements model.UndoStack.
func (s *Stack) MaxSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSize
}

// SetMaxSize implements model.UndoStack.
func (s *Stack) SetMaxSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxSize = n
	s.enforceMaxSizeLocked()
}

// Depth implements model.UndoStack.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// UndoLastCommitted implements model.UndoStack (spec §4.4.4 "pop_block").
func (s *Stack) UndoLastCommitted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return fmt.Errorf("undostack: no committed session retained to undo")
	}

	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	last.open = true
	last.undoAll()
	last.open = false
	return nil
}

func (s *Stack) topOpen() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topOpenLocked()
}

func (s *Stack) topOpenLocked() *Session {
	if len(s.open) == 0 {
		return nil
	}
	return s.open[len(s.open)-1]
}

func (s *Stack) popOpen(target *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.open) == 0 || s.open[len(s.open)-1] != target {
		return
	}
	s.open = s.open[:len(s.open)-1]
	target.open = false
}

func (s *Stack) setActiveRecorder(top *Session) {
	if top == nil {
		s.db.SetActiveRecorder(nil)
		return
	}
	s.db.SetActiveRecorder(top)
}

func (s *Stack) retainHistory(committed *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, committed)
	s.enforceMaxSizeLocked()
}

// enforceMaxSizeLocked hard-commits (drops, no longer reversible) the oldest
// retained session once history exceeds maxSize (spec §4.1 "on overflow the
// oldest is hard-committed").
func (s *Stack) enforceMaxSizeLocked() {
	if s.maxSize <= 0 {
		return
	}
	for len(s.history) > s.maxSize {
		oldest := s.history[0]
		s.history = s.history[1:]
		oldest.changes = nil
		log.Debugf("hard-committed session %s past max_size %d", oldest.id, s.maxSize)
	}
}
