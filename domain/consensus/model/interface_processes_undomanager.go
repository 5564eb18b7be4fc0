package model

// UndoSession is a reversible scope of mutations to the ObjectDatabase (spec
// §3 "UndoSession", §4.1). Sessions form a stack (spec §3 "Nesting
// invariant"): a session may only be Commit()ed or Merge()d while it is the
// top of its stack, and any session dropped without an explicit Commit or
// Merge auto-discards (spec §9 "Undo sessions as scoped resources").
type UndoSession interface {
	// Commit folds this session's changes into its parent, or - if this
	// session is the bottom of the stack - into the object database itself,
	// making them permanent. Popping the session off the stack.
	Commit() error

	// Merge folds this session's changes into its parent without making
	// them permanent, and (unlike Commit) leaves the parent open to receive
	// more children. Popping this session off the stack.
	Merge() error

	// Discard reverses every change this session recorded, popping it off
	// the stack. Discard is safe to call multiple times and is what happens
	// implicitly if a session is dropped without Commit or Merge.
	Discard() error

	// ID returns a stable identifier for this session, used only for log
	// correlation.
	ID() string

	// ChangedRefs returns the distinct ObjectRefs this session created,
	// modified, or removed, in first-touched order. Consumed by the block
	// pipeline to fire NotifyChangedObjects once per applied transaction
	// (spec §6, db_block.cpp changed_objects).
	ChangedRefs() []ObjectRef
}

// UndoStack is a stack of UndoSessions over an ObjectDatabase (spec §4.1).
type UndoStack interface {
	// StartSession pushes a new UndoSession on top of the stack and returns
	// it. All ObjectDatabase mutations performed while it is on top are
	// recorded into it.
	StartSession() UndoSession

	// Size returns the number of committed (bottom, already-canonical)
	// sessions currently retained for PopBlock, i.e. the undo history depth.
	Size() int

	// MaxSize returns the configured retention cap (spec §4.1 "max_size").
	MaxSize() int

	// SetMaxSize changes the retention cap. Used by push_proposal's nesting
	// guard (spec §9 "Proposal apply", db_block.cpp push_proposal) to grow
	// the cap on demand rather than fail a legitimate deep session stack.
	SetMaxSize(n int)

	// Depth returns the number of currently open (uncommitted) sessions.
	Depth() int

	// UndoLastCommitted reverses the most recently committed root session
	// still retained in history and drops it, restoring the object database
	// to the state before that session was committed (spec §4.4.4
	// "pop_block ... Undo one committed session"). Returns an error if no
	// committed session is retained - it was already hard-committed past
	// MaxSize, or nothing has been committed yet.
	UndoLastCommitted() error
}
