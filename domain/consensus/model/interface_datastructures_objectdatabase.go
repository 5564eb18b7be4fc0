package model

// ObjectRef opaquely identifies a single stored object within a Table, the
// way an object_id_type identifies a row in the source this module is
// grounded on. Concrete tables mint their own ObjectRef values (e.g. wrapping
// an integer or a hash); the undo stack and the object database only ever
// move them around, never inspect them.
type ObjectRef interface{}

// UndoableTable is the narrow surface a Table exposes to the undo stack: the
// ability to record and later replay inverse operations, without exposing
// the table's own type parameter to package undostack (spec §4.1's
// "mutating operation on the object db ... records an inverse entry").
type UndoableTable interface {
	// UndoCreate reverses a Create: it removes the object referenced by ref.
	UndoCreate(ref ObjectRef)
	// UndoModify reverses a Modify: it restores the object referenced by ref
	// to the snapshot previously captured by Modify.
	UndoModify(ref ObjectRef, snapshot interface{})
	// UndoRemove reverses a Remove: it reinserts the previously removed
	// object snapshot under ref.
	UndoRemove(ref ObjectRef, snapshot interface{})
}

// ChangeRecorder is the current top-of-stack UndoSession, as seen by
// package objectdatabase's tables (spec §4.1 "records an inverse entry into
// the current top session"). It is the mirror image of UndoableTable: tables
// call into it, sessions implement it.
type ChangeRecorder interface {
	RecordCreate(table UndoableTable, ref ObjectRef)
	RecordModify(table UndoableTable, ref ObjectRef, snapshot interface{})
	RecordRemove(table UndoableTable, ref ObjectRef, snapshot interface{})
}

// ObjectDatabase is the mutable substrate the Undo Stack mutates through
// (spec §4.1, §6 "Object Database"). It is deliberately minimal: it only
// needs to let the undo stack register/look up UndoableTables by name, since
// all of a table's create/modify/remove/iterate behavior is exposed to
// callers by the table's own (generic) API in package objectdatabase, not
// through this interface.
type ObjectDatabase interface {
	// Table returns the named table, creating it via newTable if it does
	// not yet exist. Callers type-assert or use the generic accessor in
	// package objectdatabase to recover the concrete Table[T].
	Table(name string, newTable func() UndoableTable) UndoableTable

	// ActiveRecorder returns the session mutations should currently record
	// into, or nil if no session is open (a mutation made then is applied
	// but not recorded, so no session can undo it).
	ActiveRecorder() ChangeRecorder

	// SetActiveRecorder installs the session that subsequent mutations
	// record into. Called by the UndoStack whenever the top of its stack
	// changes (push, commit, merge, discard).
	SetActiveRecorder(r ChangeRecorder)
}
