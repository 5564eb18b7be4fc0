package objectdatabase

import (
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/discretemind/graphene-core/domain/consensus/model"
)

// Ref is the concrete model.ObjectRef minted by every Table[T]: the table's
// own name plus a monotonic per-table counter, mirroring the source's
// object_id_type (type-tagged index within a type-tagged table).
type Ref struct {
	Table string
	ID    uint64
}

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Table, r.ID)
}

// orderedEntry is what the btree orders: a comparable key plus the ref it
// belongs to, so ties on the key still sort deterministically by ref.
type orderedEntry struct {
	key interface{}
	ref Ref
}

// Table is a generic, undo-aware collection of objects of type T (spec §6
// "Object Database ... indexed typed tables"). It implements
// model.UndoableTable directly, so the UndoStack can record and replay
// inverse operations against it without ever knowing T.
type Table[T any] struct {
	mu      sync.RWMutex
	db      *Database
	name    string
	nextID  uint64
	objects map[Ref]T

	exactIndexes   map[string]exactIndex[T]
	orderedIndexes map[string]*orderedIndex[T]
}

type exactIndex[T any] struct {
	keyFn func(T) interface{}
	byKey map[interface{}]map[Ref]struct{}
}

type orderedIndex[T any] struct {
	keyFn func(T) interface{}
	less  func(a, b interface{}) bool
	tree  *btree.BTreeG[orderedEntry]
}

// NewTable registers (or recovers) the named table on db.
func NewTable[T any](db *Database, name string) *Table[T] {
	t := db.Table(name, func() model.UndoableTable {
		return &Table[T]{
			db:             db,
			name:           name,
			objects:        make(map[Ref]T),
			exactIndexes:   make(map[string]exactIndex[T]),
			orderedIndexes: make(map[string]*orderedIndex[T]),
		}
	})
	return t.(*Table[T])
}

// CreateIndex registers an exact-match secondary index keyed by keyFn, e.g.
// "by_trx_id" (spec §6).
func (t *Table[T]) CreateIndex(indexName string, keyFn func(T) interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exactIndexes[indexName] = exactIndex[T]{keyFn: keyFn, byKey: make(map[interface{}]map[Ref]struct{})}
}

// CreateOrderedIndex registers a range-iterable secondary index, e.g.
// "by_price" (spec §6), backed by a google/btree.BTreeG.
func (t *Table[T]) CreateOrderedIndex(indexName string, keyFn func(T) interface{}, less func(a, b interface{}) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.orderedIndexes[indexName] = &orderedIndex[T]{
		keyFn: keyFn,
		less:  less,
		tree: btree.NewG(32, func(a, b orderedEntry) bool {
			if less(a.key, b.key) {
				return true
			}
			if less(b.key, a.key) {
				return false
			}
			return fmt.Sprint(a.ref) < fmt.Sprint(b.ref)
		}),
	}
}

func (t *Table[T]) recorder() model.ChangeRecorder {
	return t.db.ActiveRecorder()
}

// Create inserts a new object built by initFn and records the inverse
// operation into the active undo session (spec §4.1).
func (t *Table[T]) Create(initFn func(ref model.ObjectRef) T) Ref {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	ref := Ref{Table: t.name, ID: t.nextID}
	obj := initFn(ref)
	t.objects[ref] = obj
	t.indexInsert(ref, obj)

	if r := t.recorder(); r != nil {
		r.RecordCreate(t, ref)
	}
	return ref
}

// Get returns the object referenced by ref.
func (t *Table[T]) Get(ref Ref) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	obj, ok := t.objects[ref]
	return obj, ok
}

// Modify replaces the object referenced by ref with the result of mutateFn,
// recording the pre-mutation snapshot for undo.
func (t *Table[T]) Modify(ref Ref, mutateFn func(T) T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	old, ok := t.objects[ref]
	if !ok {
		return fmt.Errorf("objectdatabase: modify of unknown ref %s", ref)
	}
	t.indexRemove(ref, old)
	updated := mutateFn(old)
	t.objects[ref] = updated
	t.indexInsert(ref, updated)

	if r := t.recorder(); r != nil {
		r.RecordModify(t, ref, old)
	}
	return nil
}

// Remove deletes the object referenced by ref, recording its snapshot for
// undo.
func (t *Table[T]) Remove(ref Ref) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	old, ok := t.objects[ref]
	if !ok {
		return fmt.Errorf("objectdatabase: remove of unknown ref %s", ref)
	}
	delete(t.objects, ref)
	t.indexRemove(ref, old)

	if r := t.recorder(); r != nil {
		r.RecordRemove(t, ref, old)
	}
	return nil
}

// ByIndex returns every ref currently filed under key in the named exact
// index.
func (t *Table[T]) ByIndex(indexName string, key interface{}) []Ref {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, ok := t.exactIndexes[indexName]
	if !ok {
		return nil
	}
	set := idx.byKey[key]
	refs := make([]Ref, 0, len(set))
	for ref := range set {
		refs = append(refs, ref)
	}
	return refs
}

// RangeIndex iterates the named ordered index in ascending key order
// starting at or after from, calling visit for each ref until visit returns
// false.
func (t *Table[T]) RangeIndex(indexName string, from interface{}, visit func(ref Ref) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, ok := t.orderedIndexes[indexName]
	if !ok {
		return
	}
	pivot := orderedEntry{key: from}
	idx.tree.AscendGreaterOrEqual(pivot, func(e orderedEntry) bool {
		return visit(e.ref)
	})
}

func (t *Table[T]) indexInsert(ref Ref, obj T) {
	for _, idx := range t.exactIndexes {
		key := idx.keyFn(obj)
		if idx.byKey[key] == nil {
			idx.byKey[key] = make(map[Ref]struct{})
		}
		idx.byKey[key][ref] = struct{}{}
	}
	for _, idx := range t.orderedIndexes {
		idx.tree.ReplaceOrInsert(orderedEntry{key: idx.keyFn(obj), ref: ref})
	}
}

func (t *Table[T]) indexRemove(ref Ref, obj T) {
	for _, idx := range t.exactIndexes {
		key := idx.keyFn(obj)
		if set, ok := idx.byKey[key]; ok {
			delete(set, ref)
			if len(set) == 0 {
				delete(idx.byKey, key)
			}
		}
	}
	for _, idx := range t.orderedIndexes {
		idx.tree.Delete(orderedEntry{key: idx.keyFn(obj), ref: ref})
	}
}

// UndoCreate implements model.UndoableTable.
func (t *Table[T]) UndoCreate(ref model.ObjectRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := ref.(Ref)
	if obj, ok := t.objects[r]; ok {
		delete(t.objects, r)
		t.indexRemove(r, obj)
	}
}

// UndoModify implements model.UndoableTable.
func (t *Table[T]) UndoModify(ref model.ObjectRef, snapshot interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := ref.(Ref)
	old := snapshot.(T)
	if cur, ok := t.objects[r]; ok {
		t.indexRemove(r, cur)
	}
	t.objects[r] = old
	t.indexInsert(r, old)
}

// UndoRemove implements model.UndoableTable.
func (t *Table[T]) UndoRemove(ref model.ObjectRef, snapshot interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := ref.(Ref)
	old := snapshot.(T)
	t.objects[r] = old
	t.indexInsert(r, old)
}
