package objectdatabase

import (
	"testing"

	"github.com/discretemind/graphene-core/domain/consensus/model"
)

type widget struct {
	name  string
	price int
}

func TestTableCreateGetModifyRemove(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets")

	ref := widgets.Create(func(model.ObjectRef) widget {
		return widget{name: "cog", price: 5}
	})

	got, ok := widgets.Get(ref)
	if !ok || got.name != "cog" {
		t.Fatalf("Get after Create = %+v, %v", got, ok)
	}

	err := widgets.Modify(ref, func(w widget) widget {
		w.price = 7
		return w
	})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}
	got, _ = widgets.Get(ref)
	if got.price != 7 {
		t.Fatalf("price after Modify = %d, want 7", got.price)
	}

	if err := widgets.Remove(ref); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := widgets.Get(ref); ok {
		t.Fatalf("Get after Remove: object still present")
	}
}

func TestTableExactIndex(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets")
	widgets.CreateIndex("by_name", func(w widget) interface{} { return w.name })

	ref := widgets.Create(func(model.ObjectRef) widget { return widget{name: "cog", price: 5} })

	refs := widgets.ByIndex("by_name", "cog")
	if len(refs) != 1 || refs[0] != ref {
		t.Fatalf("ByIndex(by_name, cog) = %v, want [%v]", refs, ref)
	}

	widgets.Remove(ref)
	if refs := widgets.ByIndex("by_name", "cog"); len(refs) != 0 {
		t.Fatalf("ByIndex after Remove = %v, want empty", refs)
	}
}

func TestTableOrderedIndex(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets")
	widgets.CreateOrderedIndex("by_price", func(w widget) interface{} { return w.price },
		func(a, b interface{}) bool { return a.(int) < b.(int) })

	widgets.Create(func(model.ObjectRef) widget { return widget{name: "a", price: 30} })
	widgets.Create(func(model.ObjectRef) widget { return widget{name: "b", price: 10} })
	widgets.Create(func(model.ObjectRef) widget { return widget{name: "c", price: 20} })

	var order []string
	widgets.RangeIndex("by_price", 0, func(ref Ref) bool {
		w, _ := widgets.Get(ref)
		order = append(order, w.name)
		return true
	})

	want := []string{"b", "c", "a"}
	if len(order) != len(want) {
		t.Fatalf("RangeIndex order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("RangeIndex order = %v, want %v", order, want)
		}
	}
}

// fakeRecorder counts calls without implementing real undo, to verify Table
// routes through Database.ActiveRecorder() correctly.
type fakeRecorder struct {
	creates, modifies, removes int
}

func (f *fakeRecorder) RecordCreate(model.UndoableTable, model.ObjectRef) { f.creates++ }
func (f *fakeRecorder) RecordModify(model.UndoableTable, model.ObjectRef, interface{}) {
	f.modifies++
}
func (f *fakeRecorder) RecordRemove(model.UndoableTable, model.ObjectRef, interface{}) {
	f.removes++
}

func TestTableRecordsIntoActiveRecorder(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets")
	rec := &fakeRecorder{}
	db.SetActiveRecorder(rec)

	ref := widgets.Create(func(model.ObjectRef) widget { return widget{name: "cog"} })
	widgets.Modify(ref, func(w widget) widget { return w })
	widgets.Remove(ref)

	if rec.creates != 1 || rec.modifies != 1 || rec.removes != 1 {
		t.Fatalf("recorder calls = %+v, want one of each", rec)
	}
}

func TestTableUndoCreateModifyRemove(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets")

	ref := widgets.Create(func(model.ObjectRef) widget { return widget{name: "cog", price: 5} })
	widgets.UndoCreate(ref)
	if _, ok := widgets.Get(ref); ok {
		t.Fatalf("object survives UndoCreate")
	}

	ref2 := widgets.Create(func(model.ObjectRef) widget { return widget{name: "cog", price: 5} })
	before, _ := widgets.Get(ref2)
	widgets.Modify(ref2, func(w widget) widget { w.price = 99; return w })
	widgets.UndoModify(ref2, before)
	after, _ := widgets.Get(ref2)
	if after.price != 5 {
		t.Fatalf("price after UndoModify = %d, want 5", after.price)
	}

	snapshot, _ := widgets.Get(ref2)
	widgets.Remove(ref2)
	widgets.UndoRemove(ref2, snapshot)
	if _, ok := widgets.Get(ref2); !ok {
		t.Fatalf("object missing after UndoRemove")
	}
}
