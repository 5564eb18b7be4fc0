package blockstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

func testBlock(t *testing.T, blockNum uint32) (*externalapi.Block, externalapi.BlockID) {
	t.Helper()
	id := externalapi.NewBlockID(blockNum, []byte{1, 2, 3, 4})
	b := &externalapi.Block{
		Previous:  externalapi.BlockID{},
		Timestamp: time.Unix(1000, 0).UTC(),
		Producer:  externalapi.ProducerID("witness1"),
	}
	b.SetPrecomputedID(id)
	return b, id
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	block, id := testBlock(t, 5)

	if err := store.Store(id, block); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := store.FetchOptional(id)
	if err != nil || got == nil {
		t.Fatalf("FetchOptional = %v, %v", got, err)
	}
	if got.Producer != block.Producer {
		t.Fatalf("Producer = %s, want %s", got.Producer, block.Producer)
	}

	byNum, err := store.FetchByNumber(block.Number())
	if err != nil || byNum == nil {
		t.Fatalf("FetchByNumber = %v, %v", byNum, err)
	}

	contains, err := store.Contains(id)
	if err != nil || !contains {
		t.Fatalf("Contains = %v, %v", contains, err)
	}

	fetchedID, err := store.FetchBlockID(block.Number())
	if err != nil || fetchedID != id {
		t.Fatalf("FetchBlockID = %s, %v, want %s", fetchedID, err, id)
	}
}

func TestLevelDBStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocks")
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	block, id := testBlock(t, 7)
	if err := store.Store(id, block); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := store.FetchOptional(id)
	if err != nil || got == nil {
		t.Fatalf("FetchOptional = %v, %v", got, err)
	}
	if got.Producer != block.Producer {
		t.Fatalf("Producer = %s, want %s", got.Producer, block.Producer)
	}

	unknown, err := store.FetchOptional(externalapi.NewBlockID(999, []byte{9, 9, 9, 9}))
	if err != nil || unknown != nil {
		t.Fatalf("FetchOptional(unknown) = %v, %v, want nil, nil", unknown, err)
	}
}
