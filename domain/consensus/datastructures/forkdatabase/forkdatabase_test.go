package forkdatabase

import (
	"testing"
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

func mustBlock(t *testing.T, blockNum uint32, digest byte, previous externalapi.BlockID) *externalapi.Block {
	t.Helper()
	blockID := externalapi.NewBlockID(blockNum, []byte{digest, digest, digest, digest})
	b := &externalapi.Block{Previous: previous, Timestamp: time.Unix(int64(blockNum), 0)}
	b.SetPrecomputedID(blockID)
	return b
}

func id(t *testing.T, b *externalapi.Block) externalapi.BlockID {
	t.Helper()
	blockID, ok := b.PrecomputedID()
	if !ok {
		t.Fatalf("block has no precomputed id")
	}
	return blockID
}

func TestPushBlockLinearExtension(t *testing.T) {
	fdb := New(nil)

	b10 := mustBlock(t, 10, 1, externalapi.BlockID{})
	head, err := fdb.PushBlock(b10)
	if err != nil {
		t.Fatalf("PushBlock(10): %v", err)
	}
	if head.ID != id(t, b10) {
		t.Fatalf("head after 10 = %s, want %s", head.ID, id(t, b10))
	}

	b11 := mustBlock(t, 11, 2, id(t, b10))
	head, err = fdb.PushBlock(b11)
	if err != nil {
		t.Fatalf("PushBlock(11): %v", err)
	}
	if head.ID != id(t, b11) {
		t.Fatalf("head after 11 = %s, want 11's id", head.ID)
	}
}

func TestPushBlockStaleSibling(t *testing.T) {
	fdb := New(nil)

	genesis := mustBlock(t, 1, 0, externalapi.BlockID{})
	fdb.PushBlock(genesis)

	b10 := mustBlock(t, 10, 1, id(t, genesis))
	fdb.PushBlock(b10)

	stale := mustBlock(t, 10, 9, id(t, genesis))
	head, err := fdb.PushBlock(stale)
	if err != nil {
		t.Fatalf("PushBlock(stale): %v", err)
	}
	if head.ID == id(t, stale) {
		t.Fatalf("stale sibling became head")
	}
}

func TestFetchBranchFromShortFork(t *testing.T) {
	fdb := New(nil)

	genesis := mustBlock(t, 1, 0, externalapi.BlockID{})
	fdb.PushBlock(genesis)
	b10 := mustBlock(t, 2, 1, id(t, genesis))
	fdb.PushBlock(b10)
	b11 := mustBlock(t, 3, 2, id(t, b10))
	fdb.PushBlock(b11)
	b12 := mustBlock(t, 4, 3, id(t, b11))
	fdb.PushBlock(b12)

	b11p := mustBlock(t, 3, 20, id(t, b10))
	fdb.PushBlock(b11p)
	b12p := mustBlock(t, 4, 21, id(t, b11p))
	fdb.PushBlock(b12p)
	b13p := mustBlock(t, 5, 22, id(t, b12p))
	head, err := fdb.PushBlock(b13p)
	if err != nil {
		t.Fatalf("PushBlock(13'): %v", err)
	}
	if head.ID != id(t, b13p) {
		t.Fatalf("head = %s, want 13'", head.ID)
	}

	branchNew, branchOld, err := fdb.FetchBranchFrom(id(t, b13p), id(t, b12))
	if err != nil {
		t.Fatalf("FetchBranchFrom: %v", err)
	}
	if len(branchNew) != 3 {
		t.Fatalf("len(branchNew) = %d, want 3 (11',12',13')", len(branchNew))
	}
	if len(branchOld) != 2 {
		t.Fatalf("len(branchOld) = %d, want 2 (11,12)", len(branchOld))
	}
}

func TestRemoveDropsDescendants(t *testing.T) {
	fdb := New(nil)

	genesis := mustBlock(t, 1, 0, externalapi.BlockID{})
	fdb.PushBlock(genesis)
	b2 := mustBlock(t, 2, 1, id(t, genesis))
	fdb.PushBlock(b2)
	b3 := mustBlock(t, 3, 2, id(t, b2))
	fdb.PushBlock(b3)

	fdb.Remove(id(t, b2))

	if fdb.IsKnownBlock(id(t, b2)) {
		t.Fatalf("b2 still known after Remove")
	}
	if fdb.IsKnownBlock(id(t, b3)) {
		t.Fatalf("b3 (descendant of b2) still known after Remove")
	}
	if fdb.IsKnownBlock(id(t, genesis)) == false {
		t.Fatalf("genesis should survive removing its child")
	}
}

func TestPruneBelow(t *testing.T) {
	fdb := New(nil)

	genesis := mustBlock(t, 1, 0, externalapi.BlockID{})
	fdb.PushBlock(genesis)
	b2 := mustBlock(t, 2, 1, id(t, genesis))
	fdb.PushBlock(b2)

	fdb.PruneBelow(1)

	if fdb.IsKnownBlock(id(t, genesis)) {
		t.Fatalf("genesis should be pruned")
	}
	if !fdb.IsKnownBlock(id(t, b2)) {
		t.Fatalf("b2 should survive pruning below its own height")
	}
}
