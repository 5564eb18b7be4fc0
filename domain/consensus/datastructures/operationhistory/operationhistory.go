// Package operationhistory implements model.OperationHistoryStore: the
// per-block buffer of applied operations spec §3/§4.4.5 describes, cleared
// at the block boundaries and truncatable for proposal-apply rollback (spec
// §9 "Proposal apply"). Grounded on the same guarded-slice shape as package
// pendingpool; the virtual-op counter mirrors db_block.cpp's
// next_object_id-style monotonic counters.
package operationhistory

import (
	"sync"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

// Store is the concrete model.OperationHistoryStore.
type Store struct {
	mu             sync.Mutex
	entries        []externalapi.OperationHistoryEntry
	virtualOpCount uint64
}

var _ model.OperationHistoryStore = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Push implements model.OperationHistoryStore.
func (s *Store) Push(blockNum, trxInBlock, opInTrx uint32, op externalapi.Operation) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.virtualOpCount++
	s.entries = append(s.entries, externalapi.OperationHistoryEntry{
		BlockNum:   blockNum,
		TrxInBlock: trxInBlock,
		OpInTrx:    opInTrx,
		VirtualOp:  s.virtualOpCount,
		Operation:  op,
	})
	return len(s.entries) - 1
}

// SetResult implements model.OperationHistoryStore.
func (s *Store) SetResult(index int, result externalapi.OperationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return
	}
	s.entries[index].Result = result
}

// Entries implements model.OperationHistoryStore.
func (s *Store) Entries() []externalapi.OperationHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]externalapi.OperationHistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Reset implements model.OperationHistoryStore: it blanks every entry from
// index onward to its zero value without shrinking the slice, preserving
// the position (and therefore the object id) of entries appended
// afterwards - the pre-hardfork proposal-apply-failure policy (spec §9
// "Proposal apply"), as opposed to Truncate's post-hardfork policy of
// shrinking the slice outright.
func (s *Store) Reset(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index > len(s.entries) {
		return
	}
	for i := index; i < len(s.entries); i++ {
		s.entries[i] = externalapi.OperationHistoryEntry{}
	}
}

// Truncate implements model.OperationHistoryStore.
func (s *Store) Truncate(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index > len(s.entries) {
		return
	}
	s.entries = s.entries[:index]
}

// Clear implements model.OperationHistoryStore.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
