// Package pendingpool implements model.PendingPool: the ordered list of
// accepted-but-not-yet-committed transactions spec §3 describes. It is
// deliberately the simplest store in this module - a plain guarded slice -
// grounded on kaspad's mempool transaction list
// (domain/consensus/processes/blockprocessor and the mempool package's use
// of an ordered slice plus an index) simplified down to what spec §4.4.2/
// §4.4.3 actually need: append, snapshot, and index-based removal.
package pendingpool

import (
	"sync"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

// Pool is the concrete model.PendingPool.
type Pool struct {
	mu    sync.RWMutex
	items []*externalapi.ProcessedTransaction
}

var _ model.PendingPool = (*Pool)(nil)

// New returns an empty Pool.
func New() *Pool {
	return &Pool{}
}

// Append implements model.PendingPool.
func (p *Pool) Append(ptx *externalapi.ProcessedTransaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, ptx)
}

// Transactions implements model.PendingPool.
func (p *Pool) Transactions() []*externalapi.ProcessedTransaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*externalapi.ProcessedTransaction, len(p.items))
	copy(out, p.items)
	return out
}

// Remove implements model.PendingPool.
func (p *Pool) Remove(indexes map[int]bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(indexes) == 0 {
		return
	}
	kept := p.items[:0]
	for i, item := range p.items {
		if !indexes[i] {
			kept = append(kept, item)
		}
	}
	p.items = kept
}

// Clear implements model.PendingPool.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
}

// Len implements model.PendingPool.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}
