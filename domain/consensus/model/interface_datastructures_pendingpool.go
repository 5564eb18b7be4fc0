package model

import "github.com/discretemind/graphene-core/domain/consensus/model/externalapi"

// PendingPool is the ordered list of ProcessedTransactions accepted but not
// yet in a committed block, plus the one UndoSession that owns their
// speculative effects (spec §3 "PendingPool", "Pending invariant").
type PendingPool interface {
	// Append adds a processed transaction to the end of the pool.
	Append(ptx *externalapi.ProcessedTransaction)

	// Transactions returns the pool's contents in insertion order. The
	// returned slice must not be mutated by the caller.
	Transactions() []*externalapi.ProcessedTransaction

	// Remove drops the transactions at the given indexes (used after a
	// block is generated from a subset of the pool, spec §4.4.3 step 5, and
	// after a block containing some pooled transactions is pushed, spec
	// scenario 5).
	Remove(indexes map[int]bool)

	// Clear empties the pool.
	Clear()

	// Len returns the number of transactions currently pooled.
	Len() int
}
