package model

import (
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

// AuthorityResolver resolves an account's active/owner authority graph, so
// TransactionValidator can walk it without depending on the (out of scope)
// account/evaluator subsystem directly (spec §4.3 step 3).
type AuthorityResolver interface {
	// ActiveKeys returns the public keys and sub-accounts that satisfy id's
	// active authority at weight threshold.
	ActiveKeys(id externalapi.AccountID) (keys [][]byte, accounts map[externalapi.AccountID]uint32, threshold uint32, err error)

	// OwnerKeys is ActiveKeys for the owner authority.
	OwnerKeys(id externalapi.AccountID) (keys [][]byte, accounts map[externalapi.AccountID]uint32, threshold uint32, err error)
}

// TaposResolver answers the TaPoS reference-block-prefix question (spec
// §4.3 step 5) without exposing the whole block-summary ring to the
// validator.
type TaposResolver interface {
	// BlockSummaryPrefix returns the second machine word of the block id
	// currently occupying the block-summary ring slot for blockNum (spec
	// §4.3 step 5, §6 "Persisted layout").
	BlockSummaryPrefix(blockNum uint32) (uint32, bool)
}

// TransactionValidator performs the stateless and stateful checks of spec
// §4.3 on a single transaction, producing a ProcessedTransaction.
type TransactionValidator interface {
	// ApplyTransaction runs the full check-and-dispatch pipeline of spec
	// §4.3 against trx, honoring the given skip flags and current head
	// block number/time, and returns the resulting ProcessedTransaction.
	// trxInBlock is the transaction's position within the block currently
	// being built or applied (spec §4.4.5 step 5 "reset trx-in-block
	// counter"); callers outside of block application (push_transaction)
	// pass 0.
	ApplyTransaction(
		trx *externalapi.Transaction,
		skip externalapi.SkipFlags,
		headBlockNum uint32,
		headBlockTime time.Time,
		trxInBlock uint32,
	) (*externalapi.ProcessedTransaction, error)

	// RecentTransaction returns the full transaction behind id if it is
	// still inside the dedup window, distinct from the boolean-only answer
	// a duplicate check gives (SPEC_FULL.md §12 "get_recent_transaction").
	RecentTransaction(id externalapi.TransactionID) (*externalapi.Transaction, bool)
}
