package model

import "github.com/discretemind/graphene-core/domain/consensus/model/externalapi"

// Precomputer performs the stateless, parallelizable half of transaction and
// block validation ahead of time - digest/id computation and signature key
// recovery - so the sequential apply pass in BlockPipeline never has to pay
// for it inline (spec.md §12 "precompute_parallel", db_block.cpp
// precompute_parallel/_precompute_parallel).
type Precomputer interface {
	// PrecomputeTransaction fills in trx's cached id and packed size, and
	// resolves the signing keys behind its signatures, without touching any
	// ObjectDatabase state. Safe to call concurrently on distinct
	// transactions.
	PrecomputeTransaction(trx *externalapi.Transaction) (signingKeys [][]byte, err error)

	// PrecomputeBlock fills in block's cached id and packed size and
	// precomputes every one of its transactions, fanning the transaction
	// work out across a worker pool (spec.md §12; db_block.cpp splits work
	// into chunks of 5 via fc::do_parallel).
	PrecomputeBlock(block *externalapi.Block) error
}
