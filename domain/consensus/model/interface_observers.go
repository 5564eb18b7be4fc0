package model

import "github.com/discretemind/graphene-core/domain/consensus/model/externalapi"

// Observers is the set of signals the block pipeline emits (spec §6
// "Emitted signals"). All three are best-effort notifications: a panicking
// or slow observer must not be allowed to break block processing, so
// implementations are expected to recover panics and/or dispatch
// asynchronously themselves.
type Observers interface {
	// NotifyAppliedBlock fires once a block has been fully applied and
	// becomes (or extends) the head, after its ObjectHistory has been
	// finalized (spec §4.4.5 step 11, db_block.cpp applied_block).
	NotifyAppliedBlock(block *externalapi.Block)

	// NotifyOnPendingTransaction fires when PushTransaction accepts a
	// transaction into the pending pool; re-applying pooled transactions
	// after a new head does not fire it (spec §9 resolution of the malformed
	// fc::do_parallel call - fires synchronously after PendingPool.Append,
	// not fanned out to worker threads).
	NotifyOnPendingTransaction(trx *externalapi.Transaction)

	// NotifyChangedObjects fires once per applied transaction with every
	// ObjectRef it created, modified, or removed (spec §6, db_block.cpp
	// changed_objects).
	NotifyChangedObjects(refs []ObjectRef)
}
