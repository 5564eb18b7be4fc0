package blockpipeline

import (
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
)

// maxTransactionWireSize is the hard per-transaction wire-size ceiling spec
// §4.4.2 step 1 enforces regardless of skip flags or max_block_size.
const maxTransactionWireSize = 1 << 20

// PushTransaction implements model.BlockPipeline (spec §4.4.2).
func (p *Pipeline) PushTransaction(trx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ptx, err := p.applyPendingTransaction(trx, skip)
	if err != nil {
		return nil, err
	}
	p.observers.NotifyOnPendingTransaction(trx)
	return ptx, nil
}

// ValidateTransaction implements model.BlockPipeline: PushTransaction's
// dry-run twin (SPEC_FULL.md §12 "validate_transaction"). It runs the
// identical speculative-apply path atop a session that is always discarded,
// so the pending pool and its session are left exactly as they were.
func (p *Pipeline) ValidateTransaction(trx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ensurePendingSession()
	child := p.undo.StartSession()
	ptx, err := p.validator.ApplyTransaction(trx, skip, p.headBlockNum, p.headBlockTime, 0)
	if discardErr := child.Discard(); discardErr != nil {
		log.Warnf("discarding validate-only session: %s", discardErr)
	}
	return ptx, err
}

// applyPendingTransaction implements spec §4.4.2 steps 2-4: open the
// pending session if needed, run apply inside a child session, and on
// success append to the pool and merge the child so its effects become
// part of the pending session's aggregate state without being made
// permanent.
func (p *Pipeline) applyPendingTransaction(trx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error) {
	if size, ok := trx.PrecomputedPackedSize(); ok && size >= maxTransactionWireSize {
		return nil, ruleerrors.ErrTransactionTooLarge
	}

	p.ensurePendingSession()
	child := p.undo.StartSession()

	ptx, err := p.validator.ApplyTransaction(trx, skip, p.headBlockNum, p.headBlockTime, 0)
	if err != nil {
		if discardErr := child.Discard(); discardErr != nil {
			log.Warnf("discarding failed pending-transaction session: %s", discardErr)
		}
		return nil, err
	}

	p.pending.Append(ptx)
	p.observers.NotifyChangedObjects(child.ChangedRefs())
	if err := child.Merge(); err != nil {
		return nil, err
	}
	return ptx, nil
}

// rebuildPending re-establishes the pending pool atop whatever head resulted
// from a push_block or pop_block call (spec §9 "pending pool save/restore
// around push_block"). Each pooled transaction is re-applied from scratch;
// one that's now a duplicate (because it landed in the block just applied)
// or otherwise no longer valid is dropped, exactly matching scenario 5's
// "pool contains exactly the other, re-validated against the new head".
func (p *Pipeline) rebuildPending() {
	trxs := p.pending.Transactions()
	p.pending.Clear()
	p.pendingSession = nil

	for _, ptx := range trxs {
		if _, err := p.applyPendingTransaction(ptx.Transaction, externalapi.SkipNothing); err != nil {
			log.Debugf("dropping pending transaction on rebuild: %s", err)
		}
	}

	p.reportPoolSize()
}

// reportPoolSize tells an observer that tracks the pending pool's absolute
// size what it now is, correcting whatever drift NotifyOnPendingTransaction's
// per-push increments accumulated once a rebuild drops or re-admits entries.
// The same optional-interface type assertion PopBlock uses for
// blocks_popped, rather than growing model.Observers past its three required
// signals (spec §6).
func (p *Pipeline) reportPoolSize() {
	if sizer, ok := p.observers.(interface{ ObservePendingPoolSize(int) }); ok {
		sizer.ObservePendingPoolSize(p.pending.Len())
	}
}
