package blockpipeline

import (
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/processes/precompute"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
)

// applyBlock implements _apply_block (spec §4.4.5). It runs entirely inside
// the caller's undo session: on any error, the caller's session discards and
// everything this function did - block-summary write, per-transaction
// object-db mutations, operation-history entries - unwinds with it. It never
// mutates the pipeline's own head bookkeeping; the caller advances
// headBlockNum/headBlockID/headBlockTime only once the enclosing session has
// committed.
func (p *Pipeline) applyBlock(block *externalapi.Block, skip externalapi.SkipFlags) error {
	p.history.Clear()

	if err := p.checkSizeAndMerkle(block, skip); err != nil {
		return err
	}
	if err := p.validateBlockHeader(block, skip); err != nil {
		return err
	}

	blockNum := block.Number()
	maintenanceNeeded := !p.nextMaintenanceTime.After(block.Timestamp)

	for i, trx := range block.Transactions {
		child := p.undo.StartSession()
		if _, err := p.validator.ApplyTransaction(trx, skip, p.headBlockNum, p.headBlockTime, uint32(i)); err != nil {
			_ = child.Discard()
			return err
		}
		p.observers.NotifyChangedObjects(child.ChangedRefs())
		if err := child.Merge(); err != nil {
			return err
		}
	}

	// Dynamic-global bookkeeping (missed-slot counters, running averages,
	// the signing witness's last-block record, last-irreversible
	// advancement) belongs to the evaluator/global-object subsystem this
	// module consumes rather than produces (spec §1 "Operation evaluators
	// ... out of scope").

	if maintenanceNeeded {
		p.runMaintenance(block)
	}

	id, ok := block.PrecomputedID()
	if !ok {
		return ruleerrors.ErrWrongPrevious
	}
	p.summaries.write(blockNum, id.Prefix())

	// Clearing expired transactions/proposals/orders and feed-expiration
	// updates are pending-pool and evaluator-state concerns respectively;
	// the pending pool's own expiration handling lives in PushTransaction's
	// dedup window (spec §3 "Dedup invariant") rather than here, and
	// proposal/order/feed state is out of scope.

	p.observers.NotifyAppliedBlock(block)
	p.history.Clear()
	return nil
}

// checkSizeAndMerkle implements spec §4.4.5 step 2.
func (p *Pipeline) checkSizeAndMerkle(block *externalapi.Block, skip externalapi.SkipFlags) error {
	if !skip.Has(externalapi.SkipBlockSizeCheck) {
		packed, ok := block.PrecomputedPackedSize()
		if !ok {
			return ruleerrors.ErrBlockTooLarge
		}
		if packed > p.params.MaxBlockSize {
			return ruleerrors.ErrBlockTooLarge
		}
	}
	if !skip.Has(externalapi.SkipMerkleCheck) {
		recomputed, err := precompute.MerkleRoot(block.Transactions)
		if err != nil {
			return err
		}
		if recomputed != block.TransactionMerkleRoot {
			return ruleerrors.ErrBadMerkleRoot
		}
	}
	return nil
}

// validateBlockHeader implements spec §4.4.5 step 3.
func (p *Pipeline) validateBlockHeader(block *externalapi.Block, skip externalapi.SkipFlags) error {
	if p.headBlockNum != 0 {
		if block.Previous != p.headBlockID {
			return ruleerrors.ErrWrongPrevious
		}
		if !block.Timestamp.After(p.headBlockTime) {
			return ruleerrors.ErrTimestampNotIncreasing
		}
	}

	if !skip.Has(externalapi.SkipWitnessScheduleCheck) && p.scheduler != nil {
		slot := p.scheduler.SlotAt(block.Timestamp)
		if slot == 0 {
			return ruleerrors.ErrZeroSlot
		}
		scheduled, err := p.scheduler.ScheduledWitness(block.Timestamp)
		if err != nil {
			return err
		}
		if scheduled != block.Producer {
			return ruleerrors.ErrWrongScheduledProducer
		}
	}

	if !skip.Has(externalapi.SkipWitnessSignature) {
		if err := p.checkProducerSignature(block); err != nil {
			return err
		}
	}

	return nil
}

// checkProducerSignature verifies block.ProducerSignature against the
// header digest (spec §4.4.5 step 4) using the producer's currently
// recorded signing key rather than any key embedded in the block itself,
// so a stale or forged key can't self-authenticate.
func (p *Pipeline) checkProducerSignature(block *externalapi.Block) error {
	if p.verifier == nil || p.scheduler == nil {
		return nil
	}
	key, err := p.scheduler.SigningKey(block.Producer)
	if err != nil {
		return err
	}
	digest, err := precompute.BlockSignee(block)
	if err != nil {
		return err
	}
	ok, err := p.verifier.Verify(digest, block.ProducerSignature, key)
	if err != nil {
		return ruleerrors.NewErrSignatureVerificationFailed(err)
	}
	if !ok {
		return ruleerrors.NewErrSignatureVerificationFailed(nil)
	}
	return nil
}

// runMaintenance advances the next maintenance tick. Witness-schedule
// recomputation and the rest of maintenance's bookkeeping are evaluator/
// global-object concerns out of scope (spec §1); this pipeline only owns the
// clock that decides *when* maintenance runs, per spec §4.4.5 step 8's
// maintenance_needed test.
func (p *Pipeline) runMaintenance(block *externalapi.Block) {
	log.Debugf("maintenance tick at block %d (%s)", block.Number(), block.Timestamp)
	p.nextMaintenanceTime = block.Timestamp.Add(p.params.MaintenanceInterval)
}
