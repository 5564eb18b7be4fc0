package blockpipeline

import (
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/processes/precompute"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
)

// headerSkeleton is marshaled solely to size a not-yet-built header for the
// packing budget (spec §4.4.3 step 3): the packed size of a producer's
// signed header, plus 3 bytes slack for the transactions-length varint.
type headerSkeleton struct {
	Previous              externalapi.BlockID
	Timestamp             time.Time
	Producer              externalapi.ProducerID
	TransactionMerkleRoot externalapi.BlockID
	ProducerSignature     []byte
}

func headerPackedSize(producer externalapi.ProducerID) (int, error) {
	encoded, err := cbor.Marshal(headerSkeleton{Producer: producer})
	if err != nil {
		return 0, err
	}
	return len(encoded) + 3, nil
}

// GenerateBlock implements model.BlockPipeline (spec §4.4.3).
func (p *Pipeline) GenerateBlock(when time.Time, producer externalapi.ProducerID, signer model.Signer, skip externalapi.SkipFlags) (*externalapi.Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	slot := p.scheduler.SlotAt(when)
	if slot == 0 {
		return nil, ruleerrors.ErrZeroSlot
	}
	if !skip.Has(externalapi.SkipWitnessScheduleCheck) {
		scheduled, err := p.scheduler.ScheduledWitness(when)
		if err != nil {
			return nil, err
		}
		if scheduled != producer {
			return nil, ruleerrors.ErrWrongScheduledProducer
		}
	}
	if !skip.Has(externalapi.SkipWitnessSignature) && p.scheduler != nil && signer == nil {
		return nil, ruleerrors.ErrBadProducerSignature
	}

	p.discardPendingSession()
	p.ensurePendingSession()

	budget := p.params.MaxBlockSize
	used, err := headerPackedSize(producer)
	if err != nil {
		return nil, err
	}

	pooled := p.pending.Transactions()
	included := make([]*externalapi.Transaction, 0, len(pooled))
	postponed := 0

	for _, ptx := range pooled {
		trx := ptx.Transaction
		tentative := used + estimatePackedSize(trx)
		if tentative > budget {
			postponed++
			continue
		}

		grandchild := p.undo.StartSession()
		applied, err := p.validator.ApplyTransaction(trx, skip, p.headBlockNum, p.headBlockTime, uint32(len(included)))
		if err != nil {
			if discardErr := grandchild.Discard(); discardErr != nil {
				log.Warnf("discarding failed candidate-block session: %s", discardErr)
			}
			log.Debugf("generate_block: dropping transaction from candidate block: %s", err)
			continue
		}

		newSize := used + applied.PackedSize()
		if newSize > budget {
			if discardErr := grandchild.Discard(); discardErr != nil {
				log.Warnf("discarding postponed candidate-block session: %s", discardErr)
			}
			postponed++
			continue
		}

		p.observers.NotifyChangedObjects(grandchild.ChangedRefs())
		if err := grandchild.Merge(); err != nil {
			return nil, err
		}
		used = newSize
		included = append(included, trx)
	}

	if postponed > 0 {
		log.Infof("generate_block: postponed %d oversized transaction(s)", postponed)
	}

	p.discardPendingSession()

	block := &externalapi.Block{
		Previous:     p.headBlockID,
		Timestamp:    when,
		Producer:     producer,
		Transactions: included,
	}

	if err := p.precomputer.PrecomputeBlock(block); err != nil {
		return nil, err
	}

	if !skip.Has(externalapi.SkipWitnessSignature) && signer != nil {
		digest, err := precompute.BlockSignee(block)
		if err != nil {
			return nil, err
		}
		sig, err := signer.Sign(digest)
		if err != nil {
			return nil, err
		}
		block.ProducerSignature = sig
		if err := p.precomputer.PrecomputeBlock(block); err != nil {
			return nil, err
		}
	}

	pushSkip := p.effectiveSkip(block.Number(), skip.With(externalapi.SkipTransactionSignatures))
	if _, err := p.pushBlockLocked(block, pushSkip); err != nil {
		return nil, err
	}
	p.rebuildPending()
	return block, nil
}

func estimatePackedSize(trx *externalapi.Transaction) int {
	if size, ok := trx.PrecomputedPackedSize(); ok {
		return size
	}
	return (&externalapi.ProcessedTransaction{Transaction: trx}).PackedSize()
}
