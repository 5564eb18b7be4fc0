package blockpipeline

import (
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
)

// PopBlock implements model.BlockPipeline (spec §4.4.4).
func (p *Pipeline) PopBlock() (*externalapi.Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.discardPendingSession()
	block, err := p.popBlockLocked()
	if err == nil {
		if popper, ok := p.observers.(interface{ ObserveBlockPopped() }); ok {
			popper.ObserveBlockPopped()
		}
	}
	p.rebuildPending()
	return block, err
}

// popBlockLocked implements pop_block once the caller has reset the pending
// session: steer the Fork DB's head back one block if it was tracking the ledger head,
// undo the most recently committed session, and return the popped block so
// the caller can re-admit its transactions to the pending pool. Callers
// hold p.mu.
func (p *Pipeline) popBlockLocked() (*externalapi.Block, error) {
	if p.headBlockNum == 0 {
		return nil, ruleerrors.ErrEmptyForkDatabase
	}

	poppedID := p.headBlockID
	block, err := p.blocks.FetchOptional(poppedID)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, ruleerrors.ErrUnknownBlock
	}

	if forkHead := p.forkDB.Head(); forkHead != nil && forkHead.ID == poppedID {
		if parent := p.forkDB.FetchBlock(block.Previous); parent != nil {
			p.forkDB.SetHead(parent)
		}
	}

	if err := p.undo.UndoLastCommitted(); err != nil {
		return nil, err
	}

	if p.headBlockNum == 1 {
		p.headBlockNum, p.headBlockID, p.headBlockTime = 0, externalapi.BlockID{}, time.Time{}
		return block, nil
	}

	// The parent's height and id follow directly from the block just
	// popped (its Number() is one past its previous block's, spec §3), so
	// they never depend on the Fork DB still tracking the parent. Its
	// timestamp does: prefer the Fork DB's copy when present, falling back
	// to the Block Store (which never prunes) rather than leaving head
	// metadata pointing at the popped block when the parent has aged out
	// of the fork window.
	parentNum := p.headBlockNum - 1
	parentID := block.Previous
	var parentTime time.Time
	if parent := p.forkDB.FetchBlock(parentID); parent != nil {
		parentTime = parent.Block.Timestamp
	} else {
		parentBlock, err := p.blocks.FetchOptional(parentID)
		if err != nil {
			return nil, err
		}
		if parentBlock == nil {
			return nil, ruleerrors.ErrUnknownBlock
		}
		parentTime = parentBlock.Timestamp
	}

	p.headBlockNum = parentNum
	p.headBlockID = parentID
	p.headBlockTime = parentTime

	return block, nil
}
