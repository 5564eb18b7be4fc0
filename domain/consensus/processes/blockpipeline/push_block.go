package blockpipeline

import (
	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
)

// PushBlock implements model.BlockPipeline (spec §4.4.1). It wraps
// pushBlockLocked in the pending-pool save/restore scope db_block.cpp's
// push_block applies: the pending session is dropped for the call's
// duration and rebuilt from whatever remains in the pool afterwards,
// re-validated against whatever head resulted (spec §9 "pending pool
// save/restore around push_block").
func (p *Pipeline) PushBlock(block *externalapi.Block, skip externalapi.SkipFlags) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.discardPendingSession()
	switchedForks, err := p.pushBlockLocked(block, p.effectiveSkip(block.Number(), skip))
	p.rebuildPending()
	return switchedForks, err
}

// pushBlockLocked implements _push_block (spec §4.4.1, steps 1-4). Callers
// hold p.mu.
func (p *Pipeline) pushBlockLocked(block *externalapi.Block, skip externalapi.SkipFlags) (bool, error) {
	id, ok := block.PrecomputedID()
	if !ok {
		return false, ruleerrors.ErrWrongPrevious
	}
	if err := p.checkCheckpoint(block.Number(), id); err != nil {
		return false, err
	}

	newHead, err := p.forkDB.PushBlock(block)
	if err != nil {
		return false, err
	}

	if p.headBlockNum != 0 && newHead.ID == p.headBlockID {
		return false, nil
	}

	switch {
	case p.headBlockNum == 0 || newHead.Previous == p.headBlockID:
		if err := p.applyFastPath(newHead.Block, skip); err != nil {
			return false, err
		}
		return false, nil

	case newHead.Height > p.headBlockNum:
		if err := p.applyForkSwitch(newHead, skip); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, nil
	}
}

// applyFastPath opens a session atop head, applies block, persists it and
// commits - used both for the direct-extension fast path (spec §4.4.1 step
// 2) and to replay each block of a branch during a fork switch (step 3c).
// On failure it discards the session and removes the offending block from
// the Fork DB.
func (p *Pipeline) applyFastPath(block *externalapi.Block, skip externalapi.SkipFlags) error {
	id, _ := block.PrecomputedID()
	session := p.undo.StartSession()

	if err := p.applyBlock(block, skip); err != nil {
		if discardErr := session.Discard(); discardErr != nil {
			log.Warnf("discarding failed apply session: %s", discardErr)
		}
		p.forkDB.Remove(id)
		return err
	}

	if err := p.blocks.Store(id, block); err != nil {
		if discardErr := session.Discard(); discardErr != nil {
			log.Warnf("discarding failed apply session: %s", discardErr)
		}
		p.forkDB.Remove(id)
		return err
	}

	if err := session.Commit(); err != nil {
		return err
	}

	p.headBlockNum = block.Number()
	p.headBlockID = id
	p.headBlockTime = block.Timestamp
	return nil
}

// applyForkSwitch implements spec §4.4.1 step 3: pop back to the common
// ancestor, replay the new branch ancestor-forward, and on failure restore
// the old branch exactly (step 3d) before re-raising the original error.
func (p *Pipeline) applyForkSwitch(newHead *model.ForkItem, skip externalapi.SkipFlags) error {
	newTipToAncestor, oldTipToAncestor, err := p.forkDB.FetchBranchFrom(newHead.ID, p.headBlockID)
	if err != nil {
		return err
	}
	if len(oldTipToAncestor) == 0 {
		return ruleerrors.ErrForkAncestorMismatch
	}
	oldHeadItem := oldTipToAncestor[0]
	newForward := reverseForkItems(newTipToAncestor)
	oldForward := reverseForkItems(oldTipToAncestor)

	for range oldTipToAncestor {
		if _, err := p.popBlockLocked(); err != nil {
			return err
		}
	}

	applied := 0
	var applyErr error
	for _, item := range newForward {
		if err := p.applyFastPath(item.Block, skip); err != nil {
			applyErr = err
			break
		}
		applied++
	}
	if applyErr == nil {
		return nil
	}

	for _, item := range newForward[applied:] {
		p.forkDB.Remove(item.ID)
	}
	p.forkDB.SetHead(oldHeadItem)

	for i := 0; i < applied; i++ {
		if _, err := p.popBlockLocked(); err != nil {
			return ruleerrors.NewErrForkSwitchRestoreFailed(applyErr, err)
		}
	}

	for _, item := range oldForward {
		if err := p.applyFastPath(item.Block, externalapi.SkipNothing); err != nil {
			return ruleerrors.NewErrForkSwitchRestoreFailed(applyErr, err)
		}
	}

	return applyErr
}

func reverseForkItems(items []*model.ForkItem) []*model.ForkItem {
	out := make([]*model.ForkItem, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}
