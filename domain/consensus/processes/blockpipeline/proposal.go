package blockpipeline

import (
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
)

// PushProposal implements model.BlockPipeline (spec §9 "Proposal apply").
// proposalTrx is replayed as an atomic sub-session nested inside the
// pending session (opened first if none is open), guarded against nesting
// deeper than 2 * active_witness_count (spec §7 "Proposal-nesting
// overflow"). PushProposal takes mu, so it never runs during block
// application.
func (p *Pipeline) PushProposal(proposalTrx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	limit := 2 * int(p.params.ActiveWitnessCount)
	if p.undo.Depth() >= limit {
		return nil, ruleerrors.ErrProposalNestingExceeded
	}
	if p.undo.MaxSize() < limit {
		// Keep the retention cap ahead of legitimate nesting depth so the
		// undo stack never force-commits an ancestor of a still-open
		// proposal chain out from under it.
		p.undo.SetMaxSize(limit)
	}

	historyLenBefore := len(p.history.Entries())
	preCutover := p.headBlockTime.Before(p.params.ProposalHistoryTruncationTime)

	p.ensurePendingSession()
	session := p.undo.StartSession()
	ptx, err := p.validator.ApplyTransaction(proposalTrx, skip, p.headBlockNum, p.headBlockTime, 0)
	if err != nil {
		if discardErr := session.Discard(); discardErr != nil {
			log.Warnf("discarding failed proposal session: %s", discardErr)
		}
		if preCutover {
			p.history.Reset(historyLenBefore)
		} else {
			p.history.Truncate(historyLenBefore)
		}
		return nil, err
	}

	p.observers.NotifyChangedObjects(session.ChangedRefs())
	if err := session.Merge(); err != nil {
		return nil, err
	}
	return ptx, nil
}
