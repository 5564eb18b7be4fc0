package consensus

import (
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

// Consensus is the block processing core's full operation surface: it is
// exactly model.BlockPipeline, exposed as its own named interface the way
// the teacher's Consensus wraps model.BlockProcessor/model.ConsensusStateManager
// behind a single facade a caller depends on instead of the collaborator
// managers directly.
type Consensus interface {
	model.BlockPipeline
}

// consensus is the concrete Consensus: a thin struct that forwards every
// call straight to its block pipeline, mirroring how the teacher's own
// consensus struct forwards to blockProcessor/consensusStateManager without
// adding any logic of its own.
type consensus struct {
	pipeline model.BlockPipeline
}

var _ Consensus = (*consensus)(nil)

// PushBlock forwards to the block pipeline.
func (c *consensus) PushBlock(block *externalapi.Block, skip externalapi.SkipFlags) (bool, error) {
	return c.pipeline.PushBlock(block, skip)
}

// PushTransaction forwards to the block pipeline.
func (c *consensus) PushTransaction(trx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error) {
	return c.pipeline.PushTransaction(trx, skip)
}

// ValidateTransaction forwards to the block pipeline.
func (c *consensus) ValidateTransaction(trx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error) {
	return c.pipeline.ValidateTransaction(trx, skip)
}

// PushProposal forwards to the block pipeline.
func (c *consensus) PushProposal(proposalTrx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error) {
	return c.pipeline.PushProposal(proposalTrx, skip)
}

// GenerateBlock forwards to the block pipeline.
func (c *consensus) GenerateBlock(when time.Time, producer externalapi.ProducerID, signer model.Signer, skip externalapi.SkipFlags) (*externalapi.Block, error) {
	return c.pipeline.GenerateBlock(when, producer, signer, skip)
}

// PopBlock forwards to the block pipeline.
func (c *consensus) PopBlock() (*externalapi.Block, error) {
	return c.pipeline.PopBlock()
}

// HeadBlockNum forwards to the block pipeline.
func (c *consensus) HeadBlockNum() uint32 {
	return c.pipeline.HeadBlockNum()
}

// HeadBlockID forwards to the block pipeline.
func (c *consensus) HeadBlockID() externalapi.BlockID {
	return c.pipeline.HeadBlockID()
}

// SetCheckpoints forwards to the block pipeline.
func (c *consensus) SetCheckpoints(checkpoints []model.Checkpoint) {
	c.pipeline.SetCheckpoints(checkpoints)
}

// BeforeLastCheckpoint forwards to the block pipeline.
func (c *consensus) BeforeLastCheckpoint(blockNum uint32) bool {
	return c.pipeline.BeforeLastCheckpoint(blockNum)
}

// RecentTransaction forwards to the block pipeline.
func (c *consensus) RecentTransaction(id externalapi.TransactionID) (*externalapi.Transaction, bool) {
	return c.pipeline.RecentTransaction(id)
}

// BlockIDsOnFork forwards to the block pipeline.
func (c *consensus) BlockIDsOnFork(headOfFork externalapi.BlockID) ([]externalapi.BlockID, error) {
	return c.pipeline.BlockIDsOnFork(headOfFork)
}
