package model

import (
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

// WitnessScheduler answers the three witness-schedule questions the pipeline
// needs without owning the schedule itself (spec §1 "Witness scheduling
// algorithm ... out of scope").
type WitnessScheduler interface {
	// ScheduledWitness returns the producer scheduled for the slot
	// containing when.
	ScheduledWitness(when time.Time) (externalapi.ProducerID, error)

	// SlotAt returns the 1-based slot number containing when, or 0 if when
	// falls before the first slot after the head (spec §4.4.3
	// "slot_at(when)").
	SlotAt(when time.Time) uint64

	// SigningKey returns the public key currently on record for producer,
	// used to reject generate_block calls signed with a stale key (spec
	// §4.4.3 "the supplied key must match the producer's recorded signing
	// key").
	SigningKey(producer externalapi.ProducerID) ([]byte, error)
}

// Checkpoint is a single (block number, required id) pin (spec §4.4.6).
type Checkpoint struct {
	BlockNum uint32
	ID       externalapi.BlockID
}

// BlockPipeline orchestrates push_block, push_transaction, generate_block,
// and pop_block atop the Undo Stack, Fork Database, Block Store, and
// Transaction Validator (spec §4.4).
type BlockPipeline interface {
	// PushBlock hands block to the Fork Database and, if it becomes (or
	// extends) the best head, applies it - taking the fast path when it
	// extends the current head directly, or a fork switch (with
	// compensating restore on failure) otherwise. Returns whether applying
	// block switched the head onto a different fork than it was on before
	// the call - false for a direct linear extension, even though the head
	// still advances (spec §4.4.1, spec §8 testable scenario 1).
	PushBlock(block *externalapi.Block, skip externalapi.SkipFlags) (bool, error)

	// PushTransaction speculatively applies trx atop the pending session,
	// appends it to the pending pool on success, and notifies observers
	// (spec §4.4.2).
	PushTransaction(trx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error)

	// ValidateTransaction is PushTransaction's dry-run twin: it runs the
	// identical speculative-apply path but always discards, returning
	// whether trx would be accepted without mutating the pending pool
	// (SPEC_FULL.md §12 "validate_transaction").
	ValidateTransaction(trx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error)

	// PushProposal replays proposalTrx as an atomic sub-session nested
	// inside the pending session, guarded against
	// nesting deeper than 2 * active_witness_count (spec §9 "Proposal
	// apply", §7 "Proposal-nesting overflow").
	PushProposal(proposalTrx *externalapi.Transaction, skip externalapi.SkipFlags) (*externalapi.ProcessedTransaction, error)

	// GenerateBlock drains the pending pool into a new block addressed to
	// producer's slot at when, respecting the configured max block size
	// (spec §4.4.3).
	GenerateBlock(when time.Time, producer externalapi.ProducerID, signer Signer, skip externalapi.SkipFlags) (*externalapi.Block, error)

	// PopBlock undoes exactly one committed block, returning its
	// transactions so a caller can re-admit them to the pending pool (spec
	// §4.4.4).
	PopBlock() (*externalapi.Block, error)

	// HeadBlockNum returns the block number of the current head, or 0
	// before genesis.
	HeadBlockNum() uint32

	// HeadBlockID returns the id of the current head block.
	HeadBlockID() externalapi.BlockID

	// SetCheckpoints replaces the pinned checkpoint set (spec §4.4.6).
	SetCheckpoints(checkpoints []Checkpoint)

	// BeforeLastCheckpoint reports whether blockNum is at or below the
	// highest configured checkpoint (SPEC_FULL.md §12
	// "before_last_checkpoint").
	BeforeLastCheckpoint(blockNum uint32) bool

	// RecentTransaction returns the full transaction behind id if it is
	// still inside the transaction validator's dedup window (SPEC_FULL.md
	// §12 "get_recent_transaction").
	RecentTransaction(id externalapi.TransactionID) (*externalapi.Transaction, bool)

	// BlockIDsOnFork returns the ids from headOfFork's common ancestor with
	// the current head block (exclusive) up to and including headOfFork,
	// ancestor-first (SPEC_FULL.md §12 "get_block_ids_on_fork").
	BlockIDsOnFork(headOfFork externalapi.BlockID) ([]externalapi.BlockID, error)
}
