// Package blockpipeline implements model.BlockPipeline: push_block,
// push_transaction, generate_block, pop_block and their supporting
// operations (spec §4.4), wired atop the Undo Stack, Fork Database, Block
// Store, Transaction Validator and Precomputer the way
// kaspanet-kaspad/domain/consensus/processes/blockprocessor/blockprocessor.go
// wires its own collaborators behind a flat constructor - but the actual
// state machine (fast path vs fork switch, pending-session bookkeeping,
// checkpoint short-circuiting) is grounded on
// original_source/libraries/chain/db_block.cpp's push_block/_push_block,
// push_transaction/_push_transaction, generate_block/_generate_block,
// pop_block and _apply_block.
package blockpipeline

import (
	"sync"
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/datastructures/objectdatabase"
	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/dagconfig"
	"github.com/discretemind/graphene-core/infrastructure/logger"
)

var log = mustLogger()

func mustLogger() *logger.Logger {
	l, err := logger.Get(logger.SubsystemTags.PIPL)
	if err != nil {
		panic(err)
	}
	return l
}

// Pipeline is the concrete model.BlockPipeline. All exported methods except
// BlockSummaryPrefix (which the validator calls back into while mu is
// already held) take mu, realizing spec §5's single-logical-writer model as
// a plain mutex: read
// paths (HeadBlockNum, HeadBlockID) take it too, since the spec allows
// concurrent reads only between writer calls, not the finer-grained RWMutex
// package objectdatabase and forkdatabase use internally.
type Pipeline struct {
	mu sync.Mutex

	params      *dagconfig.Params
	db          *objectdatabase.Database
	undo        model.UndoStack
	forkDB      model.ForkDatabase
	blocks      model.BlockStore
	pending     model.PendingPool
	history     model.OperationHistoryStore
	validator   model.TransactionValidator
	precomputer model.Precomputer
	scheduler   model.WitnessScheduler
	observers   model.Observers
	verifier    model.Verifier
	summaries   *blockSummaryRing

	checkpoints map[uint32]externalapi.BlockID

	headBlockNum  uint32
	headBlockID   externalapi.BlockID
	headBlockTime time.Time

	// pendingSession is the session open atop the current head that holds
	// every speculatively-applied pooled transaction's effects (spec §3
	// "Pending invariant"). Nil when no pending work has been done yet.
	pendingSession model.UndoSession

	nextMaintenanceTime time.Time
}

var _ model.BlockPipeline = (*Pipeline)(nil)

// Collaborators bundles Pipeline's dependencies (grounded on
// blockprocessor.Dependencies in the teacher, which the teacher's own
// factory.go builds the same way before passing it to a New(...) call).
type Collaborators struct {
	Params      *dagconfig.Params
	DB          *objectdatabase.Database
	UndoStack   model.UndoStack
	ForkDB      model.ForkDatabase
	Blocks      model.BlockStore
	Pending     model.PendingPool
	History     model.OperationHistoryStore
	Validator   model.TransactionValidator
	Precomputer model.Precomputer
	Scheduler   model.WitnessScheduler
	Observers   model.Observers
	Verifier    model.Verifier
}

// New wires a Pipeline over the given collaborators, with no head yet (the
// state before genesis).
func New(c Collaborators) *Pipeline {
	return &Pipeline{
		params:              c.Params,
		db:                  c.DB,
		undo:                c.UndoStack,
		forkDB:              c.ForkDB,
		blocks:              c.Blocks,
		pending:             c.Pending,
		history:             c.History,
		validator:           c.Validator,
		precomputer:         c.Precomputer,
		scheduler:           c.Scheduler,
		observers:           c.Observers,
		verifier:            c.Verifier,
		summaries:           newBlockSummaryRing(c.DB),
		checkpoints:         make(map[uint32]externalapi.BlockID),
		nextMaintenanceTime: time.Time{},
	}
}

// BlockSummaryPrefix implements model.TaposResolver by delegating to the
// pipeline's own block-summary ring, so a Pipeline can be wired directly as
// the TransactionValidator's TaposResolver.
func (p *Pipeline) BlockSummaryPrefix(blockNum uint32) (uint32, bool) {
	return p.summaries.prefix(blockNum)
}

// HeadBlockNum implements model.BlockPipeline.
func (p *Pipeline) HeadBlockNum() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headBlockNum
}

// HeadBlockID implements model.BlockPipeline.
func (p *Pipeline) HeadBlockID() externalapi.BlockID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headBlockID
}

// SetCheckpoints implements model.BlockPipeline (spec §4.4.6).
func (p *Pipeline) SetCheckpoints(checkpoints []model.Checkpoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkpoints = make(map[uint32]externalapi.BlockID, len(checkpoints))
	for _, c := range checkpoints {
		p.checkpoints[c.BlockNum] = c.ID
	}
}

// beforeLastCheckpoint reports whether blockNum is at or below the highest
// configured checkpoint (spec.md §12 "before_last_checkpoint").
func (p *Pipeline) beforeLastCheckpoint(blockNum uint32) bool {
	var highest uint32
	for n := range p.checkpoints {
		if n > highest {
			highest = n
		}
	}
	return highest > 0 && blockNum <= highest
}

// BeforeLastCheckpoint implements model.BlockPipeline.
func (p *Pipeline) BeforeLastCheckpoint(blockNum uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.beforeLastCheckpoint(blockNum)
}

// RecentTransaction implements model.BlockPipeline by delegating to the
// transaction validator's own dedup-window index.
func (p *Pipeline) RecentTransaction(id externalapi.TransactionID) (*externalapi.Transaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validator.RecentTransaction(id)
}

// BlockIDsOnFork implements model.BlockPipeline (spec.md §12
// "get_block_ids_on_fork"). The branch is measured against the pipeline's
// own head block, not the fork database's head (which can be a stale
// sibling of equal height), and is returned ancestor-first.
func (p *Pipeline) BlockIDsOnFork(headOfFork externalapi.BlockID) ([]externalapi.BlockID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	forkBranch, _, err := p.forkDB.FetchBranchFrom(headOfFork, p.headBlockID)
	if err != nil {
		return nil, err
	}
	ids := make([]externalapi.BlockID, 0, len(forkBranch))
	for i := len(forkBranch) - 1; i >= 0; i-- {
		ids = append(ids, forkBranch[i].ID)
	}
	return ids, nil
}

// effectiveSkip applies checkpoint short-circuiting to the caller-supplied
// skip flags (spec §4.4.6 "Blocks at or below the highest checkpoint apply
// with all skip flags set").
func (p *Pipeline) effectiveSkip(blockNum uint32, skip externalapi.SkipFlags) externalapi.SkipFlags {
	if p.beforeLastCheckpoint(blockNum) {
		return externalapi.SkipAll
	}
	return skip
}

// checkCheckpoint enforces a pinned (blockNum, id) pair, if one is
// configured for blockNum (spec §4.4.6).
func (p *Pipeline) checkCheckpoint(blockNum uint32, id externalapi.BlockID) error {
	want, ok := p.checkpoints[blockNum]
	if !ok {
		return nil
	}
	if want != id {
		return ruleErrCheckpointMismatch(blockNum, want, id)
	}
	return nil
}

// discardPendingSession drops the pending session, if any, back to the last
// committed (head) state (spec §4.4.3 step 1 "Drop the pending session").
func (p *Pipeline) discardPendingSession() {
	if p.pendingSession != nil {
		if err := p.pendingSession.Discard(); err != nil {
			log.Warnf("discarding pending session: %s", err)
		}
		p.pendingSession = nil
	}
}

// ensurePendingSession opens the pending session atop head if one isn't
// already open (spec §4.4.2 step 2).
func (p *Pipeline) ensurePendingSession() model.UndoSession {
	if p.pendingSession == nil {
		p.pendingSession = p.undo.StartSession()
	}
	return p.pendingSession
}
