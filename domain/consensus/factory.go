package consensus

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/discretemind/graphene-core/domain/consensus/datastructures/blockstore"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/forkdatabase"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/objectdatabase"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/operationhistory"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/pendingpool"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/undostack"
	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/processes/blockpipeline"
	"github.com/discretemind/graphene-core/domain/consensus/processes/precompute"
	"github.com/discretemind/graphene-core/domain/consensus/processes/transactionvalidator"
	"github.com/discretemind/graphene-core/domain/dagconfig"
)

// Dependencies bundles the collaborators SPEC_FULL.md marks out of scope
// (witness scheduling, account authorities, operation evaluation) that a
// caller must supply itself - the block processing core only ever calls
// into them, it never constructs them (spec §1).
type Dependencies struct {
	Scheduler  model.WitnessScheduler
	Authority  model.AuthorityResolver
	Evaluators model.OperationEvaluatorRegistry
	Observers  model.Observers
	Verifier   model.Verifier

	// PrecomputeWorkers sizes the precomputer's worker pool; 0 (or less)
	// makes NewConsensus use runtime.GOMAXPROCS(0) instead.
	PrecomputeWorkers int
}

// Factory instantiates new Consensuses, mirroring the teacher's own
// Factory/factory split so callers depend on the interface rather than the
// wiring.
type Factory interface {
	NewConsensus(dagParams *dagconfig.Params, blockStorePath string, deps Dependencies) (Consensus, error)
}

type factory struct{}

// NewFactory creates a new Consensus factory.
func NewFactory() Factory {
	return &factory{}
}

// taposAdapter breaks the construction cycle between Pipeline and
// TransactionValidator: the validator needs a model.TaposResolver at
// construction time, but the only implementation of that interface is the
// Pipeline itself (BlockSummaryPrefix delegates to its own block-summary
// ring), and the Pipeline in turn needs the already-constructed validator.
// The adapter is handed to the validator first with pipeline left nil, then
// pointed at the real Pipeline once it exists - safe because
// BlockSummaryPrefix is only ever called later, while applying a
// transaction, never during either constructor.
type taposAdapter struct {
	pipeline model.TaposResolver
}

func (a *taposAdapter) BlockSummaryPrefix(blockNum uint32) (uint32, bool) {
	return a.pipeline.BlockSummaryPrefix(blockNum)
}

// NewConsensus wires a Consensus over dagParams, flat in the style of
// kaspanet-kaspad/domain/consensus/factory.go's NewConsensus: build every
// data structure first, then the processes that sit on top of them, then
// the block pipeline that ties them together.
func (f *factory) NewConsensus(dagParams *dagconfig.Params, blockStorePath string, deps Dependencies) (Consensus, error) {
	if deps.Scheduler == nil {
		return nil, errors.New("consensus: a WitnessScheduler is required")
	}
	if deps.Observers == nil {
		deps.Observers = noopObservers{}
	}
	if deps.Evaluators == nil {
		deps.Evaluators = noopEvaluators{}
	}
	if deps.Authority == nil {
		deps.Authority = noopAuthority{}
	}

	db := objectdatabase.New()
	undo := undostack.New(db, dagParams.UndoHistorySize)
	forkDB := forkdatabase.New(deps.Scheduler)
	history := operationhistory.New()
	pending := pendingpool.New()

	blocks, err := blockstore.Open(blockStorePath)
	if err != nil {
		return nil, errors.Wrap(err, "consensus: opening block store")
	}

	tapos := &taposAdapter{}
	validator := transactionvalidator.New(dagParams, db, history, deps.Evaluators, deps.Authority, tapos)

	workers := deps.PrecomputeWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	precomputer := precompute.New(workers, deps.Verifier)

	pipeline := blockpipeline.New(blockpipeline.Collaborators{
		Params:      dagParams,
		DB:          db,
		UndoStack:   undo,
		ForkDB:      forkDB,
		Blocks:      blocks,
		Pending:     pending,
		History:     history,
		Validator:   validator,
		Precomputer: precomputer,
		Scheduler:   deps.Scheduler,
		Observers:   deps.Observers,
		Verifier:    deps.Verifier,
	})
	tapos.pipeline = pipeline

	log.Infof("consensus initialized, block store at %s", blockStorePath)
	return &consensus{pipeline: pipeline}, nil
}

// noopObservers is the default model.Observers a caller who doesn't care
// about the emitted signals gets, so Dependencies.Observers is optional.
type noopObservers struct{}

func (noopObservers) NotifyAppliedBlock(*externalapi.Block)               {}
func (noopObservers) NotifyOnPendingTransaction(*externalapi.Transaction) {}
func (noopObservers) NotifyChangedObjects([]model.ObjectRef)              {}

// noopEvaluators is the default model.OperationEvaluatorRegistry: every tag
// resolves to a no-op evaluator, so a caller that hasn't wired the (out of
// scope) evaluator subsystem yet still gets a working block pipeline for
// its own transactions to flow through.
type noopEvaluators struct{}

func (noopEvaluators) Evaluator(int) model.OperationEvaluator { return noopEvaluator{} }

type noopEvaluator struct{}

func (noopEvaluator) Evaluate(_ model.ObjectDatabase, _ externalapi.Operation, _ bool) (externalapi.OperationResult, error) {
	return externalapi.OperationResult{}, nil
}

// noopAuthority is the default model.AuthorityResolver: every account
// resolves to a zero-key, zero-threshold authority, which
// transactionvalidator's weight check trivially satisfies. A caller who
// hasn't wired the (out of scope) account subsystem yet still gets a
// working block pipeline instead of a nil-interface panic on the first
// transaction carrying RequiredAuths/RequiredOwnerAuths.
type noopAuthority struct{}

func (noopAuthority) ActiveKeys(externalapi.AccountID) ([][]byte, map[externalapi.AccountID]uint32, uint32, error) {
	return nil, nil, 0, nil
}

func (noopAuthority) OwnerKeys(externalapi.AccountID) ([][]byte, map[externalapi.AccountID]uint32, uint32, error) {
	return nil, nil, 0, nil
}
