package blockpipeline

import (
	"testing"
	"time"

	"github.com/discretemind/graphene-core/domain/consensus/datastructures/blockstore"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/forkdatabase"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/objectdatabase"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/operationhistory"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/pendingpool"
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/undostack"
	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/processes/precompute"
	"github.com/discretemind/graphene-core/domain/consensus/processes/transactionvalidator"
	"github.com/discretemind/graphene-core/domain/dagconfig"
)

// fakeScheduler always schedules the fixture's single producer and never
// rejects a signing key, so tests can exercise the pipeline without a real
// witness-schedule implementation (spec §1 "Witness scheduling algorithm ...
// out of scope").
type fakeScheduler struct {
	producer externalapi.ProducerID
}

func (f *fakeScheduler) ScheduledWitness(time.Time) (externalapi.ProducerID, error) {
	return f.producer, nil
}

func (f *fakeScheduler) SlotAt(time.Time) uint64 { return 1 }

func (f *fakeScheduler) SigningKey(externalapi.ProducerID) ([]byte, error) { return nil, nil }

type noopEvaluator struct{}

func (noopEvaluator) Evaluate(_ model.ObjectDatabase, _ externalapi.Operation, _ bool) (externalapi.OperationResult, error) {
	return externalapi.OperationResult{}, nil
}

type fakeRegistry struct{}

func (fakeRegistry) Evaluator(int) model.OperationEvaluator { return noopEvaluator{} }

type noopObservers struct{}

func (noopObservers) NotifyAppliedBlock(*externalapi.Block)             {}
func (noopObservers) NotifyOnPendingTransaction(*externalapi.Transaction) {}
func (noopObservers) NotifyChangedObjects([]model.ObjectRef)            {}

const testProducer externalapi.ProducerID = "producer-1"

// newFixture wires a Pipeline directly out of its fields, rather than
// through New/Collaborators, because the TransactionValidator's
// TaposResolver must be the Pipeline itself (BlockSummaryPrefix delegates to
// the pipeline's own block-summary ring) - a self-reference New's flat
// constructor can't express.
func newFixture(t *testing.T, params dagconfig.Params) (*Pipeline, *precompute.Precomputer) {
	t.Helper()

	db := objectdatabase.New()
	history := operationhistory.New()

	p := &Pipeline{
		params:      &params,
		db:          db,
		undo:        undostack.New(db, params.UndoHistorySize),
		forkDB:      forkdatabase.New(nil),
		blocks:      blockstore.NewMemoryStore(),
		pending:     pendingpool.New(),
		history:     history,
		precomputer: precompute.New(2, nil),
		scheduler:   &fakeScheduler{producer: testProducer},
		observers:   noopObservers{},
		summaries:   newBlockSummaryRing(db),
		checkpoints: make(map[uint32]externalapi.BlockID),
	}
	p.validator = transactionvalidator.New(&params, db, history, fakeRegistry{}, nil, p)
	return p, p.precomputer.(*precompute.Precomputer)
}

func newBlock(t *testing.T, pc *precompute.Precomputer, previous externalapi.BlockID, when time.Time, trxs ...*externalapi.Transaction) *externalapi.Block {
	t.Helper()
	block := &externalapi.Block{
		Previous:     previous,
		Timestamp:    when,
		Producer:     testProducer,
		Transactions: trxs,
	}
	if err := pc.PrecomputeBlock(block); err != nil {
		t.Fatalf("PrecomputeBlock: %v", err)
	}
	return block
}

func newTransaction(t *testing.T, pc *precompute.Precomputer, refBlockNum, refPrefix uint32, expiration time.Time) *externalapi.Transaction {
	t.Helper()
	trx := &externalapi.Transaction{
		RefBlockNum:    refBlockNum,
		RefBlockPrefix: refPrefix,
		Expiration:     expiration,
		Operations:     []externalapi.Operation{{Tag: 1}},
	}
	if _, err := pc.PrecomputeTransaction(trx); err != nil {
		t.Fatalf("PrecomputeTransaction: %v", err)
	}
	return trx
}

func TestPushBlockGenesisAndLinearExtension(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	switchedForks, err := p.PushBlock(genesis, externalapi.SkipNothing)
	if err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	if switchedForks {
		t.Fatalf("genesis push is a linear extension, expected no fork switch")
	}
	genesisID, _ := genesis.PrecomputedID()
	if p.HeadBlockNum() != 1 || p.HeadBlockID() != genesisID {
		t.Fatalf("head after genesis = (%d, %s), want (1, %s)", p.HeadBlockNum(), p.HeadBlockID(), genesisID)
	}

	trx := newTransaction(t, pc, 1, genesisID.Prefix(), t0.Add(30*time.Minute))
	block2 := newBlock(t, pc, genesisID, t0.Add(time.Second), trx)
	switchedForks, err = p.PushBlock(block2, externalapi.SkipNothing)
	if err != nil {
		t.Fatalf("push block2: %v", err)
	}
	if switchedForks {
		t.Fatalf("block2 push is a linear extension, expected no fork switch (spec §8 scenario 1)")
	}
	block2ID, _ := block2.PrecomputedID()
	if p.HeadBlockNum() != 2 || p.HeadBlockID() != block2ID {
		t.Fatalf("head after block2 = (%d, %s), want (2, %s)", p.HeadBlockNum(), p.HeadBlockID(), block2ID)
	}
}

func TestPushBlockAlreadyHeadIsNoop(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	block2 := newBlock(t, pc, genesisID, t0.Add(time.Second))
	if _, err := p.PushBlock(block2, externalapi.SkipNothing); err != nil {
		t.Fatalf("push block2: %v", err)
	}

	switchedForks, err := p.PushBlock(genesis, externalapi.SkipNothing)
	if err != nil {
		t.Fatalf("re-push genesis: %v", err)
	}
	if switchedForks {
		t.Fatalf("re-pushing an already-known, non-head block must not change head")
	}
	if p.HeadBlockNum() != 2 {
		t.Fatalf("head block num = %d, want 2", p.HeadBlockNum())
	}
}

func TestPopBlockRoundTrip(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	block2 := newBlock(t, pc, genesisID, t0.Add(time.Second))
	if _, err := p.PushBlock(block2, externalapi.SkipNothing); err != nil {
		t.Fatalf("push block2: %v", err)
	}
	block2ID, _ := block2.PrecomputedID()

	popped, err := p.PopBlock()
	if err != nil {
		t.Fatalf("PopBlock: %v", err)
	}
	poppedID, _ := popped.PrecomputedID()
	if poppedID != block2ID {
		t.Fatalf("popped block id = %s, want %s", poppedID, block2ID)
	}
	if p.HeadBlockNum() != 1 || p.HeadBlockID() != genesisID {
		t.Fatalf("head after pop = (%d, %s), want (1, %s)", p.HeadBlockNum(), p.HeadBlockID(), genesisID)
	}
}

func TestPopBlockResolvesParentFromBlockStoreWhenForkDBPruned(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	block2 := newBlock(t, pc, genesisID, t0.Add(time.Second))
	if _, err := p.PushBlock(block2, externalapi.SkipNothing); err != nil {
		t.Fatalf("push block2: %v", err)
	}
	block2ID, _ := block2.PrecomputedID()

	block3 := newBlock(t, pc, block2ID, t0.Add(2*time.Second))
	if _, err := p.PushBlock(block3, externalapi.SkipNothing); err != nil {
		t.Fatalf("push block3: %v", err)
	}

	// Simulate genesis and block2 having aged out of the Fork DB's window
	// while remaining in the (never-pruning) Block Store, the situation
	// popBlockLocked must still resolve the new head from. Block3 (the
	// current head) stays put; only its parent is pruned away.
	p.forkDB.PruneBelow(2)

	popped, err := p.PopBlock()
	if err != nil {
		t.Fatalf("PopBlock with pruned parent: %v", err)
	}
	poppedID, _ := popped.PrecomputedID()
	block3ID, _ := block3.PrecomputedID()
	if poppedID != block3ID {
		t.Fatalf("popped block id = %s, want %s", poppedID, block3ID)
	}

	if p.HeadBlockNum() != 2 || p.HeadBlockID() != block2ID {
		t.Fatalf("head after pop = (%d, %s), want (2, %s)", p.HeadBlockNum(), p.HeadBlockID(), block2ID)
	}
	if !p.headBlockTime.Equal(t0.Add(time.Second)) {
		t.Fatalf("head time after pop = %s, want %s", p.headBlockTime, t0.Add(time.Second))
	}
}

func TestPushBlockForkSwitch(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	blockA := newBlock(t, pc, genesisID, t0.Add(time.Second))
	if _, err := p.PushBlock(blockA, externalapi.SkipNothing); err != nil {
		t.Fatalf("push blockA: %v", err)
	}
	if p.HeadBlockNum() != 2 {
		t.Fatalf("head after blockA = %d, want 2", p.HeadBlockNum())
	}

	blockB := newBlock(t, pc, genesisID, t0.Add(2*time.Second))
	if _, err := p.PushBlock(blockB, externalapi.SkipNothing); err != nil {
		t.Fatalf("push blockB (sibling): %v", err)
	}
	blockBID, _ := blockB.PrecomputedID()

	blockC := newBlock(t, pc, blockBID, t0.Add(3*time.Second))
	switchedForks, err := p.PushBlock(blockC, externalapi.SkipNothing)
	if err != nil {
		t.Fatalf("push blockC (fork switch): %v", err)
	}
	if !switchedForks {
		t.Fatalf("expected fork switch to report a fork switch")
	}
	blockCID, _ := blockC.PrecomputedID()
	if p.HeadBlockNum() != 3 || p.HeadBlockID() != blockCID {
		t.Fatalf("head after fork switch = (%d, %s), want (3, %s)", p.HeadBlockNum(), p.HeadBlockID(), blockCID)
	}
}

func TestPushTransactionAndGenerateBlock(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	trx := newTransaction(t, pc, 1, genesisID.Prefix(), t0.Add(30*time.Minute))
	if _, err := p.PushTransaction(trx, externalapi.SkipNothing); err != nil {
		t.Fatalf("PushTransaction: %v", err)
	}
	if len(p.pending.Transactions()) != 1 {
		t.Fatalf("pending pool size = %d, want 1", len(p.pending.Transactions()))
	}

	block, err := p.GenerateBlock(t0.Add(time.Second), testProducer, nil, externalapi.SkipWitnessSignature)
	if err != nil {
		t.Fatalf("GenerateBlock: %v", err)
	}
	if len(block.Transactions) != 1 {
		t.Fatalf("generated block has %d transactions, want 1", len(block.Transactions))
	}
	if p.HeadBlockNum() != 2 {
		t.Fatalf("head after generate_block = %d, want 2", p.HeadBlockNum())
	}
	if len(p.pending.Transactions()) != 0 {
		t.Fatalf("pending pool should be empty after its sole transaction was committed, got %d", len(p.pending.Transactions()))
	}
}

func TestGenerateBlockPostponesOversizedTransactions(t *testing.T) {
	// Each pooled transaction carries a fixed 300-byte payload so its packed
	// size is dominated by that payload rather than by cbor's per-field
	// overhead; a 600-byte budget then fits one such transaction (~430 bytes,
	// ~580 with the header estimate) but not two (~1000). Expirations differ
	// by a second each so the three transactions have distinct ids.
	params := dagconfig.SimnetParams
	params.MaxBlockSize = 600
	p, pc := newFixture(t, params)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	payload := make([]byte, 300)
	for i := 0; i < 3; i++ {
		trx := &externalapi.Transaction{
			RefBlockNum:    1,
			RefBlockPrefix: genesisID.Prefix(),
			Expiration:     t0.Add(30*time.Minute + time.Duration(i)*time.Second),
			Operations:     []externalapi.Operation{{Tag: 1, Payload: payload}},
		}
		if _, err := pc.PrecomputeTransaction(trx); err != nil {
			t.Fatalf("PrecomputeTransaction %d: %v", i, err)
		}
		if _, err := p.PushTransaction(trx, externalapi.SkipNothing); err != nil {
			t.Fatalf("PushTransaction %d: %v", i, err)
		}
	}

	block, err := p.GenerateBlock(t0.Add(time.Second), testProducer, nil, externalapi.SkipWitnessSignature)
	if err != nil {
		t.Fatalf("GenerateBlock: %v", err)
	}
	if len(block.Transactions) == 0 {
		t.Fatalf("expected at least one transaction to fit the budget")
	}
	if len(block.Transactions) >= 3 {
		t.Fatalf("expected the 600-byte budget to postpone at least one of the 3 pooled 300-byte-payload transactions, got all %d included", len(block.Transactions))
	}
}

func TestApplyBlockRejectsTaposMismatch(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	badTrx := newTransaction(t, pc, 1, genesisID.Prefix()^0xFFFFFFFF, t0.Add(30*time.Minute))
	block2 := newBlock(t, pc, genesisID, t0.Add(time.Second), badTrx)

	switchedForks, err := p.PushBlock(block2, externalapi.SkipNothing)
	if err == nil {
		t.Fatalf("expected TaPoS mismatch to reject block2")
	}
	if switchedForks {
		t.Fatalf("a rejected block must not report a fork switch")
	}
	if p.HeadBlockNum() != 1 || p.HeadBlockID() != genesisID {
		t.Fatalf("head must remain at genesis after a rejected block, got (%d, %s)", p.HeadBlockNum(), p.HeadBlockID())
	}
}

func TestBeforeLastCheckpoint(t *testing.T) {
	p, _ := newFixture(t, dagconfig.SimnetParams)

	if p.BeforeLastCheckpoint(5) {
		t.Fatalf("expected no checkpoint configured to mean nothing is before the last checkpoint")
	}

	p.SetCheckpoints([]model.Checkpoint{{BlockNum: 10, ID: externalapi.NewBlockID(10, nil)}})
	if !p.BeforeLastCheckpoint(3) {
		t.Fatalf("expected block 3 to be before checkpoint at 10")
	}
	if p.BeforeLastCheckpoint(11) {
		t.Fatalf("expected block 11 to be after checkpoint at 10")
	}
}

func TestRecentTransactionLooksUpDedupWindow(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	trx := newTransaction(t, pc, 1, genesisID.Prefix(), t0.Add(30*time.Minute))
	if _, err := p.PushTransaction(trx, externalapi.SkipNothing); err != nil {
		t.Fatalf("PushTransaction: %v", err)
	}

	id, _ := trx.PrecomputedID()
	got, ok := p.RecentTransaction(id)
	if !ok {
		t.Fatalf("expected a recently pushed transaction to be found")
	}
	if got != trx {
		t.Fatalf("RecentTransaction returned a different transaction than the one pushed")
	}

	if _, ok := p.RecentTransaction(externalapi.TransactionID{}); ok {
		t.Fatalf("expected an unknown transaction id to be not found")
	}
}

func TestBlockIDsOnFork(t *testing.T) {
	p, pc := newFixture(t, dagconfig.SimnetParams)
	t0 := time.Now()

	genesis := newBlock(t, pc, externalapi.BlockID{}, t0)
	if _, err := p.PushBlock(genesis, externalapi.SkipNothing); err != nil {
		t.Fatalf("push genesis: %v", err)
	}
	genesisID, _ := genesis.PrecomputedID()

	blockA := newBlock(t, pc, genesisID, t0.Add(time.Second))
	if _, err := p.PushBlock(blockA, externalapi.SkipNothing); err != nil {
		t.Fatalf("push blockA: %v", err)
	}

	blockB := newBlock(t, pc, genesisID, t0.Add(2*time.Second))
	if _, err := p.PushBlock(blockB, externalapi.SkipNothing); err != nil {
		t.Fatalf("push blockB (sibling): %v", err)
	}
	blockBID, _ := blockB.PrecomputedID()

	ids, err := p.BlockIDsOnFork(blockBID)
	if err != nil {
		t.Fatalf("BlockIDsOnFork: %v", err)
	}
	if len(ids) == 0 {
		t.Fatalf("expected at least the sibling's own id")
	}
	if ids[0] != blockBID {
		t.Fatalf("expected the fork head to be first, got %s", ids[0])
	}
}
