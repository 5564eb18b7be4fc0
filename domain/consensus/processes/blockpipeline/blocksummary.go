package blockpipeline

import (
	"github.com/discretemind/graphene-core/domain/consensus/datastructures/objectdatabase"
	"github.com/discretemind/graphene-core/domain/consensus/model"
)

// blockSummaryRingSize is the modulus of the ring _apply_block writes into
// (spec §4.4.5 step 9 "index block_number mod 65536"), matching TaPoS'
// 16-bit ref_block_num.
const blockSummaryRingSize = 1 << 16

const blockSummaryIndexBySlot = "by_slot"

type blockSummaryEntry struct {
	Slot   uint32
	Prefix uint32
}

// blockSummaryRing is the object-database-backed table _apply_block writes
// one entry into per applied block (spec §4.4.5 step 9), and that
// TransactionValidator's TaPoS check (spec §4.3 step 5) reads back through
// model.TaposResolver. It participates in the ordinary undo-session
// lifecycle like any other table, so a discarded block's write is
// automatically rolled back with everything else the block touched.
type blockSummaryRing struct {
	table *objectdatabase.Table[blockSummaryEntry]
}

func newBlockSummaryRing(db *objectdatabase.Database) *blockSummaryRing {
	table := objectdatabase.NewTable[blockSummaryEntry](db, "block_summary_ring")
	table.CreateIndex(blockSummaryIndexBySlot, func(e blockSummaryEntry) interface{} { return e.Slot })
	return &blockSummaryRing{table: table}
}

// write records id's second machine word at blockNum's ring slot, replacing
// whatever a much-earlier block left there.
func (r *blockSummaryRing) write(blockNum uint32, prefix uint32) {
	slot := blockNum % blockSummaryRingSize
	refs := r.table.ByIndex(blockSummaryIndexBySlot, slot)
	if len(refs) > 0 {
		r.table.Modify(refs[0], func(e blockSummaryEntry) blockSummaryEntry {
			e.Prefix = prefix
			return e
		})
		return
	}
	r.table.Create(func(model.ObjectRef) blockSummaryEntry {
		return blockSummaryEntry{Slot: slot, Prefix: prefix}
	})
}

// prefix implements the read half of model.TaposResolver: the ring only
// ever holds the most recent block to have occupied a slot, so a match at
// all does not itself guarantee blockNum was the block that wrote it - the
// caller is expected to have already bounded blockNum against the current
// head, exactly as TransactionValidator does.
func (r *blockSummaryRing) prefix(blockNum uint32) (uint32, bool) {
	slot := blockNum % blockSummaryRingSize
	refs := r.table.ByIndex(blockSummaryIndexBySlot, slot)
	if len(refs) == 0 {
		return 0, false
	}
	entry, ok := r.table.Get(refs[0])
	if !ok {
		return 0, false
	}
	return entry.Prefix, true
}
