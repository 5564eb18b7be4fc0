// Package forkdatabase implements model.ForkDatabase: a DAG of known blocks
// rooted at the last irreversible block (spec §4.2). Its parent-pointer
// shape is grounded on kaspad's dagtopologymanager.DAGTopologyManager
// (domain/consensus/processes/dagtopologymanager/dagtopologymanager.go) - a
// small manager struct answering parent/ancestor questions over a
// hash-keyed relation store - generalized from GHOSTDAG's blue-work
// fork-choice to this system's height-then-producer-schedule tie-break
// (spec §4.2 "Best-head rule"), and its push/fetch_branch_from/set_head
// surface mirrors db_block.cpp's _fork_db calls directly.
package forkdatabase

import (
	"fmt"
	"sync"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/infrastructure/logger"
)

var log = mustLogger()

func mustLogger() *logger.Logger {
	l, err := logger.Get(logger.SubsystemTags.FORK)
	if err != nil {
		panic(err)
	}
	return l
}

// ForkDatabase is the concrete model.ForkDatabase.
type ForkDatabase struct {
	mu            sync.RWMutex
	scheduler     model.WitnessScheduler
	itemsByID     map[externalapi.BlockID]*model.ForkItem
	itemsByNumber map[uint32][]*model.ForkItem
	childrenOf    map[externalapi.BlockID][]externalapi.BlockID
	head          *model.ForkItem
}

var _ model.ForkDatabase = (*ForkDatabase)(nil)

// New returns an empty ForkDatabase. scheduler resolves the producer
// tie-break of the best-head rule (spec §4.2); it may be nil, in which case
// ties fall back to a deterministic byte comparison of the competing ids.
func New(scheduler model.WitnessScheduler) *ForkDatabase {
	return &ForkDatabase{
		scheduler:     scheduler,
		itemsByID:     make(map[externalapi.BlockID]*model.ForkItem),
		itemsByNumber: make(map[uint32][]*model.ForkItem),
		childrenOf:    make(map[externalapi.BlockID][]externalapi.BlockID),
	}
}

// PushBlock implements model.ForkDatabase.
func (f *ForkDatabase) PushBlock(block *externalapi.Block) (*model.ForkItem, error) {
	id, ok := block.PrecomputedID()
	if !ok {
		return nil, fmt.Errorf("forkdatabase: PushBlock called on a block with no precomputed id")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.itemsByID[id]; ok {
		return f.head, nil
	}

	item := &model.ForkItem{
		Block:    block,
		ID:       id,
		Previous: block.Previous,
		Height:   block.Number(),
	}
	f.itemsByID[id] = item
	f.itemsByNumber[item.Height] = append(f.itemsByNumber[item.Height], item)
	f.childrenOf[item.Previous] = append(f.childrenOf[item.Previous], item.ID)

	if f.head == nil || f.better(item, f.head) {
		f.head = item
	}
	log.Debugf("pushed block %s (height %d), head is now %s", id, item.Height, f.head.ID)
	return f.head, nil
}

// better reports whether a should replace b as head (spec §4.2 "Best-head
// rule").
func (f *ForkDatabase) better(a, b *model.ForkItem) bool {
	if a.Height != b.Height {
		return a.Height > b.Height
	}
	if f.scheduler != nil {
		aScheduled := f.matchesSchedule(a)
		bScheduled := f.matchesSchedule(b)
		if aScheduled != bScheduled {
			return aScheduled
		}
	}
	return a.ID.String() < b.ID.String()
}

func (f *ForkDatabase) matchesSchedule(item *model.ForkItem) bool {
	scheduled, err := f.scheduler.ScheduledWitness(item.Block.Timestamp)
	if err != nil {
		return false
	}
	return scheduled == item.Block.Producer
}

// FetchBlock implements model.ForkDatabase.
func (f *ForkDatabase) FetchBlock(id externalapi.BlockID) *model.ForkItem {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.itemsByID[id]
}

// FetchBlockByNumber implements model.ForkDatabase.
func (f *ForkDatabase) FetchBlockByNumber(n uint32) []*model.ForkItem {
	f.mu.RLock()
	defer f.mu.RUnlock()
	items := f.itemsByNumber[n]
	out := make([]*model.ForkItem, len(items))
	copy(out, items)
	return out
}

// FetchBranchFrom implements model.ForkDatabase.
func (f *ForkDatabase) FetchBranchFrom(a, b externalapi.BlockID) (branchA, branchB []*model.ForkItem, err error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	pathA, err := f.pathToRootLocked(a)
	if err != nil {
		return nil, nil, err
	}
	pathB, err := f.pathToRootLocked(b)
	if err != nil {
		return nil, nil, err
	}

	indexA := make(map[externalapi.BlockID]int, len(pathA))
	for i, item := range pathA {
		indexA[item.ID] = i
	}

	for i, item := range pathB {
		if j, ok := indexA[item.ID]; ok {
			return pathA[:j], pathB[:i], nil
		}
	}

	// Neither path's tip is an ancestor tracked in the other's chain; if
	// both walks bottom out at the same (untracked, pruned-below-horizon)
	// ancestor id, the whole of each path is the branch.
	if len(pathA) > 0 && len(pathB) > 0 && pathA[len(pathA)-1].Previous == pathB[len(pathB)-1].Previous {
		return pathA, pathB, nil
	}

	return nil, nil, fmt.Errorf("forkdatabase: %s and %s share no common ancestor", a, b)
}

// pathToRootLocked returns the chain from id back to (and including) the
// last known item, ordered tip-first.
func (f *ForkDatabase) pathToRootLocked(id externalapi.BlockID) ([]*model.ForkItem, error) {
	var path []*model.ForkItem
	cur := id
	for {
		item, ok := f.itemsByID[cur]
		if !ok {
			if len(path) == 0 {
				return nil, fmt.Errorf("forkdatabase: unknown block %s", id)
			}
			// cur is at or before the irreversibility horizon: treat it as
			// the implicit root of the walk.
			return path, nil
		}
		path = append(path, item)
		cur = item.Previous
	}
}

// BlockIDsOnFork implements model.ForkDatabase (SPEC_FULL.md §12).
func (f *ForkDatabase) BlockIDsOnFork(headOfFork externalapi.BlockID) ([]externalapi.BlockID, error) {
	f.mu.RLock()
	head := f.head
	f.mu.RUnlock()
	if head == nil {
		return nil, fmt.Errorf("forkdatabase: empty fork database")
	}

	branchA, _, err := f.FetchBranchFrom(headOfFork, head.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]externalapi.BlockID, 0, len(branchA)+1)
	for i := len(branchA) - 1; i >= 0; i-- {
		ids = append(ids, branchA[i].ID)
	}
	if len(branchA) > 0 {
		ids = append(ids, branchA[len(branchA)-1].Previous)
	}
	return ids, nil
}

// Remove implements model.ForkDatabase: id and every descendant of it are
// dropped.
func (f *ForkDatabase) Remove(id externalapi.BlockID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(id)
}

func (f *ForkDatabase) removeLocked(id externalapi.BlockID) {
	item, ok := f.itemsByID[id]
	if !ok {
		return
	}
	for _, childID := range f.childrenOf[id] {
		f.removeLocked(childID)
	}
	delete(f.itemsByID, id)
	delete(f.childrenOf, id)

	siblings := f.itemsByNumber[item.Height]
	for i, sib := range siblings {
		if sib.ID == id {
			f.itemsByNumber[item.Height] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	if f.head != nil && f.head.ID == id {
		f.head = nil
		for _, items := range f.itemsByNumber {
			for _, candidate := range items {
				if f.head == nil || f.better(candidate, f.head) {
					f.head = candidate
				}
			}
		}
	}
}

// SetHead implements model.ForkDatabase.
func (f *ForkDatabase) SetHead(item *model.ForkItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = item
}

// Head implements model.ForkDatabase.
func (f *ForkDatabase) Head() *model.ForkItem {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.head
}

// IsKnownBlock implements model.ForkDatabase.
func (f *ForkDatabase) IsKnownBlock(id externalapi.BlockID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.itemsByID[id]
	return ok
}

// PruneBelow implements model.ForkDatabase.
func (f *ForkDatabase) PruneBelow(n uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for height, items := range f.itemsByNumber {
		if height > n {
			continue
		}
		for _, item := range items {
			delete(f.itemsByID, item.ID)
			delete(f.childrenOf, item.ID)
		}
		delete(f.itemsByNumber, height)
	}
}
