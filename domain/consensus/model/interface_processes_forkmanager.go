package model

import "github.com/discretemind/graphene-core/domain/consensus/model/externalapi"

// ForkItem is a single known block tracked by the ForkDatabase (spec §3).
type ForkItem struct {
	Block    *externalapi.Block
	ID       externalapi.BlockID
	Previous externalapi.BlockID
	Height   uint32
}

// ForkDatabase is a DAG of known ForkItems rooted at the last irreversible
// block (spec §4.2).
type ForkDatabase interface {
	// PushBlock inserts block and returns the item at the DB's current best
	// head, which may or may not be the newly inserted block (spec §4.2).
	PushBlock(block *externalapi.Block) (*ForkItem, error)

	// FetchBlock returns the item for id, or nil if unknown.
	FetchBlock(id externalapi.BlockID) *ForkItem

	// FetchBlockByNumber returns every known item at block number n; there
	// may be several on competing forks (spec §4.2).
	FetchBlockByNumber(n uint32) []*ForkItem

	// FetchBranchFrom returns the two disjoint branches from a and b back to
	// their common ancestor. Both branches are ordered from the given tip
	// back towards the ancestor, end on items that share the ancestor as
	// their Previous, and do not include the ancestor itself (spec §4.2).
	FetchBranchFrom(a, b externalapi.BlockID) (branchA, branchB []*ForkItem, err error)

	// BlockIDsOnFork returns the ids from the common ancestor (exclusive) of
	// headOfFork and Head(), up to and including headOfFork, followed by the
	// common ancestor's own id (spec.md §12 "get_block_ids_on_fork").
	BlockIDsOnFork(headOfFork externalapi.BlockID) ([]externalapi.BlockID, error)

	// Remove deletes the item for id and every descendant of it.
	Remove(id externalapi.BlockID)

	// SetHead overrides the head choice, used during fork-switch rollback
	// (spec §4.4.1(d)).
	SetHead(item *ForkItem)

	// Head returns the current best head, or nil if the fork database is
	// empty.
	Head() *ForkItem

	// IsKnownBlock reports whether id has been pushed and not since removed.
	IsKnownBlock(id externalapi.BlockID) bool

	// PruneBelow drops every item whose block number is at or below n (spec
	// §4.2 "Items whose block number is <= last-irreversible are pruned").
	PruneBelow(n uint32)
}
