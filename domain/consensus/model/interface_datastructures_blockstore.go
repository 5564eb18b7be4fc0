package model

import "github.com/discretemind/graphene-core/domain/consensus/model/externalapi"

// BlockStore is the durable append-only map from block id / block number to
// block bytes (spec §1 "Out of scope: Block persistence", spec §6 "External
// Interfaces: Block Store (consumed)"). This module treats it purely as an
// external collaborator interface; concrete implementations live under
// domain/consensus/datastructures/blockstore.
type BlockStore interface {
	// Store durably associates id with block. Overwrites any prior value.
	Store(id externalapi.BlockID, block *externalapi.Block) error

	// FetchOptional returns the stored block for id, or (nil, nil) if absent.
	FetchOptional(id externalapi.BlockID) (*externalapi.Block, error)

	// FetchByNumber returns the stored block at block number n, or
	// (nil, nil) if absent.
	FetchByNumber(n uint32) (*externalapi.Block, error)

	// FetchBlockID returns the id stored at block number n.
	FetchBlockID(n uint32) (externalapi.BlockID, error)

	// Contains reports whether id has a stored block.
	Contains(id externalapi.BlockID) (bool, error)
}
