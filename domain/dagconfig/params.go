// Package dagconfig defines the tunable chain parameters this module's
// consensus engine is built against, following the shape (if not the
// GHOSTDAG-specific content) of kaspad's domain/dagconfig package: a single
// Params struct selected by network name.
package dagconfig

import "time"

// Params defines a DPoS chain by its consensus parameters.
type Params struct {
	// Name is a human-readable identifier for the network.
	Name string

	// MaxBlockSize bounds a block's packed size in bytes (spec §4.4.3, §4.4.5).
	MaxBlockSize int

	// MaxAuthorityDepth bounds how deep the active/owner authority graph may
	// be walked when checking a transaction's signatures (spec §4.3 step 3).
	MaxAuthorityDepth uint32

	// MaxTimeUntilExpiration bounds how far in the future a transaction's
	// expiration may be set relative to head block time (spec §4.3 step 5).
	MaxTimeUntilExpiration time.Duration

	// BlockInterval is the duration of a single production slot.
	BlockInterval time.Duration

	// MaintenanceInterval is the period between maintenance ticks (spec
	// §4.4.5 step 8, glossary "Maintenance interval").
	MaintenanceInterval time.Duration

	// UndoHistorySize is the undo stack's max_size (spec §4.1): the number
	// of committed sessions retained for pop_block before the oldest is
	// hard-committed.
	UndoHistorySize int

	// TransactionExpirationWindow is the width of the dedup window (spec §3
	// "Dedup invariant"): a transaction id is retained in the by-id index
	// for this long after being committed.
	TransactionExpirationWindow time.Duration

	// ActiveWitnessCount bounds proposal nesting depth to 2x this value
	// (spec §7 "Proposal-nesting overflow").
	ActiveWitnessCount uint32

	// ProposalHistoryTruncationTime is this chain's cutover instant for the
	// pre/post hardfork operation-history policy difference in proposal
	// apply (spec §9 "Proposal apply"). Proposals applied at or after this
	// time truncate _applied_ops to its pre-proposal length on failure;
	// before it, individual entries are reset to empty instead.
	ProposalHistoryTruncationTime time.Time
}

// MainnetParams are the default parameters for the main network.
var MainnetParams = Params{
	Name:                          "mainnet",
	MaxBlockSize:                  2 * 1024 * 1024,
	MaxAuthorityDepth:             2,
	MaxTimeUntilExpiration:        24 * time.Hour,
	BlockInterval:                 3 * time.Second,
	MaintenanceInterval:           24 * time.Hour,
	UndoHistorySize:               10000,
	TransactionExpirationWindow:   24 * time.Hour,
	ActiveWitnessCount:            21,
	ProposalHistoryTruncationTime: time.Date(2015, 10, 13, 0, 0, 0, 0, time.UTC),
}

// SimnetParams relaxes MainnetParams for fast local testing.
var SimnetParams = Params{
	Name:                          "simnet",
	MaxBlockSize:                  2 * 1024 * 1024,
	MaxAuthorityDepth:             2,
	MaxTimeUntilExpiration:        time.Hour,
	BlockInterval:                 time.Second,
	MaintenanceInterval:           time.Minute,
	UndoHistorySize:               1000,
	TransactionExpirationWindow:   time.Hour,
	ActiveWitnessCount:            3,
	ProposalHistoryTruncationTime: time.Unix(0, 0),
}
