package externalapi

// SkipFlags is a bitset of consensus checks to suppress, per spec §6.
// A bit set suppresses the corresponding check.
type SkipFlags uint32

const SkipNothing SkipFlags = 0

const (
	// SkipWitnessSignature suppresses producer signature verification.
	SkipWitnessSignature SkipFlags = 1 << iota

	// SkipTransactionSignatures suppresses transaction authority checks.
	SkipTransactionSignatures

	// SkipMerkleCheck suppresses transaction-merkle-root verification.
	SkipMerkleCheck

	// SkipTransactionDupeCheck suppresses the transaction-id dedup check.
	SkipTransactionDupeCheck

	// SkipWitnessScheduleCheck suppresses verifying the producer matches the
	// scheduled witness for the block's slot.
	SkipWitnessScheduleCheck

	// SkipBlockSizeCheck suppresses the packed-block-size bound check.
	SkipBlockSizeCheck

	// SkipTaposCheck suppresses TaPoS (transactions-as-proof-of-stake) checks.
	SkipTaposCheck
)

// SkipExpensive ORs together the checks that are expensive to perform and
// safe to skip when applying blocks that are already known-good (e.g. blocks
// at or below the highest checkpoint, per spec §4.4.6).
const SkipExpensive = SkipTransactionSignatures | SkipWitnessSignature | SkipMerkleCheck | SkipTransactionDupeCheck

// SkipAll suppresses every check; used for blocks at or below the highest
// checkpoint (spec §4.4.6).
const SkipAll SkipFlags = ^SkipFlags(0)

// Has reports whether all bits of other are set in f.
func (f SkipFlags) Has(other SkipFlags) bool {
	return f&other == other
}

// With returns f with other's bits set.
func (f SkipFlags) With(other SkipFlags) SkipFlags {
	return f | other
}
