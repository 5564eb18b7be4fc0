package externalapi

import "time"

// ProducerID identifies the account scheduled to sign a block for a given
// slot (spec glossary "Witness / producer").
type ProducerID string

// Block is a signed, ordered batch of transactions referencing a previous
// block by id (spec §3).
type Block struct {
	Previous              BlockID
	Timestamp             time.Time
	Producer              ProducerID
	Transactions          []*Transaction
	TransactionMerkleRoot BlockID
	ProducerSignature     []byte

	// id and packedSize are populated by precomputation (spec §4.5) and
	// consumed by the apply path instead of being recomputed.
	id         *BlockID
	packedSize int
}

// SetPrecomputedID caches this block's id, as computed by precomputation.
func (b *Block) SetPrecomputedID(id BlockID) {
	b.id = &id
}

// PrecomputedID returns the cached id and whether one was set.
func (b *Block) PrecomputedID() (BlockID, bool) {
	if b.id == nil {
		return BlockID{}, false
	}
	return *b.id, true
}

// SetPrecomputedPackedSize caches this block's packed size.
func (b *Block) SetPrecomputedPackedSize(size int) {
	b.packedSize = size
}

// PrecomputedPackedSize returns the cached packed size and whether one was set.
func (b *Block) PrecomputedPackedSize() (int, bool) {
	if b.packedSize == 0 {
		return 0, false
	}
	return b.packedSize, true
}

// Number returns the number of this block: one past its previous block's
// number, or 1 if it has no previous block (i.e. it is the genesis block).
// A block's id embeds this same number in its first 4 bytes (spec §3); the
// two agree because precomputation builds the id from Number().
func (b *Block) Number() uint32 {
	if b.Previous.IsZero() {
		return 1
	}
	return b.Previous.BlockNum() + 1
}
