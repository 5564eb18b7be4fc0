package externalapi

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/pkg/errors"
)

// BlockIDSize is the size in bytes of a BlockID: a content hash whose first
// 4 bytes encode the block number in big-endian, per spec §3.
const BlockIDSize = 32

// BlockID is the domain representation of a block's content hash. The first
// 4 bytes double as the block's number, exactly as spec §3 describes.
type BlockID [BlockIDSize]byte

// NewBlockIDFromByteSlice builds a BlockID from a byte slice of exactly
// BlockIDSize bytes.
func NewBlockIDFromByteSlice(b []byte) (BlockID, error) {
	var id BlockID
	if len(b) != BlockIDSize {
		return id, errors.Errorf("invalid block id size: want %d, got %d", BlockIDSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// NewBlockID builds a BlockID whose leading 4 bytes encode blockNum and
// whose remaining bytes are the given content digest.
func NewBlockID(blockNum uint32, digest []byte) BlockID {
	var id BlockID
	binary.BigEndian.PutUint32(id[:4], blockNum)
	copy(id[4:], digest)
	return id
}

// BlockNum returns the block number encoded in the first 4 bytes of the id.
func (id BlockID) BlockNum() uint32 {
	return binary.BigEndian.Uint32(id[:4])
}

// Prefix returns the second machine word (bytes 4-8) of the id, used as the
// TaPoS reference prefix (spec §4.3 step 5).
func (id BlockID) Prefix() uint32 {
	return binary.BigEndian.Uint32(id[4:8])
}

// String returns the hex encoding of the id.
func (id BlockID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value, used to represent "no
// previous block" for the genesis block.
func (id BlockID) IsZero() bool {
	return id == BlockID{}
}
