// Package crypto supplies the producer signing key type and the concrete
// model.Signer/model.Verifier the block pipeline's Non-goal-scoped
// interfaces leave abstract (spec.md §1 "Cryptographic primitives ... are
// out of scope, specified only by interfaces"). Everything here is a thin
// adapter over github.com/decred/dcrd/dcrec/secp256k1/v4, the same library
// domain/consensus/processes/precompute already uses to recover signing
// keys from compact recoverable signatures.
package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// PrivateKey is a producer's signing key.
type PrivateKey = secp256k1.PrivateKey

// PublicKey is a producer's compressed public key, as recovered by
// precompute.PrecomputeTransaction or read from a witness schedule entry.
type PublicKey = secp256k1.PublicKey

// GeneratePrivateKey returns a new random signing key.
func GeneratePrivateKey() (*PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// ParsePrivateKey decodes a 32-byte scalar into a PrivateKey.
func ParsePrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, errors.Errorf("crypto: invalid private key length %d, want 32", len(b))
	}
	return secp256k1.PrivKeyFromBytes(b), nil
}

// ParsePublicKey decodes a compressed or uncompressed public key.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	return secp256k1.ParsePubKey(b)
}

// SerializePrivateKey returns key's 32-byte scalar encoding.
func SerializePrivateKey(key *PrivateKey) []byte {
	return key.Serialize()
}
