package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/discretemind/graphene-core/domain/consensus/model"
)

// Signer is the concrete model.Signer: it produces a compact, recoverable
// ECDSA signature over a digest with a held PrivateKey, the same signature
// shape precompute.resolveSigningKey recovers a public key back out of.
type Signer struct {
	key *PrivateKey
}

var _ model.Signer = (*Signer)(nil)

// NewSigner wraps key as a model.Signer.
func NewSigner(key *PrivateKey) *Signer {
	return &Signer{key: key}
}

// Sign implements model.Signer.
func (s *Signer) Sign(digest []byte) ([]byte, error) {
	return ecdsa.SignCompact(s.key, digest, true), nil
}

// Verifier is the concrete model.Verifier: it recovers the signer's public
// key from a compact recoverable signature and compares it against pubKey,
// rather than doing a plain (non-recoverable) ECDSA verify - matching
// db_block.cpp's get_signature_keys, which likewise treats a transaction's
// signatures as key-recovering rather than key-checking.
type Verifier struct{}

var _ model.Verifier = Verifier{}

// NewVerifier returns a stateless model.Verifier.
func NewVerifier() Verifier {
	return Verifier{}
}

// Verify implements model.Verifier.
func (Verifier) Verify(digest, signature, pubKey []byte) (bool, error) {
	recovered, _, err := ecdsa.RecoverCompact(signature, digest)
	if err != nil {
		return false, err
	}
	want, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false, err
	}
	return recovered.IsEqual(want), nil
}
