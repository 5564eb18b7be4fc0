package model

// Signer produces a signature over a digest with a held private key.
// Concrete key management and signature schemes are out of scope (spec §1
// "Cryptographic primitives ... are out of scope, specified only by
// interfaces"); graphene-core only ever calls Sign/Verify against the
// digests it computes itself (block signee hash, transaction digest).
type Signer interface {
	Sign(digest []byte) ([]byte, error)
}

// Verifier checks a signature over a digest against a public key.
type Verifier interface {
	Verify(digest, signature, pubKey []byte) (bool, error)
}
