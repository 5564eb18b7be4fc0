package precompute

import (
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

func signedTransaction(t *testing.T, priv *secp256k1.PrivateKey) *externalapi.Transaction {
	t.Helper()
	trx := &externalapi.Transaction{
		Expiration: time.Unix(1000, 0),
		Operations: []externalapi.Operation{{Tag: 1}},
	}
	digest, err := transactionDigest(trx)
	if err != nil {
		t.Fatalf("transactionDigest: %v", err)
	}
	sig := ecdsa.SignCompact(priv, digest, true)
	trx.Signatures = []externalapi.Signature{{Bytes: sig}}
	return trx
}

func TestPrecomputeTransactionRecoversKey(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	trx := signedTransaction(t, priv)

	p := New(2, nil)
	defer p.Stop()

	keys, err := p.PrecomputeTransaction(trx)
	if err != nil {
		t.Fatalf("PrecomputeTransaction: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("len(keys) = %d, want 1", len(keys))
	}

	want := priv.PubKey().SerializeCompressed()
	if string(keys[0]) != string(want) {
		t.Fatalf("recovered key does not match signer's public key")
	}
	if string(trx.Signatures[0].Key) != string(want) {
		t.Fatalf("Signature.Key not filled in by PrecomputeTransaction")
	}

	if _, ok := trx.PrecomputedID(); !ok {
		t.Fatalf("PrecomputeTransaction did not set a precomputed id")
	}
	if _, ok := trx.PrecomputedPackedSize(); !ok {
		t.Fatalf("PrecomputeTransaction did not set a precomputed packed size")
	}
}

func TestPrecomputeTransactionIsDeterministic(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	trxA := signedTransaction(t, priv)
	trxB := signedTransaction(t, priv)

	p := New(1, nil)
	defer p.Stop()

	if _, err := p.PrecomputeTransaction(trxA); err != nil {
		t.Fatalf("PrecomputeTransaction(A): %v", err)
	}
	if _, err := p.PrecomputeTransaction(trxB); err != nil {
		t.Fatalf("PrecomputeTransaction(B): %v", err)
	}

	idA, _ := trxA.PrecomputedID()
	idB, _ := trxB.PrecomputedID()
	if idA != idB {
		t.Fatalf("identical transactions produced different ids: %s vs %s", idA, idB)
	}
}

func TestPrecomputeBlockFansOutAndSetsMerkleRoot(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}

	block := &externalapi.Block{
		Timestamp: time.Unix(2000, 0),
		Producer:  "alice",
	}
	for i := 0; i < 12; i++ {
		trx := &externalapi.Transaction{
			Expiration: time.Unix(int64(1000+i), 0),
			Operations: []externalapi.Operation{{Tag: i}},
		}
		digest, err := transactionDigest(trx)
		if err != nil {
			t.Fatalf("transactionDigest: %v", err)
		}
		trx.Signatures = []externalapi.Signature{{Bytes: ecdsa.SignCompact(priv, digest, true)}}
		block.Transactions = append(block.Transactions, trx)
	}

	p := New(4, nil)
	defer p.Stop()

	if err := p.PrecomputeBlock(block); err != nil {
		t.Fatalf("PrecomputeBlock: %v", err)
	}

	if block.TransactionMerkleRoot.IsZero() {
		t.Fatalf("PrecomputeBlock left TransactionMerkleRoot zero")
	}
	id, ok := block.PrecomputedID()
	if !ok {
		t.Fatalf("PrecomputeBlock did not set a precomputed id")
	}
	if id.BlockNum() != block.Number() {
		t.Fatalf("id.BlockNum() = %d, want %d", id.BlockNum(), block.Number())
	}
	for i, trx := range block.Transactions {
		if _, ok := trx.PrecomputedID(); !ok {
			t.Fatalf("transaction %d was not precomputed by PrecomputeBlock", i)
		}
	}
}

func TestPrecomputeBlockEmptyMerkleRoot(t *testing.T) {
	block := &externalapi.Block{Timestamp: time.Unix(3000, 0), Producer: "bob"}

	p := New(1, nil)
	defer p.Stop()

	if err := p.PrecomputeBlock(block); err != nil {
		t.Fatalf("PrecomputeBlock: %v", err)
	}
	if !block.TransactionMerkleRoot.IsZero() {
		t.Fatalf("empty block should have a zero merkle root")
	}
}
