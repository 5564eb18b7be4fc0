// Package precompute implements model.Precomputer: the stateless,
// parallelizable half of transaction and block validation that db_block.cpp
// runs ahead of the sequential apply pass in precompute_parallel/
// _precompute_parallel (spec.md §12). Transaction ids, packed sizes and
// signing keys never depend on ObjectDatabase state, so this package fans
// them out across a worker pool the way onflow-flow-go fans out ledger
// register hashing, rather than kaspad's hand-rolled sync.WaitGroup fan-out
// (kaspad's own consensus package has no equivalent stage - GHOSTDAG
// precomputes headers, not transaction signatures).
package precompute

import (
	"crypto/sha256"
	"runtime/debug"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fxamacker/cbor/v2"
	"github.com/gammazero/workerpool"
	"github.com/pkg/errors"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/consensus/ruleerrors"
	"github.com/discretemind/graphene-core/infrastructure/logger"
	"github.com/discretemind/graphene-core/util/panics"
)

var log = mustLogger()

func mustLogger() *logger.Logger {
	l, err := logger.Get(logger.SubsystemTags.PCMP)
	if err != nil {
		panic(err)
	}
	return l
}

// chunkSize mirrors db_block.cpp's precompute_parallel, which splits the
// pending transaction list into chunks of 5 before handing each chunk to
// fc::do_parallel.
const chunkSize = 5

// signable is the subset of a Transaction's fields that feed the digest a
// signature is taken over; Signatures itself is excluded (a signature can't
// cover its own bytes) as are the cached id/packed-size fields.
type signable struct {
	RefBlockNum    uint32
	RefBlockPrefix uint32
	Expiration     int64
	Operations     []externalapi.Operation
}

// blockSignable is the analogous header subset for a block's producer
// signature and id.
type blockSignable struct {
	Previous              externalapi.BlockID
	Timestamp             int64
	Producer              externalapi.ProducerID
	TransactionMerkleRoot externalapi.BlockID
}

// Precomputer is the concrete model.Precomputer.
type Precomputer struct {
	maxWorkers int
	pool       *workerpool.WorkerPool
	verifier   model.Verifier
}

var _ model.Precomputer = (*Precomputer)(nil)

// New returns a Precomputer whose PrecomputeBlock fans transaction work out
// across maxWorkers goroutines. verifier may be nil, in which case
// signatures are trusted at face value and only the recoverable-signature
// path (nil Key) exercises secp256k1 recovery.
func New(maxWorkers int, verifier model.Verifier) *Precomputer {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Precomputer{
		maxWorkers: maxWorkers,
		pool:       workerpool.New(maxWorkers),
		verifier:   verifier,
	}
}

// Stop releases the underlying worker pool's goroutines.
func (p *Precomputer) Stop() {
	p.pool.StopWait()
}

func transactionDigest(trx *externalapi.Transaction) ([]byte, error) {
	encoded, err := cbor.Marshal(signable{
		RefBlockNum:    trx.RefBlockNum,
		RefBlockPrefix: trx.RefBlockPrefix,
		Expiration:     trx.Expiration.Unix(),
		Operations:     trx.Operations,
	})
	if err != nil {
		return nil, errors.Wrap(err, "precompute: failed to encode transaction for digest")
	}
	sum := sha256.Sum256(encoded)
	return sum[:], nil
}

// PrecomputeTransaction implements model.Precomputer. It computes trx's
// digest once, recovers or verifies each signature's public key against it,
// fills in trx's cached id/packed size, and returns the resolved signing
// keys in signature order.
func (p *Precomputer) PrecomputeTransaction(trx *externalapi.Transaction) ([][]byte, error) {
	digest, err := transactionDigest(trx)
	if err != nil {
		return nil, err
	}

	keys := make([][]byte, len(trx.Signatures))
	for i := range trx.Signatures {
		key, err := p.resolveSigningKey(digest, &trx.Signatures[i])
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}

	var id externalapi.TransactionID
	copy(id[:], digest)
	trx.SetPrecomputedID(id)

	packed, err := cbor.Marshal(trx)
	if err != nil {
		return nil, errors.Wrap(err, "precompute: failed to encode transaction for packed size")
	}
	trx.SetPrecomputedPackedSize(len(packed))

	return keys, nil
}

// resolveSigningKey fills in sig.Key when it is empty by recovering it from
// a compact recoverable signature (spec.md glossary "Signature - recoverable
// over the transaction digest"); when a Key is already present it verifies
// the signature against it instead, so a caller that supplies both a key and
// a non-recoverable signature format is still checked.
func (p *Precomputer) resolveSigningKey(digest []byte, sig *externalapi.Signature) ([]byte, error) {
	if len(sig.Key) == 0 {
		pubKey, _, err := ecdsa.RecoverCompact(sig.Bytes, digest)
		if err != nil {
			return nil, ruleerrors.NewErrSignatureVerificationFailed(err)
		}
		sig.Key = pubKey.SerializeCompressed()
		return sig.Key, nil
	}

	if p.verifier != nil {
		ok, err := p.verifier.Verify(digest, sig.Bytes, sig.Key)
		if err != nil {
			return nil, ruleerrors.NewErrSignatureVerificationFailed(err)
		}
		if !ok {
			return nil, ruleerrors.NewErrSignatureVerificationFailed(errors.New("signature does not match key"))
		}
	}
	return sig.Key, nil
}

// PrecomputeBlock implements model.Precomputer.
func (p *Precomputer) PrecomputeBlock(block *externalapi.Block) error {
	if err := p.precomputeTransactionsParallel(block.Transactions); err != nil {
		return err
	}

	root, err := MerkleRoot(block.Transactions)
	if err != nil {
		return err
	}
	block.TransactionMerkleRoot = root

	digest, err := BlockSignee(block)
	if err != nil {
		return err
	}
	block.SetPrecomputedID(externalapi.NewBlockID(block.Number(), digest))

	packed, err := cbor.Marshal(block)
	if err != nil {
		return errors.Wrap(err, "precompute: failed to encode block for packed size")
	}
	block.SetPrecomputedPackedSize(len(packed))
	return nil
}

// precomputeTransactionsParallel splits trxs into chunks of chunkSize and
// runs PrecomputeTransaction across the worker pool, mirroring
// precompute_parallel's fc::do_parallel fan-out.
func (p *Precomputer) precomputeTransactionsParallel(trxs []*externalapi.Transaction) error {
	if len(trxs) == 0 {
		return nil
	}

	errs := make([]error, len(trxs))
	for start := 0; start < len(trxs); start += chunkSize {
		end := start + chunkSize
		if end > len(trxs) {
			end = len(trxs)
		}
		chunk := trxs[start:end]
		offset := start
		callerStack := debug.Stack()
		p.pool.Submit(func() {
			defer panics.HandlePanic(log, callerStack)
			for i, trx := range chunk {
				if _, err := p.PrecomputeTransaction(trx); err != nil {
					errs[offset+i] = err
				}
			}
		})
	}
	p.pool.StopWait()
	p.pool = workerpool.New(p.maxWorkers)

	for i, err := range errs {
		if err != nil {
			log.Debugf("precompute: transaction %d failed: %s", i, err)
			return err
		}
	}
	return nil
}

// MerkleRoot builds a binary merkle tree over trxs' precomputed ids,
// duplicating the last id at each level with an odd count (spec.md §3
// "TransactionMerkleRoot").
func MerkleRoot(trxs []*externalapi.Transaction) (externalapi.BlockID, error) {
	if len(trxs) == 0 {
		return externalapi.BlockID{}, nil
	}

	level := make([][]byte, len(trxs))
	for i, trx := range trxs {
		id, ok := trx.PrecomputedID()
		if !ok {
			return externalapi.BlockID{}, errors.Errorf("precompute: transaction %d has no precomputed id", i)
		}
		level[i] = id[:]
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			h := sha256.Sum256(append(append([]byte{}, level[i]...), level[i+1]...))
			next = append(next, h[:])
		}
		level = next
	}

	var root externalapi.BlockID
	copy(root[:], level[0])
	return root, nil
}

// BlockSignee returns the digest a producer signs over and PrecomputeBlock
// embeds into the block id - header fields only, excluding the signature
// itself (a signature cannot cover its own bytes).
func BlockSignee(block *externalapi.Block) ([]byte, error) {
	encoded, err := cbor.Marshal(blockSignable{
		Previous:              block.Previous,
		Timestamp:             block.Timestamp.Unix(),
		Producer:              block.Producer,
		TransactionMerkleRoot: block.TransactionMerkleRoot,
	})
	if err != nil {
		return nil, errors.Wrap(err, "precompute: failed to encode block for digest")
	}
	sum := sha256.Sum256(encoded)
	// The first 4 bytes of a BlockID are the block number (spec §3), so only
	// the trailing 28 bytes of the digest end up in the id; NewBlockID
	// truncates the copy itself.
	return sum[:], nil
}
