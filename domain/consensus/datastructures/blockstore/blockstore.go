// Package blockstore implements model.BlockStore: the durable, append-only
// id/number -> block map spec §1 marks "interface only". Its cache-in-front-
// of-a-KV-store shape is grounded on
// kaspanet-kaspad/domain/consensus/datastructures/blockstore/blockstore.go
// (an LRU cache backed by a generic key/value reader, staged writes
// committed as a batch) and its leveldb tuning on
// kaspanet-kaspad/infrastructure/db/database/ldb/options.go. Blocks are
// encoded with github.com/fxamacker/cbor/v2 (present in onflow-flow-go's
// dependency set) rather than the teacher's protobuf, since no .proto
// schema for this module's block type exists to generate from.
package blockstore

import (
	"github.com/fxamacker/cbor/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/infrastructure/logger"
)

var log = mustLogger()

func mustLogger() *logger.Logger {
	l, err := logger.Get(logger.SubsystemTags.CNSS)
	if err != nil {
		panic(err)
	}
	return l
}

const defaultCacheSize = 512

var numberBucket = []byte("n:")
var idBucket = []byte("i:")

// Store is the concrete model.BlockStore, backed by a leveldb database with
// an LRU read cache in front of it.
type Store struct {
	db    *leveldb.DB
	cache *lru.Cache
}

var _ model.BlockStore = (*Store)(nil)

// Open opens (creating if necessary) a leveldb-backed Store at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, Options())
	if err != nil {
		return nil, errors.Wrap(err, "blockstore: opening leveldb database")
	}
	cache, err := lru.New(defaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// Close releases the underlying leveldb database.
func (s *Store) Close() error {
	return s.db.Close()
}

func idKey(id externalapi.BlockID) []byte {
	return append(append([]byte{}, idBucket...), id[:]...)
}

func numberKey(n uint32) []byte {
	key := make([]byte, len(numberBucket)+4)
	copy(key, numberBucket)
	key[len(numberBucket)+0] = byte(n >> 24)
	key[len(numberBucket)+1] = byte(n >> 16)
	key[len(numberBucket)+2] = byte(n >> 8)
	key[len(numberBucket)+3] = byte(n)
	return key
}

// Store implements model.BlockStore.
func (s *Store) Store(id externalapi.BlockID, block *externalapi.Block) error {
	encoded, err := cbor.Marshal(block)
	if err != nil {
		return errors.Wrap(err, "blockstore: encoding block")
	}

	batch := new(leveldb.Batch)
	batch.Put(idKey(id), encoded)
	batch.Put(numberKey(block.Number()), id[:])
	if err := s.db.Write(batch, nil); err != nil {
		return errors.Wrap(err, "blockstore: writing block")
	}
	s.cache.Add(id, block)
	log.Debugf("stored block %s at number %d", id, block.Number())
	return nil
}

// FetchOptional implements model.BlockStore.
func (s *Store) FetchOptional(id externalapi.BlockID) (*externalapi.Block, error) {
	if cached, ok := s.cache.Get(id); ok {
		return cached.(*externalapi.Block), nil
	}

	encoded, err := s.db.Get(idKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "blockstore: reading block")
	}

	var block externalapi.Block
	if err := cbor.Unmarshal(encoded, &block); err != nil {
		return nil, errors.Wrap(err, "blockstore: decoding block")
	}
	block.SetPrecomputedID(id)
	s.cache.Add(id, &block)
	return &block, nil
}

// FetchByNumber implements model.BlockStore.
func (s *Store) FetchByNumber(n uint32) (*externalapi.Block, error) {
	id, err := s.FetchBlockID(n)
	if err != nil {
		return nil, err
	}
	if id.IsZero() {
		return nil, nil
	}
	return s.FetchOptional(id)
}

// FetchBlockID implements model.BlockStore.
func (s *Store) FetchBlockID(n uint32) (externalapi.BlockID, error) {
	idBytes, err := s.db.Get(numberKey(n), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return externalapi.BlockID{}, nil
	}
	if err != nil {
		return externalapi.BlockID{}, errors.Wrap(err, "blockstore: reading block number index")
	}
	return externalapi.NewBlockIDFromByteSlice(idBytes)
}

// Contains implements model.BlockStore.
func (s *Store) Contains(id externalapi.BlockID) (bool, error) {
	if s.cache.Contains(id) {
		return true, nil
	}
	return s.db.Has(idKey(id), nil)
}
