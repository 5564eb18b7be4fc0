package blockstore

import (
	"sync"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
)

// MemoryStore is an in-memory model.BlockStore, used in tests and by
// simnet-style single-process runs that don't need durability.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[externalapi.BlockID]*externalapi.Block
	idByNumber map[uint32]externalapi.BlockID
}

var _ model.BlockStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[externalapi.BlockID]*externalapi.Block),
		idByNumber: make(map[uint32]externalapi.BlockID),
	}
}

// Store implements model.BlockStore.
func (m *MemoryStore) Store(id externalapi.BlockID, block *externalapi.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id] = block
	m.idByNumber[block.Number()] = id
	return nil
}

// FetchOptional implements model.BlockStore.
func (m *MemoryStore) FetchOptional(id externalapi.BlockID) (*externalapi.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id], nil
}

// FetchByNumber implements model.BlockStore.
func (m *MemoryStore) FetchByNumber(n uint32) (*externalapi.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.idByNumber[n]
	if !ok {
		return nil, nil
	}
	return m.byID[id], nil
}

// FetchBlockID implements model.BlockStore.
func (m *MemoryStore) FetchBlockID(n uint32) (externalapi.BlockID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idByNumber[n], nil
}

// Contains implements model.BlockStore.
func (m *MemoryStore) Contains(id externalapi.BlockID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[id]
	return ok, nil
}
