package store

import (
	"sync"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/message"
)

// InmemStore implements BlockStore with in-memory maps.
type InmemStore struct {
	sync.RWMutex
	blocks     map[string]*message.Block
	transforms map[string][]execution.TransformEntry
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		blocks:     make(map[string]*message.Block),
		transforms: make(map[string][]execution.TransformEntry),
	}
}

// Put implements BlockStore.
func (s *InmemStore) Put(hash []byte, b *message.Block, transforms []execution.TransformEntry) error {
	key := common.EncodeToString(hash)

	s.Lock()
	defer s.Unlock()

	s.blocks[key] = b
	s.transforms[key] = transforms

	return nil
}

// GetBlockMessage implements BlockStore.
func (s *InmemStore) GetBlockMessage(hash []byte) (*message.Block, error) {
	key := common.EncodeToString(hash)

	s.RLock()
	defer s.RUnlock()

	b, ok := s.blocks[key]
	if !ok {
		return nil, notFound(key)
	}
	return b, nil
}

// GetTransforms implements BlockStore.
func (s *InmemStore) GetTransforms(hash []byte) ([]execution.TransformEntry, error) {
	key := common.EncodeToString(hash)

	s.RLock()
	defer s.RUnlock()

	t, ok := s.transforms[key]
	if !ok {
		return nil, notFound(key)
	}
	return t, nil
}

// Contains implements BlockStore.
func (s *InmemStore) Contains(hash []byte) (bool, error) {
	key := common.EncodeToString(hash)

	s.RLock()
	defer s.RUnlock()

	_, ok := s.blocks[key]
	return ok, nil
}

// Close implements BlockStore.
func (s *InmemStore) Close() error {
	return nil
}
