package dag

import (
	"sync"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/message"
)

// Storage exposes the block DAG to the rest of the node. The representation
// is a live view; implementations are safe for concurrent use.
type Storage interface {
	GetRepresentation() (*Representation, error)
	Close() error
}

// Representation is a queryable view of the block DAG: parent/child edges
// and the latest block seen from each sender.
type Representation struct {
	mu sync.RWMutex

	blocks         map[string]*message.Block   //block hex => block
	children       map[string][]string         //parent hex => child hexes
	latestMessages map[string]*message.Block   //sender hex => latest block
}

// NewRepresentation ...
func NewRepresentation() *Representation {
	return &Representation{
		blocks:         make(map[string]*message.Block),
		children:       make(map[string][]string),
		latestMessages: make(map[string]*message.Block),
	}
}

// Insert records a block and its edges.
func (r *Representation) Insert(b *message.Block) error {
	hex := b.Hex()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blocks[hex]; ok {
		return nil
	}

	r.blocks[hex] = b

	for _, parent := range b.Parents() {
		parentHex := common.EncodeToString(parent)
		r.children[parentHex] = append(r.children[parentHex], hex)
	}

	if sender := b.Sender(); len(sender) > 0 {
		r.latestMessages[common.EncodeToString(sender)] = b
	}

	return nil
}

// Lookup returns the block with the given hex hash, if present.
func (r *Representation) Lookup(hex string) (*message.Block, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.blocks[hex]
	return b, ok
}

// Children returns the hexes of the blocks citing hex as a parent.
func (r *Representation) Children(hex string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]string, len(r.children[hex]))
	copy(res, r.children[hex])
	return res
}

// LatestMessage returns the latest block observed from a sender.
func (r *Representation) LatestMessage(senderHex string) (*message.Block, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.latestMessages[senderHex]
	return b, ok
}

// Size returns the number of blocks in the DAG.
func (r *Representation) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.blocks)
}

// InmemStorage holds a single in-memory representation.
type InmemStorage struct {
	repr *Representation
}

// NewInmemStorage ...
func NewInmemStorage() *InmemStorage {
	return &InmemStorage{repr: NewRepresentation()}
}

// GetRepresentation implements Storage.
func (s *InmemStorage) GetRepresentation() (*Representation, error) {
	return s.repr, nil
}

// Close implements Storage.
func (s *InmemStorage) Close() error {
	return nil
}
