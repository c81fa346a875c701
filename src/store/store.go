package store

import (
	"errors"
	"fmt"

	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/message"
)

// ErrKeyNotFound is returned when a block or its transforms are not in the
// store.
var ErrKeyNotFound = errors.New("key not found")

// IsKeyNotFound ...
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

func notFound(key string) error {
	return fmt.Errorf("%s: %w", key, ErrKeyNotFound)
}

// BlockStore persists blocks together with the transforms their execution
// produced. Implementations are safe for concurrent use.
type BlockStore interface {
	// Put inserts a block and its transforms under the block hash.
	Put(hash []byte, b *message.Block, transforms []execution.TransformEntry) error
	// GetBlockMessage returns the block stored under hash.
	GetBlockMessage(hash []byte) (*message.Block, error)
	// GetTransforms returns the transforms stored under hash.
	GetTransforms(hash []byte) ([]execution.TransformEntry, error)
	// Contains reports whether a block is stored under hash.
	Contains(hash []byte) (bool, error)
	// Close closes the underlying database.
	Close() error
}
