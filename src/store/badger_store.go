package store

import (
	"bytes"
	"fmt"

	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/message"
	"github.com/dgraph-io/badger"
	"github.com/ugorji/go/codec"
)

const (
	blockPrefix     = "block"
	transformPrefix = "transform"
)

// BadgerStore implements BlockStore on top of a badger database, with an
// in-memory write-through cache in front of it.
type BadgerStore struct {
	inmemStore *InmemStore
	db         *badger.DB
	path       string
}

//NewBadgerStore creates a Store with a database at the given path, creating
//it if necessary.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	opts.Logger = nil
	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	store := &BadgerStore{
		inmemStore: NewInmemStore(),
		db:         handle,
		path:       path,
	}
	return store, nil
}

// StorePath returns the filepath of the underlying database.
func (s *BadgerStore) StorePath() string {
	return s.path
}

// Put implements BlockStore.
func (s *BadgerStore) Put(hash []byte, b *message.Block, transforms []execution.TransformEntry) error {
	blockBytes, err := b.Marshal()
	if err != nil {
		return err
	}

	transformBytes, err := marshalTransforms(transforms)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *badger.Txn) error {
		if err := tx.Set(badgerKey(blockPrefix, hash), blockBytes); err != nil {
			return err
		}
		return tx.Set(badgerKey(transformPrefix, hash), transformBytes)
	})
	if err != nil {
		return err
	}

	return s.inmemStore.Put(hash, b, transforms)
}

// GetBlockMessage implements BlockStore.
func (s *BadgerStore) GetBlockMessage(hash []byte) (*message.Block, error) {
	if b, err := s.inmemStore.GetBlockMessage(hash); err == nil {
		return b, nil
	}

	var blockBytes []byte
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(badgerKey(blockPrefix, hash))
		if err != nil {
			return err
		}
		blockBytes, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, mapBadgerErr(hash, err)
	}

	b := new(message.Block)
	if err := b.Unmarshal(blockBytes); err != nil {
		return nil, err
	}
	return b, nil
}

// GetTransforms implements BlockStore.
func (s *BadgerStore) GetTransforms(hash []byte) ([]execution.TransformEntry, error) {
	if t, err := s.inmemStore.GetTransforms(hash); err == nil {
		return t, nil
	}

	var transformBytes []byte
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(badgerKey(transformPrefix, hash))
		if err != nil {
			return err
		}
		transformBytes, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, mapBadgerErr(hash, err)
	}

	return unmarshalTransforms(transformBytes)
}

// Contains implements BlockStore.
func (s *BadgerStore) Contains(hash []byte) (bool, error) {
	if ok, _ := s.inmemStore.Contains(hash); ok {
		return true, nil
	}

	err := s.db.View(func(tx *badger.Txn) error {
		_, err := tx.Get(badgerKey(blockPrefix, hash))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close implements BlockStore.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func badgerKey(prefix string, hash []byte) []byte {
	return append([]byte(prefix+"_"), hash...)
}

func mapBadgerErr(hash []byte, err error) error {
	if err == badger.ErrKeyNotFound {
		return notFound(fmt.Sprintf("%X", hash))
	}
	return err
}

func marshalTransforms(transforms []execution.TransformEntry) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(transforms); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func unmarshalTransforms(data []byte) ([]execution.TransformEntry, error) {
	var transforms []execution.TransformEntry
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	if err := dec.Decode(&transforms); err != nil {
		return nil, err
	}

	return transforms, nil
}
