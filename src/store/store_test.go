package store

import (
	"reflect"
	"testing"

	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/message"
)

func testBlockWithTransforms() (*message.Block, []execution.TransformEntry, []byte) {
	block := &message.Block{
		Body: message.BlockBody{
			ShardID:       "store-shard",
			Timestamp:     77,
			Bonds:         []message.Bond{{Validator: []byte("v1"), Stake: 5}},
			PostStateHash: []byte("post-state"),
		},
	}

	value := execution.Int32Value(12)
	transforms := []execution.TransformEntry{
		{
			Key:       execution.AccountKey([]byte("acc")),
			Transform: execution.Transform{Tag: execution.TransformWrite, Value: &value},
		},
		{
			Key:       execution.HashKey([]byte("contract")),
			Transform: execution.Transform{Tag: execution.TransformAddInt32, Add: 3},
		},
	}

	hash, _ := block.Hash()

	return block, transforms, hash
}

func testStore(t *testing.T, s BlockStore) {
	t.Helper()

	block, transforms, hash := testBlockWithTransforms()

	contains, err := s.Contains(hash)
	if err != nil {
		t.Fatal(err)
	}
	if contains {
		t.Fatal("empty store should not contain the block")
	}

	if _, err := s.GetBlockMessage(hash); !IsKeyNotFound(err) {
		t.Fatalf("expected key-not-found, got %v", err)
	}

	if err := s.Put(hash, block, transforms); err != nil {
		t.Fatal(err)
	}

	contains, err = s.Contains(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !contains {
		t.Fatal("store should contain the block after Put")
	}

	gotBlock, err := s.GetBlockMessage(hash)
	if err != nil {
		t.Fatal(err)
	}
	if gotBlock.Hex() != block.Hex() {
		t.Fatalf("stored block hash %s, want %s", gotBlock.Hex(), block.Hex())
	}

	gotTransforms, err := s.GetTransforms(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(transforms, gotTransforms) {
		t.Fatalf("transform round-trip mismatch:\n%#v\n%#v", transforms, gotTransforms)
	}
}

func TestInmemStore(t *testing.T) {
	s := NewInmemStore()
	defer s.Close()

	testStore(t, s)
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	testStore(t, s)
}

// The badger store must serve reads that miss its write-through cache from
// disk.
func TestBadgerStoreReload(t *testing.T) {
	dir := t.TempDir()

	block, transforms, hash := testBlockWithTransforms()

	s, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(hash, block, transforms); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reloaded.Close()

	gotBlock, err := reloaded.GetBlockMessage(hash)
	if err != nil {
		t.Fatal(err)
	}
	if gotBlock.Hex() != block.Hex() {
		t.Fatalf("reloaded block hash %s, want %s", gotBlock.Hex(), block.Hex())
	}

	gotTransforms, err := reloaded.GetTransforms(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(transforms, gotTransforms) {
		t.Fatal("transforms did not survive the reload")
	}
}
