package dag

import (
	"testing"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/message"
)

func block(shard string, parents ...*message.Block) *message.Block {
	parentHashes := [][]byte{}
	for _, p := range parents {
		hash, _ := p.Hash()
		parentHashes = append(parentHashes, hash)
	}
	if len(parentHashes) == 0 {
		parentHashes = nil
	}

	return &message.Block{
		Body: message.BlockBody{
			Parents: parentHashes,
			Sender:  []byte(shard + "-sender"),
			ShardID: shard,
		},
	}
}

func TestRepresentationEdges(t *testing.T) {
	repr := NewRepresentation()

	genesis := block("g")
	child := block("c", genesis)

	if err := repr.Insert(genesis); err != nil {
		t.Fatal(err)
	}
	if err := repr.Insert(child); err != nil {
		t.Fatal(err)
	}

	if repr.Size() != 2 {
		t.Fatalf("size = %d, want 2", repr.Size())
	}

	if _, ok := repr.Lookup(genesis.Hex()); !ok {
		t.Fatal("genesis should be found")
	}

	children := repr.Children(genesis.Hex())
	if len(children) != 1 || children[0] != child.Hex() {
		t.Fatalf("children of genesis = %v, want [%s]", children, child.Hex())
	}
}

func TestRepresentationLatestMessage(t *testing.T) {
	repr := NewRepresentation()

	first := block("s")
	second := block("s", first)

	if err := repr.Insert(first); err != nil {
		t.Fatal(err)
	}
	if err := repr.Insert(second); err != nil {
		t.Fatal(err)
	}

	senderHex := common.EncodeToString(second.Sender())

	latest, ok := repr.LatestMessage(senderHex)
	if !ok {
		t.Fatal("sender should have a latest message")
	}
	if latest.Hex() != second.Hex() {
		t.Fatalf("latest message = %s, want %s", latest.Hex(), second.Hex())
	}

	//re-inserting an existing block is a no-op
	if err := repr.Insert(second); err != nil {
		t.Fatal(err)
	}
	if repr.Size() != 2 {
		t.Fatalf("size = %d, want 2", repr.Size())
	}
}
