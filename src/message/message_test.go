package message

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/caspernetworks/casper/src/crypto/keys"
)

func testBlock(t *testing.T) *Block {
	t.Helper()

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	return &Block{
		Body: BlockBody{
			Parents:       [][]byte{[]byte("parent1"), []byte("parent2")},
			Sender:        keys.FromPublicKey(&key.PublicKey),
			ShardID:       "test-shard",
			Timestamp:     1234567,
			Bonds:         []Bond{{Validator: []byte("v1"), Stake: 10}},
			Deploys:       []Deploy{{Account: []byte("acc"), Code: []byte("code"), Nonce: 1, Timestamp: 99}},
			PostStateHash: []byte("state"),
		},
	}
}

func TestBlockMarshalStability(t *testing.T) {
	b := testBlock(t)

	first, err := b.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	second, err := b.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("canonical encoding should be bit-stable")
	}

	var decoded Block
	if err := decoded.Unmarshal(first); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(b.Body, decoded.Body) {
		t.Fatalf("body round-trip mismatch:\n%#v\n%#v", b.Body, decoded.Body)
	}

	if b.Hex() != decoded.Hex() {
		t.Fatalf("hash mismatch after round-trip: %s != %s", b.Hex(), decoded.Hex())
	}
}

func TestBlockSignVerify(t *testing.T) {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	b := testBlock(t)

	sig, err := b.Sign(key)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := b.Verify(sig)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("signature should verify")
	}

	//signature over a different block must not verify
	other := testBlock(t)
	other.Body.ShardID = "other-shard"

	ok, err = other.Verify(sig)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("signature should not verify against another block")
	}
}

func TestCandidateHashDeterminism(t *testing.T) {
	b := testBlock(t)

	c1 := ApprovedBlockCandidate{Block: b, RequiredSigs: 2}
	c2 := ApprovedBlockCandidate{Block: b, RequiredSigs: 2}

	h1, err := c1.Hash()
	if err != nil {
		t.Fatal(err)
	}

	h2, err := c2.Hash()
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(h1, h2) {
		t.Fatal("equal candidates should hash equal")
	}

	c3 := ApprovedBlockCandidate{Block: b, RequiredSigs: 3}
	h3, err := c3.Hash()
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(h1, h3) {
		t.Fatal("different candidates should hash different")
	}
}

func TestPacketRoundTrip(t *testing.T) {
	b := testBlock(t)

	blockPacket, err := NewBlockMessagePacket(b)
	if err != nil {
		t.Fatal(err)
	}
	if blockPacket.TypeID != TypeBlockMessage {
		t.Fatalf("wrong TypeID: %s", blockPacket.TypeID)
	}

	var body BlockBody
	if err := blockPacket.DecodeContent(&body); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.Body, body) {
		t.Fatal("block packet round-trip mismatch")
	}

	request := &BlockRequest{Hash: []byte{0xAB, 0xCD}}
	requestPacket, err := NewBlockRequestPacket(request)
	if err != nil {
		t.Fatal(err)
	}

	var decodedRequest BlockRequest
	if err := requestPacket.DecodeContent(&decodedRequest); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(*request, decodedRequest) {
		t.Fatal("block request round-trip mismatch")
	}

	na := &NoApprovedBlockAvailable{Identifier: "id-1", NodeID: "node-1"}
	naPacket, err := NewNoApprovedBlockAvailablePacket(na)
	if err != nil {
		t.Fatal(err)
	}

	var decodedNa NoApprovedBlockAvailable
	if err := naPacket.DecodeContent(&decodedNa); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(*na, decodedNa) {
		t.Fatal("no-approved-block round-trip mismatch")
	}
}
