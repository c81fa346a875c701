package casper

import (
	"reflect"
	"testing"

	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/message"
)

func testCandidate(t *testing.T, requiredSigs int) (message.ApprovedBlockCandidate, []byte) {
	t.Helper()

	block := &message.Block{
		Body: message.BlockBody{
			ShardID:       "decoder-shard",
			Timestamp:     42,
			Bonds:         []message.Bond{{Validator: []byte("v"), Stake: 7}},
			PostStateHash: []byte("state"),
		},
	}

	candidate := message.ApprovedBlockCandidate{Block: block, RequiredSigs: requiredSigs}

	hash, err := candidate.Hash()
	if err != nil {
		t.Fatal(err)
	}

	return candidate, hash
}

func TestDecodeEveryVariant(t *testing.T) {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	candidate, candidateHash := testCandidate(t, 2)

	sig, err := message.SignDigest(key, candidateHash)
	if err != nil {
		t.Fatal(err)
	}

	packets := []struct {
		name  string
		build func() (*message.Packet, error)
		check func(t *testing.T, msg interface{})
	}{
		{
			name:  "BlockMessage",
			build: func() (*message.Packet, error) { return message.NewBlockMessagePacket(candidate.Block) },
			check: func(t *testing.T, msg interface{}) {
				b, ok := msg.(*message.Block)
				if !ok {
					t.Fatalf("decoded %T, want *message.Block", msg)
				}
				if b.Hex() != candidate.Block.Hex() {
					t.Fatalf("hash changed across the wire: %s != %s", b.Hex(), candidate.Block.Hex())
				}
			},
		},
		{
			name: "BlockRequest",
			build: func() (*message.Packet, error) {
				return message.NewBlockRequestPacket(&message.BlockRequest{Hash: []byte{0xAB, 0xCD}})
			},
			check: func(t *testing.T, msg interface{}) {
				r, ok := msg.(*message.BlockRequest)
				if !ok {
					t.Fatalf("decoded %T, want *message.BlockRequest", msg)
				}
				if !reflect.DeepEqual(r.Hash, []byte{0xAB, 0xCD}) {
					t.Fatalf("bad hash: %X", r.Hash)
				}
			},
		},
		{
			name:  "ForkChoiceTipRequest",
			build: message.NewForkChoiceTipRequestPacket,
			check: func(t *testing.T, msg interface{}) {
				if _, ok := msg.(*message.ForkChoiceTipRequest); !ok {
					t.Fatalf("decoded %T, want *message.ForkChoiceTipRequest", msg)
				}
			},
		},
		{
			name: "ApprovedBlock",
			build: func() (*message.Packet, error) {
				return message.NewApprovedBlockPacket(&message.ApprovedBlock{
					Candidate: candidate,
					Sigs:      []message.Signature{sig},
				})
			},
			check: func(t *testing.T, msg interface{}) {
				ab, ok := msg.(*message.ApprovedBlock)
				if !ok {
					t.Fatalf("decoded %T, want *message.ApprovedBlock", msg)
				}
				if len(ab.Sigs) != 1 || ab.Sigs[0].Sig != sig.Sig {
					t.Fatal("signatures did not survive the round-trip")
				}
			},
		},
		{
			name: "ApprovedBlockRequest",
			build: func() (*message.Packet, error) {
				return message.NewApprovedBlockRequestPacket(&message.ApprovedBlockRequest{Identifier: "req-1"})
			},
			check: func(t *testing.T, msg interface{}) {
				r, ok := msg.(*message.ApprovedBlockRequest)
				if !ok {
					t.Fatalf("decoded %T, want *message.ApprovedBlockRequest", msg)
				}
				if r.Identifier != "req-1" {
					t.Fatalf("bad identifier: %s", r.Identifier)
				}
			},
		},
		{
			name: "UnapprovedBlock",
			build: func() (*message.Packet, error) {
				return message.NewUnapprovedBlockPacket(&message.UnapprovedBlock{
					Candidate: candidate,
					Timestamp: 1000,
					Duration:  2000,
				})
			},
			check: func(t *testing.T, msg interface{}) {
				ub, ok := msg.(*message.UnapprovedBlock)
				if !ok {
					t.Fatalf("decoded %T, want *message.UnapprovedBlock", msg)
				}
				if ub.Timestamp != 1000 || ub.Duration != 2000 {
					t.Fatal("timing fields did not survive the round-trip")
				}
			},
		},
		{
			name: "BlockApproval",
			build: func() (*message.Packet, error) {
				return message.NewBlockApprovalPacket(&message.BlockApproval{
					CandidateHash: candidateHash,
					Sig:           sig,
				})
			},
			check: func(t *testing.T, msg interface{}) {
				a, ok := msg.(*message.BlockApproval)
				if !ok {
					t.Fatalf("decoded %T, want *message.BlockApproval", msg)
				}
				ok2, err := message.VerifyDigest(a.Sig, a.CandidateHash)
				if err != nil || !ok2 {
					t.Fatal("approval signature should verify after the round-trip")
				}
			},
		},
		{
			name: "NoApprovedBlockAvailable",
			build: func() (*message.Packet, error) {
				return message.NewNoApprovedBlockAvailablePacket(&message.NoApprovedBlockAvailable{
					Identifier: "req-1",
					NodeID:     "node-9",
				})
			},
			check: func(t *testing.T, msg interface{}) {
				na, ok := msg.(*message.NoApprovedBlockAvailable)
				if !ok {
					t.Fatalf("decoded %T, want *message.NoApprovedBlockAvailable", msg)
				}
				if na.NodeID != "node-9" {
					t.Fatalf("bad node id: %s", na.NodeID)
				}
			},
		},
	}

	for _, tc := range packets {
		t.Run(tc.name, func(t *testing.T) {
			packet, err := tc.build()
			if err != nil {
				t.Fatal(err)
			}

			msg, ok := toCasperMessage(packet)
			if !ok {
				t.Fatal("packet should decode")
			}

			tc.check(t, msg)
		})
	}
}

func TestDecodeUnknownTypeID(t *testing.T) {
	packet := &message.Packet{TypeID: "transport.Heartbeat", Content: []byte("{}")}

	if _, ok := toCasperMessage(packet); ok {
		t.Fatal("unknown type id should not decode")
	}
}

func TestDecodeCorruptContent(t *testing.T) {
	packet := &message.Packet{TypeID: message.TypeApprovedBlock, Content: []byte("not json at all")}

	if _, ok := toCasperMessage(packet); ok {
		t.Fatal("corrupt content should not decode")
	}
}
