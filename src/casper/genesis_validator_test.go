package casper

import (
	"bytes"
	"testing"

	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/genesis"
	"github.com/caspernetworks/casper/src/message"
)

/*
Scenario: a genesis validator receives the expected candidate. It signs the
candidate digest and streams a BlockApproval back to the ceremony leader.
*/
func TestGenesisValidatorSignsExpectedCandidate(t *testing.T) {
	f := newFixture(t)

	validators := genKeys(t, 2)
	validatorKey := validators[0]
	genesisBlock := testGenesis(f, validators)

	approver := NewBlockApproverProtocol(
		validatorKey,
		genesisBlock.Body.Timestamp,
		genesis.BondsMap(genesisBlock.Body.Bonds),
		nil,
		1,
		1000,
		false,
		2,
		f.comm,
		f.logger,
	)

	handler := NewGenesisValidatorHandler(approver, validatorKey, "test-shard", f.env, f.comm, f.logger)
	ph := f.packetHandler(handler, validatorKey)

	candidate := message.ApprovedBlockCandidate{Block: genesisBlock, RequiredSigs: 2}
	candidateHash, err := candidate.Hash()
	if err != nil {
		t.Fatal(err)
	}

	ubPacket, err := message.NewUnapprovedBlockPacket(&message.UnapprovedBlock{
		Candidate: candidate,
		Timestamp: 1000,
		Duration:  60000,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := ph.Handle(f.remotePeer, ubPacket); err != nil {
		t.Fatal(err)
	}

	reply := f.receivePacket()
	if reply.TypeID != message.TypeBlockApproval {
		t.Fatalf("peer received %s, want %s", reply.TypeID, message.TypeBlockApproval)
	}

	var approval message.BlockApproval
	if err := reply.DecodeContent(&approval); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(approval.CandidateHash, candidateHash) {
		t.Fatal("approval is not over the candidate digest")
	}

	expectedKey := keys.FromPublicKey(&validatorKey.PublicKey)
	if !bytes.Equal(approval.Sig.PublicKey, expectedKey) {
		t.Fatal("approval is not signed with the validator's key")
	}

	ok, err := message.VerifyDigest(approval.Sig, candidateHash)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("approval signature should verify")
	}
}

/*
A candidate that does not match the expected genesis parameters is not
signed.
*/
func TestGenesisValidatorRefusesMismatchedCandidate(t *testing.T) {
	f := newFixture(t)

	validators := genKeys(t, 2)
	validatorKey := validators[0]
	genesisBlock := testGenesis(f, validators)

	approver := NewBlockApproverProtocol(
		validatorKey,
		genesisBlock.Body.Timestamp,
		genesis.BondsMap(genesisBlock.Body.Bonds),
		nil,
		1,
		1000,
		false,
		2,
		f.comm,
		f.logger,
	)

	handler := NewGenesisValidatorHandler(approver, validatorKey, "test-shard", f.env, f.comm, f.logger)
	ph := f.packetHandler(handler, validatorKey)

	//a candidate with a different bonded set
	otherValidators := genKeys(t, 2)
	otherBlock := testGenesis(f, otherValidators)

	ubPacket, err := message.NewUnapprovedBlockPacket(&message.UnapprovedBlock{
		Candidate: message.ApprovedBlockCandidate{Block: otherBlock, RequiredSigs: 2},
		Timestamp: 1000,
		Duration:  60000,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := ph.Handle(f.remotePeer, ubPacket); err != nil {
		t.Fatal(err)
	}

	f.expectNoPacket()
}

/*
A genesis validator exits its phase on an approved block carrying its own
valid signature, and refuses one signed only by others.
*/
func TestGenesisValidatorTransition(t *testing.T) {
	f := newFixture(t)

	validators := genKeys(t, 2)
	validatorKey := validators[0]
	genesisBlock := testGenesis(f, validators)

	approver := NewBlockApproverProtocol(
		validatorKey,
		genesisBlock.Body.Timestamp,
		genesis.BondsMap(genesisBlock.Body.Bonds),
		nil,
		1,
		1000,
		false,
		1,
		f.comm,
		f.logger,
	)

	handler := NewGenesisValidatorHandler(approver, validatorKey, "test-shard", f.env, f.comm, f.logger)
	ph := f.packetHandler(handler, validatorKey)

	candidate := message.ApprovedBlockCandidate{Block: genesisBlock, RequiredSigs: 1}
	candidateHash, err := candidate.Hash()
	if err != nil {
		t.Fatal(err)
	}

	//signed only by the other validator: not authoritative for us
	foreign := &message.ApprovedBlock{
		Candidate: candidate,
		Sigs:      signCandidate(t, candidateHash, validators[1]),
	}

	if err := ph.Handle(f.remotePeer, approvedBlockPacket(f, foreign)); err != nil {
		t.Fatal(err)
	}

	if got := ph.Cell().Get().Name(); got != "GenesisValidator" {
		t.Fatalf("handler cell holds %s, want GenesisValidator", got)
	}

	//now with our own signature included
	own := &message.ApprovedBlock{
		Candidate: candidate,
		Sigs:      signCandidate(t, candidateHash, validators[1], validatorKey),
	}

	if err := ph.Handle(f.remotePeer, approvedBlockPacket(f, own)); err != nil {
		t.Fatal(err)
	}

	if got := ph.Cell().Get().Name(); got != "ApprovedBlockReceived" {
		t.Fatalf("handler cell holds %s, want ApprovedBlockReceived", got)
	}
}
