package message

import (
	"github.com/caspernetworks/casper/src/crypto"
)

// ApprovedBlockCandidate is a genesis block put forward for approval,
// together with the number of distinct validator signatures it must gather.
type ApprovedBlockCandidate struct {
	Block        *Block
	RequiredSigs int
}

// Hash returns the digest that validators sign to approve the candidate.
func (c *ApprovedBlockCandidate) Hash() ([]byte, error) {
	bytes, err := marshal(c)
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(bytes), nil
}

// ApprovedBlock is a candidate accompanied by a set of validator signatures
// meeting the threshold. It is the proof a bootstrapping node needs to adopt
// a genesis.
type ApprovedBlock struct {
	Candidate ApprovedBlockCandidate
	Sigs      []Signature
}

// UnapprovedBlock is a candidate circulated by the genesis ceremony leader
// for validators to sign.
type UnapprovedBlock struct {
	Candidate ApprovedBlockCandidate
	Timestamp int64
	Duration  int64 //milliseconds the ceremony is expected to last
}

// BlockApproval is a single validator's signature over a candidate digest.
type BlockApproval struct {
	CandidateHash []byte
	Sig           Signature
}

// BlockRequest asks a peer to stream back the block with the given hash.
type BlockRequest struct {
	Hash []byte
}

// ForkChoiceTipRequest asks a peer for its current fork-choice tip.
type ForkChoiceTipRequest struct {
}

// ApprovedBlockRequest asks a peer for its approved block. The identifier
// is echoed in the reply so requests can be correlated.
type ApprovedBlockRequest struct {
	Identifier string
}

// NoApprovedBlockAvailable is the reply to an ApprovedBlockRequest sent by a
// node that has not transitioned yet.
type NoApprovedBlockAvailable struct {
	Identifier string
	NodeID     string
}
