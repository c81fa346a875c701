package casper

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/genesis"
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/sirupsen/logrus"
)

// BlockApproverProtocol is the genesis-validator side of the ceremony. It
// verifies that a circulated candidate matches this validator's expected
// genesis parameters and, when it does, streams a signed BlockApproval back
// to the originating peer.
type BlockApproverProtocol struct {
	validatorKey *ecdsa.PrivateKey

	deployTimestamp int64
	bonds           map[string]int64 //validator hex => expected stake
	wallets         []genesis.Wallet
	minimumBond     int64
	maximumBond     int64
	hasFaucet       bool
	requiredSigs    int

	comm   *net.CommUtil
	logger *logrus.Entry
}

// NewBlockApproverProtocol ...
func NewBlockApproverProtocol(
	validatorKey *ecdsa.PrivateKey,
	deployTimestamp int64,
	bonds map[string]int64,
	wallets []genesis.Wallet,
	minimumBond int64,
	maximumBond int64,
	hasFaucet bool,
	requiredSigs int,
	comm *net.CommUtil,
	logger *logrus.Entry,
) *BlockApproverProtocol {

	return &BlockApproverProtocol{
		validatorKey:    validatorKey,
		deployTimestamp: deployTimestamp,
		bonds:           bonds,
		wallets:         wallets,
		minimumBond:     minimumBond,
		maximumBond:     maximumBond,
		hasFaucet:       hasFaucet,
		requiredSigs:    requiredSigs,
		comm:            comm,
		logger:          logger.WithField("prefix", "block-approver"),
	}
}

// UnapprovedBlockPacketHandler signs the candidate if it matches the
// expected genesis parameters and sends the approval back to peer. A
// mismatching candidate is logged and dropped; it is not an error.
func (p *BlockApproverProtocol) UnapprovedBlockPacketHandler(peer *peers.Peer, ub *message.UnapprovedBlock) error {
	if err := p.validateCandidate(&ub.Candidate); err != nil {
		p.logger.WithFields(logrus.Fields{
			"peer":  peer.NetAddr,
			"error": err,
		}).Warn("Received unexpected genesis candidate; not signing.")
		return nil
	}

	p.logger.WithField("peer", peer.NetAddr).Info("Received expected genesis candidate; signing.")

	digest, err := ub.Candidate.Hash()
	if err != nil {
		return err
	}

	sig, err := message.SignDigest(p.validatorKey, digest)
	if err != nil {
		return err
	}

	packet, err := message.NewBlockApprovalPacket(&message.BlockApproval{
		CandidateHash: digest,
		Sig:           sig,
	})
	if err != nil {
		return err
	}

	p.comm.StreamToPeer(packet, peer)

	return nil
}

// validateCandidate checks the candidate against the parameters this
// validator agreed to at startup.
func (p *BlockApproverProtocol) validateCandidate(candidate *message.ApprovedBlockCandidate) error {
	if candidate.Block == nil {
		return fmt.Errorf("candidate has no block")
	}

	if candidate.RequiredSigs != p.requiredSigs {
		return fmt.Errorf("candidate requires %d signatures, expected %d", candidate.RequiredSigs, p.requiredSigs)
	}

	if p.deployTimestamp != 0 && candidate.Block.Body.Timestamp != p.deployTimestamp {
		return fmt.Errorf("candidate timestamp %d does not match expected %d", candidate.Block.Body.Timestamp, p.deployTimestamp)
	}

	blockBonds := candidate.Block.Body.Bonds
	if len(blockBonds) != len(p.bonds) {
		return fmt.Errorf("candidate has %d bonds, expected %d", len(blockBonds), len(p.bonds))
	}

	for _, bond := range blockBonds {
		if bond.Stake < p.minimumBond || bond.Stake > p.maximumBond {
			return fmt.Errorf("bond stake %d outside [%d, %d]", bond.Stake, p.minimumBond, p.maximumBond)
		}

		expected, ok := p.bonds[bondValidatorHex(bond)]
		if !ok {
			return fmt.Errorf("unexpected bonded validator %s", bondValidatorHex(bond))
		}
		if expected != bond.Stake {
			return fmt.Errorf("validator %s bonded %d, expected %d", bondValidatorHex(bond), bond.Stake, expected)
		}
	}

	//the post-state hash covers the wallets and the faucet
	expectedState := genesis.StateHash(blockBonds, p.wallets, p.hasFaucet)
	if !bytes.Equal(candidate.Block.Body.PostStateHash, expectedState) {
		return fmt.Errorf("candidate post-state does not match the expected wallets and faucet")
	}

	return nil
}

func bondValidatorHex(b message.Bond) string {
	return common.EncodeToString(b.Validator)
}
