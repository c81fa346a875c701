package casper

import (
	"crypto/ecdsa"
	"time"

	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/sirupsen/logrus"
)

// PacketHandler is the dispatcher: it decodes incoming packets and routes
// them to the handler currently installed in the cell. It performs no
// validation of its own. On a successful approved-block transition it
// installs the ApprovedBlockReceived handler and broadcasts a
// ForkChoiceTipRequest.
type PacketHandler struct {
	cell      *HandlerCell
	casperRef *CasperRef
	env       Env

	validatorKey *ecdsa.PrivateKey
	ownPubKey    []byte
	shardID      string

	comm      *net.CommUtil
	connected func() []*peers.Peer
	metrics   *Metrics

	logger *logrus.Entry
}

// NewPacketHandler ...
func NewPacketHandler(
	cell *HandlerCell,
	casperRef *CasperRef,
	env Env,
	validatorKey *ecdsa.PrivateKey,
	shardID string,
	comm *net.CommUtil,
	connected func() []*peers.Peer,
	metrics *Metrics,
	logger *logrus.Entry,
) *PacketHandler {

	var ownPubKey []byte
	if validatorKey != nil {
		ownPubKey = keys.FromPublicKey(&validatorKey.PublicKey)
	}

	return &PacketHandler{
		cell:         cell,
		casperRef:    casperRef,
		env:          env,
		validatorKey: validatorKey,
		ownPubKey:    ownPubKey,
		shardID:      shardID,
		comm:         comm,
		connected:    connected,
		metrics:      metrics,
		logger:       logger.WithField("prefix", "packet-handler"),
	}
}

// Cell exposes the handler cell, mainly to the status service.
func (ph *PacketHandler) Cell() *HandlerCell {
	return ph.cell
}

// Metrics ...
func (ph *PacketHandler) Metrics() *Metrics {
	return ph.metrics
}

// Handle routes one packet from peer. Packets that do not decode to a
// casper message are dropped without error; they belong to other packet
// handlers in the host process. Handler errors are logged with the
// originating peer and returned; the node keeps serving.
func (ph *PacketHandler) Handle(peer *peers.Peer, packet *message.Packet) error {
	msg, ok := toCasperMessage(packet)
	if !ok {
		ph.logger.WithFields(logrus.Fields{
			"type_id": packet.TypeID,
			"peer":    peer.NetAddr,
		}).Debug("Packet not for this handler; dropping.")
		return nil
	}

	handler := ph.cell.Get()

	var err error

	switch m := msg.(type) {
	case *message.Block:
		err = handler.HandleBlockMessage(peer, m)
	case *message.BlockRequest:
		err = handler.HandleBlockRequest(peer, m)
	case *message.ForkChoiceTipRequest:
		err = handler.HandleForkChoiceTipRequest(peer, m)
	case *message.ApprovedBlock:
		var casperInstance MultiParentCasper
		casperInstance, err = handler.HandleApprovedBlock(m)
		if err == nil && casperInstance != nil {
			ph.installApproved(casperInstance, m)
		}
	case *message.ApprovedBlockRequest:
		err = handler.HandleApprovedBlockRequest(peer, m)
	case *message.UnapprovedBlock:
		err = handler.HandleUnapprovedBlock(peer, m)
	case *message.BlockApproval:
		err = handler.HandleBlockApproval(m)
	case *message.NoApprovedBlockAvailable:
		err = handler.HandleNoApprovedBlockAvailable(m)
	}

	if err != nil {
		ph.logger.WithFields(logrus.Fields{
			"type_id": packet.TypeID,
			"peer":    peer.NetAddr,
		}).WithError(err).Error("Handling packet")
		return err
	}

	return nil
}

// installApproved publishes the Casper instance, swaps the handler, and
// asks peers for their fork-choice tips. All transition side-effects
// (store put, LastApprovedBlock) happened before the handler returned the
// instance, so a reader observing the new handler observes them too.
func (ph *PacketHandler) installApproved(c MultiParentCasper, ab *message.ApprovedBlock) {
	ph.casperRef.Set(c)

	ph.cell.Set(NewApprovedBlockReceivedHandler(
		c,
		ab,
		ph.env.BlockStore,
		ph.comm,
		ph.metrics,
		ph.ownPubKey,
		ph.logger,
	))

	ph.logger.Info("Making a transition to ApprovedBlockReceived state.")

	ph.requestForkChoiceTips()
}

func (ph *PacketHandler) requestForkChoiceTips() {
	packet, err := message.NewForkChoiceTipRequestPacket()
	if err != nil {
		ph.logger.WithError(err).Error("Encoding ForkChoiceTipRequest")
		return
	}

	ph.comm.StreamToPeers(packet, ph.connected())
}

// RunApprovalLoop promotes a Standalone node once the genesis ceremony has
// published to the LastApprovedBlock slot. It is the only writer of the
// Standalone to ApprovedBlockReceived transition; the dispatcher never
// performs it. The loop polls every interval and returns after promoting,
// or when shutdownCh closes.
func (ph *PacketHandler) RunApprovalLoop(interval time.Duration, shutdownCh <-chan struct{}) {
	for {
		select {
		case <-shutdownCh:
			return
		case <-time.After(interval):
		}

		last := ph.env.Lab.Get()
		if last == nil {
			continue
		}

		if err := ph.promote(last); err != nil {
			ph.logger.WithError(err).Error("Promoting standalone node")
			continue
		}

		return
	}
}

func (ph *PacketHandler) promote(last *ApprovedBlockWithTransforms) error {
	ab := last.ApprovedBlock
	block := ab.Candidate.Block //must be present; the ceremony built it

	hash, err := block.Hash()
	if err != nil {
		return err
	}

	if err := ph.env.BlockStore.Put(hash, block, last.Transforms); err != nil {
		return err
	}

	dagRepr, err := ph.env.DagStorage.GetRepresentation()
	if err != nil {
		return err
	}

	casperInstance, err := NewHashSetCasper(ph.validatorKey, block, ph.shardID, dagRepr, ph.logger)
	if err != nil {
		return err
	}

	ph.installApproved(casperInstance, ab)

	return nil
}
