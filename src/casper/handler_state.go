package casper

import (
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/sirupsen/logrus"
)

// Handler is the per-lifecycle-phase message handler. One method per
// protocol message; methods not applicable to a phase are no-ops. Only
// HandleApprovedBlock can produce a Casper instance, which signals the
// dispatcher to perform the transition.
type Handler interface {
	HandleBlockMessage(peer *peers.Peer, b *message.Block) error
	HandleBlockRequest(peer *peers.Peer, r *message.BlockRequest) error
	HandleForkChoiceTipRequest(peer *peers.Peer, r *message.ForkChoiceTipRequest) error
	HandleApprovedBlock(ab *message.ApprovedBlock) (MultiParentCasper, error)
	HandleApprovedBlockRequest(peer *peers.Peer, r *message.ApprovedBlockRequest) error
	HandleUnapprovedBlock(peer *peers.Peer, ub *message.UnapprovedBlock) error
	HandleBlockApproval(a *message.BlockApproval) error
	HandleNoApprovedBlockAvailable(na *message.NoApprovedBlockAvailable) error

	// Name identifies the phase in logs and the status service.
	Name() string
}

// nodeID is the identifier other nodes see in NoApprovedBlockAvailable
// replies.
func nodeID(p *peers.Peer) string {
	if p.Moniker != "" {
		return p.Moniker
	}
	return p.NetAddr
}

// preTransition carries the behavior every pre-transition phase shares:
// block traffic is ignored, ApprovedBlockRequests are answered with
// NoApprovedBlockAvailable, and NoApprovedBlockAvailable is logged.
type preTransition struct {
	comm   *net.CommUtil
	logger *logrus.Entry
}

// HandleBlockMessage ...
func (p *preTransition) HandleBlockMessage(peer *peers.Peer, b *message.Block) error {
	return nil
}

// HandleBlockRequest ...
func (p *preTransition) HandleBlockRequest(peer *peers.Peer, r *message.BlockRequest) error {
	return nil
}

// HandleForkChoiceTipRequest ...
func (p *preTransition) HandleForkChoiceTipRequest(peer *peers.Peer, r *message.ForkChoiceTipRequest) error {
	return nil
}

// HandleApprovedBlock ...
func (p *preTransition) HandleApprovedBlock(ab *message.ApprovedBlock) (MultiParentCasper, error) {
	return nil, nil
}

// HandleUnapprovedBlock ...
func (p *preTransition) HandleUnapprovedBlock(peer *peers.Peer, ub *message.UnapprovedBlock) error {
	return nil
}

// HandleBlockApproval ...
func (p *preTransition) HandleBlockApproval(a *message.BlockApproval) error {
	return nil
}

// HandleApprovedBlockRequest replies with NoApprovedBlockAvailable; the
// node has nothing better to offer yet.
func (p *preTransition) HandleApprovedBlockRequest(peer *peers.Peer, r *message.ApprovedBlockRequest) error {
	na := &message.NoApprovedBlockAvailable{
		Identifier: r.Identifier,
		NodeID:     nodeID(p.comm.Local()),
	}

	packet, err := message.NewNoApprovedBlockAvailablePacket(na)
	if err != nil {
		return err
	}

	p.comm.StreamToPeer(packet, peer)

	p.logger.WithField("peer", peer.NetAddr).Info("Received ApprovedBlockRequest; no approved block available")

	return nil
}

// HandleNoApprovedBlockAvailable ...
func (p *preTransition) HandleNoApprovedBlockAvailable(na *message.NoApprovedBlockAvailable) error {
	p.logger.WithField("node", na.NodeID).Info("No approved block available on node")
	return nil
}
