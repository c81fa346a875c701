package net

import (
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/sirupsen/logrus"
)

// CommUtil bundles a transport with the local peer identity and provides the
// send helpers the protocol layer uses.
type CommUtil struct {
	trans  Transport
	local  *peers.Peer
	logger *logrus.Entry
}

// NewCommUtil ...
func NewCommUtil(trans Transport, local *peers.Peer, logger *logrus.Entry) *CommUtil {
	return &CommUtil{
		trans:  trans,
		local:  local,
		logger: logger,
	}
}

// Local returns the local peer identity.
func (c *CommUtil) Local() *peers.Peer {
	return c.local
}

// StreamToPeers sends the packet to every target. Failures are logged and do
// not propagate; the transport handles its own retries.
func (c *CommUtil) StreamToPeers(p *message.Packet, targets []*peers.Peer) {
	if len(targets) == 0 {
		return
	}

	err := c.trans.Stream(targets, Blob{Sender: c.local, Packet: p})
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"type_id": p.TypeID,
			"error":   err,
		}).Error("Streaming packet")
	}
}

// StreamToPeer sends the packet to a single target.
func (c *CommUtil) StreamToPeer(p *message.Packet, target *peers.Peer) {
	c.StreamToPeers(p, []*peers.Peer{target})
}

// SendApprovedBlockRequestToAll emits an ApprovedBlockRequest to every
// target, which is what a bootstrapping node does until someone answers.
func (c *CommUtil) SendApprovedBlockRequestToAll(identifier string, targets []*peers.Peer) error {
	packet, err := message.NewApprovedBlockRequestPacket(&message.ApprovedBlockRequest{
		Identifier: identifier,
	})
	if err != nil {
		return err
	}

	c.logger.WithField("peers", len(targets)).Info("Requesting ApprovedBlock from peers")

	c.StreamToPeers(packet, targets)

	return nil
}
