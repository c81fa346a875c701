package casper

import (
	"bytes"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/caspernetworks/casper/src/store"
	"github.com/sirupsen/logrus"
)

// ApprovedBlockReceivedHandler is the terminal phase: the node holds an
// approved genesis and fully participates. Re-approval of later checkpoints
// is deliberately not handled here.
type ApprovedBlockReceivedHandler struct {
	casper        MultiParentCasper
	approvedBlock *message.ApprovedBlock

	blockStore store.BlockStore
	comm       *net.CommUtil
	metrics    *Metrics
	ownPubKey  []byte

	logger *logrus.Entry
}

// NewApprovedBlockReceivedHandler ...
func NewApprovedBlockReceivedHandler(
	c MultiParentCasper,
	ab *message.ApprovedBlock,
	blockStore store.BlockStore,
	comm *net.CommUtil,
	metrics *Metrics,
	ownPubKey []byte,
	logger *logrus.Entry,
) *ApprovedBlockReceivedHandler {

	return &ApprovedBlockReceivedHandler{
		casper:        c,
		approvedBlock: ab,
		blockStore:    blockStore,
		comm:          comm,
		metrics:       metrics,
		ownPubKey:     ownPubKey,
		logger:        logger.WithField("prefix", "packet-handler"),
	}
}

// HandleBlockMessage feeds the block to the Casper instance, unless it is
// already known. The doppelganger check warns when the incoming block was
// signed with our own key by someone else.
func (h *ApprovedBlockReceivedHandler) HandleBlockMessage(peer *peers.Peer, b *message.Block) error {
	h.metrics.BlocksReceived.Inc()

	contains, err := h.casper.Contains(b)
	if err != nil {
		return err
	}

	if contains {
		h.logger.WithField("block", b.Hex()).Info("Received block again.")
		h.metrics.BlocksReceivedAgain.Inc()
		return nil
	}

	h.logger.WithFields(logrus.Fields{
		"block": b.Hex(),
		"peer":  peer.NetAddr,
	}).Info("Received block.")

	doppelganger := func(incoming *message.Block, self []byte) {
		if bytes.Equal(incoming.Sender(), self) {
			h.logger.WithFields(logrus.Fields{
				"block": incoming.Hex(),
				"peer":  peer.NetAddr,
			}).Warn("There is another node proposing blocks with your validator key. Did you restart your node, or is the key compromised?")
		}
	}

	return h.casper.AddBlock(b, doppelganger)
}

// HandleBlockRequest streams the requested block back, when the store has
// it.
func (h *ApprovedBlockReceivedHandler) HandleBlockRequest(peer *peers.Peer, r *message.BlockRequest) error {
	hashHex := common.EncodeToString(r.Hash)

	block, err := h.blockStore.GetBlockMessage(r.Hash)
	if err != nil {
		if store.IsKeyNotFound(err) {
			h.logger.WithFields(logrus.Fields{
				"block": hashHex,
				"peer":  peer.NetAddr,
			}).Info("No response given since block not found.")
			return nil
		}
		return err
	}

	packet, err := message.NewBlockMessagePacket(block)
	if err != nil {
		return err
	}

	h.comm.StreamToPeer(packet, peer)

	h.logger.WithFields(logrus.Fields{
		"block": hashHex,
		"peer":  peer.NetAddr,
	}).Info("Response to BlockRequest sent.")

	return nil
}

// HandleForkChoiceTipRequest streams the current fork-choice tip to the
// peer.
func (h *ApprovedBlockReceivedHandler) HandleForkChoiceTipRequest(peer *peers.Peer, r *message.ForkChoiceTipRequest) error {
	tip, err := h.casper.ForkChoiceTip()
	if err != nil {
		return err
	}

	packet, err := message.NewBlockMessagePacket(tip)
	if err != nil {
		return err
	}

	h.comm.StreamToPeer(packet, peer)

	h.logger.WithFields(logrus.Fields{
		"tip":  tip.Hex(),
		"peer": peer.NetAddr,
	}).Debug("Response to ForkChoiceTipRequest sent.")

	return nil
}

// HandleApprovedBlock ignores further approved blocks; the phase is
// absorbing. Re-approval for checkpointing would hook in here.
func (h *ApprovedBlockReceivedHandler) HandleApprovedBlock(ab *message.ApprovedBlock) (MultiParentCasper, error) {
	return nil, nil
}

// HandleApprovedBlockRequest streams the stored approved block to the peer.
func (h *ApprovedBlockReceivedHandler) HandleApprovedBlockRequest(peer *peers.Peer, r *message.ApprovedBlockRequest) error {
	packet, err := message.NewApprovedBlockPacket(h.approvedBlock)
	if err != nil {
		return err
	}

	h.comm.StreamToPeer(packet, peer)

	h.logger.WithField("peer", peer.NetAddr).Info("Response to ApprovedBlockRequest sent.")

	return nil
}

// HandleUnapprovedBlock ...
func (h *ApprovedBlockReceivedHandler) HandleUnapprovedBlock(peer *peers.Peer, ub *message.UnapprovedBlock) error {
	return nil
}

// HandleBlockApproval ...
func (h *ApprovedBlockReceivedHandler) HandleBlockApproval(a *message.BlockApproval) error {
	return nil
}

// HandleNoApprovedBlockAvailable ...
func (h *ApprovedBlockReceivedHandler) HandleNoApprovedBlockAvailable(na *message.NoApprovedBlockAvailable) error {
	h.logger.WithField("node", na.NodeID).Info("No approved block available on node")
	return nil
}

// Name ...
func (h *ApprovedBlockReceivedHandler) Name() string {
	return "ApprovedBlockReceived"
}
