package casper

import (
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/sirupsen/logrus"
)

// StandaloneHandler is the phase of the genesis constructor. The node built
// the genesis candidate at startup and runs the ApproveBlockProtocol in the
// background; the handler's only job is to feed incoming approvals into the
// protocol. The phase is exited by the approval loop, never by an
// externally delivered ApprovedBlock.
type StandaloneHandler struct {
	*preTransition

	protocol *ApproveBlockProtocol
}

// NewStandaloneHandler ...
func NewStandaloneHandler(
	protocol *ApproveBlockProtocol,
	comm *net.CommUtil,
	logger *logrus.Entry,
) *StandaloneHandler {

	entry := logger.WithField("prefix", "standalone")

	return &StandaloneHandler{
		preTransition: &preTransition{comm: comm, logger: entry},
		protocol:      protocol,
	}
}

// HandleBlockApproval forwards the approval to the ceremony.
func (h *StandaloneHandler) HandleBlockApproval(a *message.BlockApproval) error {
	return h.protocol.AddApproval(a)
}

// Name ...
func (h *StandaloneHandler) Name() string {
	return "Standalone"
}
