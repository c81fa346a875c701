package casper

import (
	"crypto/ecdsa"

	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/sirupsen/logrus"
)

// BootstrapHandler is the phase of a node catching up with the network. It
// periodically asks peers for an approved block (driven by the bootstrap
// requester task) and transitions when one arrives carrying enough
// signatures from the known validators.
//
// FIXME: The bonds should probably be taken from the approved block rather
// than from local configuration.
type BootstrapHandler struct {
	*preTransition

	knownValidators map[string]bool
	requiredSigs    int
	env             transitionEnv
}

// NewBootstrapHandler ...
func NewBootstrapHandler(
	knownValidators map[string]bool,
	requiredSigs int,
	validatorKey *ecdsa.PrivateKey,
	shardID string,
	env Env,
	comm *net.CommUtil,
	logger *logrus.Entry,
) *BootstrapHandler {

	entry := logger.WithField("prefix", "bootstrap")

	return &BootstrapHandler{
		preTransition:   &preTransition{comm: comm, logger: entry},
		knownValidators: knownValidators,
		requiredSigs:    requiredSigs,
		env: transitionEnv{
			validatorKey: validatorKey,
			shardID:      shardID,
			blockStore:   env.BlockStore,
			dagStorage:   env.DagStorage,
			engine:       env.Engine,
			lab:          env.Lab,
			logger:       entry,
		},
	}
}

// HandleApprovedBlock exits the phase when ab carries requiredSigs valid
// signatures from the known validators.
func (h *BootstrapHandler) HandleApprovedBlock(ab *message.ApprovedBlock) (MultiParentCasper, error) {
	return onApprovedBlockTransition(ab, h.knownValidators, h.requiredSigs, h.env)
}

// Name ...
func (h *BootstrapHandler) Name() string {
	return "Bootstrap"
}
