package casper

import (
	"crypto/ecdsa"

	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/sirupsen/logrus"
)

// GenesisValidatorHandler is the phase of a committee member of the genesis
// ceremony. It signs matching genesis candidates through the
// BlockApproverProtocol and leaves the phase when a fully approved block
// arrives, trusting only its own signature on it.
type GenesisValidatorHandler struct {
	*preTransition

	approver *BlockApproverProtocol
	env      transitionEnv
	ownHex   string
}

// NewGenesisValidatorHandler ...
func NewGenesisValidatorHandler(
	approver *BlockApproverProtocol,
	validatorKey *ecdsa.PrivateKey,
	shardID string,
	env Env,
	comm *net.CommUtil,
	logger *logrus.Entry,
) *GenesisValidatorHandler {

	entry := logger.WithField("prefix", "genesis-validator")

	return &GenesisValidatorHandler{
		preTransition: &preTransition{comm: comm, logger: entry},
		approver:      approver,
		ownHex:        keys.PublicKeyHex(&validatorKey.PublicKey),
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

// HandleUnapprovedBlock delegates to the BlockApproverProtocol, which signs
// the candidate if it matches the expected genesis parameters.
func (h *GenesisValidatorHandler) HandleUnapprovedBlock(peer *peers.Peer, ub *message.UnapprovedBlock) error {
	return h.approver.UnapprovedBlockPacketHandler(peer, ub)
}

// HandleApprovedBlock exits the phase. Only the self-signed approval is
// treated as authoritative: the approved block must carry a valid signature
// from this validator's own key.
func (h *GenesisValidatorHandler) HandleApprovedBlock(ab *message.ApprovedBlock) (MultiParentCasper, error) {
	trusted := map[string]bool{h.ownHex: true}
	return onApprovedBlockTransition(ab, trusted, 1, h.env)
}

// Name ...
func (h *GenesisValidatorHandler) Name() string {
	return "GenesisValidator"
}
