package execution

import (
	"sync"

	"github.com/caspernetworks/casper/src/crypto"
	"github.com/caspernetworks/casper/src/dag"
	"github.com/caspernetworks/casper/src/message"
	"github.com/sirupsen/logrus"
)

// EngineService is the surface the node needs from the execution engine: it
// receives the bonds of the network and derives the state transforms a block
// produces. Implementations must be safe for concurrent use.
type EngineService interface {
	SetBonds(bonds []message.Bond) error
	EffectsForBlock(b *message.Block, d *dag.Representation) ([]TransformEntry, error)
}

// InmemEngine is an in-process EngineService. It derives transforms
// deterministically from a block's contents: one write per deploy under the
// deployer's account key, and one write of a SHA256 digest of the bonds
// table under a fixed hash key. It does not run any deploy code.
type InmemEngine struct {
	mu     sync.Mutex
	bonds  []message.Bond
	logger *logrus.Entry
}

// NewInmemEngine ...
func NewInmemEngine(logger *logrus.Entry) *InmemEngine {
	return &InmemEngine{
		logger: logger,
	}
}

// SetBonds implements EngineService.
func (e *InmemEngine) SetBonds(bonds []message.Bond) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.bonds = make([]message.Bond, len(bonds))
	copy(e.bonds, bonds)

	e.logger.WithField("bonds", len(bonds)).Debug("Bonds set in execution engine")

	return nil
}

// bondsKey is where the bonds table lives in the global state.
var bondsKey = HashKey(crypto.SHA256([]byte("system:bonds")))

// EffectsForBlock implements EngineService.
func (e *InmemEngine) EffectsForBlock(b *message.Block, d *dag.Representation) ([]TransformEntry, error) {
	entries := []TransformEntry{}

	for _, deploy := range b.Body.Deploys {
		codeHash := crypto.SHA256(deploy.Code)
		value := ByteArrayValue(codeHash)
		entries = append(entries, TransformEntry{
			Key:       AccountKey(deploy.Account),
			Transform: Transform{Tag: TransformWrite, Value: &value},
		})
	}

	bondsBytes, err := marshalBonds(b.Body.Bonds)
	if err != nil {
		return nil, err
	}
	bondsValue := ByteArrayValue(bondsBytes)
	entries = append(entries, TransformEntry{
		Key:       bondsKey,
		Transform: Transform{Tag: TransformWrite, Value: &bondsValue},
	})

	e.logger.WithFields(logrus.Fields{
		"block":      b.Hex(),
		"transforms": len(entries),
	}).Debug("Computed block effects")

	return entries, nil
}

func marshalBonds(bonds []message.Bond) ([]byte, error) {
	buf := []byte{}
	for _, bond := range bonds {
		buf = append(buf, bond.Validator...)
		for i := uint(0); i < 8; i++ {
			buf = append(buf, byte(uint64(bond.Stake)>>(56-8*i)))
		}
	}
	return crypto.SHA256(buf), nil
}
