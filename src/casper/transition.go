package casper

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/caspernetworks/casper/src/dag"
	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/store"
	"github.com/sirupsen/logrus"
)

// TransitionError wraps a failure inside the approved-block transition. The
// handler does not transition when it occurs; the error surfaces to the
// dispatcher.
type TransitionError struct {
	Op  string
	Err error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("approved block transition, %s: %v", e.Op, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// transitionEnv is everything the transition routine touches.
type transitionEnv struct {
	validatorKey *ecdsa.PrivateKey
	shardID      string
	blockStore   store.BlockStore
	dagStorage   dag.Storage
	engine       execution.EngineService
	lab          *LastApprovedBlockRef
	logger       *logrus.Entry
}

// onApprovedBlockTransition validates ab against the trusted validator set,
// computes and persists the contained block's effects, publishes the
// approved block, and constructs the Casper instance. A validation
// rejection is not an error: the routine returns (nil, nil) and nothing
// changes.
func onApprovedBlockTransition(
	ab *message.ApprovedBlock,
	trusted map[string]bool,
	requiredSigs int,
	env transitionEnv,
) (MultiParentCasper, error) {

	valid, err := ValidateApprovedBlock(ab, trusted, requiredSigs)
	if err != nil {
		return nil, &TransitionError{Op: "validate", Err: err}
	}

	if !valid {
		env.logger.Info("Invalid ApprovedBlock received; refusing to add.")
		return nil, nil
	}

	env.logger.Info("Valid ApprovedBlock received!")

	block := ab.Candidate.Block

	dagRepr, err := env.dagStorage.GetRepresentation()
	if err != nil {
		return nil, &TransitionError{Op: "dag representation", Err: err}
	}

	transforms, err := env.engine.EffectsForBlock(block, dagRepr)
	if err != nil {
		return nil, &TransitionError{Op: "effects for block", Err: err}
	}

	hash, err := block.Hash()
	if err != nil {
		return nil, &TransitionError{Op: "block hash", Err: err}
	}

	if err := env.blockStore.Put(hash, block, transforms); err != nil {
		return nil, &TransitionError{Op: "block store put", Err: err}
	}

	env.lab.Set(&ApprovedBlockWithTransforms{
		ApprovedBlock: ab,
		Transforms:    transforms,
	})

	casper, err := NewHashSetCasper(env.validatorKey, block, env.shardID, dagRepr, env.logger)
	if err != nil {
		return nil, &TransitionError{Op: "construct casper", Err: err}
	}

	return casper, nil
}
