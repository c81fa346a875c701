package casper

import (
	"github.com/caspernetworks/casper/src/dag"
	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/store"
)

// Env bundles the collaborators the handlers and the transition routine
// consume. The node wires it once at startup.
type Env struct {
	BlockStore store.BlockStore
	DagStorage dag.Storage
	Engine     execution.EngineService
	Lab        *LastApprovedBlockRef
}
