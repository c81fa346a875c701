package casper

import (
	"sync"
	"sync/atomic"

	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/message"
)

// ApprovedBlockWithTransforms pairs a validated ApprovedBlock with the
// precomputed state transforms its contained block produced.
type ApprovedBlockWithTransforms struct {
	ApprovedBlock *message.ApprovedBlock
	Transforms    []execution.TransformEntry
}

// LastApprovedBlockRef is a single-assignment option slot for the approved
// block adopted by this node. The approval loop polls it; the transition
// routine fills it.
type LastApprovedBlockRef struct {
	mu    sync.RWMutex
	value *ApprovedBlockWithTransforms
}

// NewLastApprovedBlockRef ...
func NewLastApprovedBlockRef() *LastApprovedBlockRef {
	return &LastApprovedBlockRef{}
}

// Get returns the slot content, nil when unset.
func (r *LastApprovedBlockRef) Get() *ApprovedBlockWithTransforms {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set fills the slot. The first write wins; concurrent transitions validate
// the same approved block, so dropping later writes keeps the slot
// consistent.
func (r *LastApprovedBlockRef) Set(v *ApprovedBlockWithTransforms) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.value == nil {
		r.value = v
	}
}

// CasperRef is a single-assignment option slot for the node's Casper
// instance.
type CasperRef struct {
	mu    sync.RWMutex
	value MultiParentCasper
}

// NewCasperRef ...
func NewCasperRef() *CasperRef {
	return &CasperRef{}
}

// Get returns the Casper instance, nil before transition.
func (r *CasperRef) Get() MultiParentCasper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set fills the slot; the first write wins.
func (r *CasperRef) Set(c MultiParentCasper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.value == nil {
		r.value = c
	}
}

// cellBox keeps the concrete type stored in the atomic.Value constant across
// handler changes.
type cellBox struct {
	handler Handler
}

// HandlerCell is the mutable single slot holding the active handler. Reads
// are frequent (every packet); writes happen once per node lifetime, on the
// approved-block transition.
type HandlerCell struct {
	v atomic.Value
}

// NewHandlerCell seeds the cell with the initial handler chosen by role.
func NewHandlerCell(h Handler) *HandlerCell {
	cell := &HandlerCell{}
	cell.v.Store(&cellBox{handler: h})
	return cell
}

// Get returns the active handler.
func (c *HandlerCell) Get() Handler {
	return c.v.Load().(*cellBox).handler
}

// Set installs a new handler.
func (c *HandlerCell) Set(h Handler) {
	c.v.Store(&cellBox{handler: h})
}
