package casper

import (
	"bytes"
	"sync"
	"time"

	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/sirupsen/logrus"
)

// ApproveBlockProtocol runs the genesis ceremony on the Standalone node. It
// re-broadcasts the UnapprovedBlock candidate on every interval tick,
// collects BlockApproval signatures, and publishes the ApprovedBlock to the
// LastApprovedBlock slot once the ceremony deadline has passed and the
// required number of distinct signatures is reached. The approval loop then
// picks the slot up and promotes the node.
type ApproveBlockProtocol struct {
	candidate     message.ApprovedBlockCandidate
	candidateHash []byte
	transforms    []execution.TransformEntry

	requiredSigs int
	start        time.Time
	duration     time.Duration
	interval     time.Duration

	mu        sync.Mutex
	approvals map[string]message.Signature

	lab           *LastApprovedBlockRef
	comm          *net.CommUtil
	peersProvider func() []*peers.Peer
	logger        *logrus.Entry
}

// NewApproveBlockProtocol primes the ceremony with the genesis candidate
// and the transforms its construction produced.
func NewApproveBlockProtocol(
	candidate message.ApprovedBlockCandidate,
	transforms []execution.TransformEntry,
	requiredSigs int,
	duration time.Duration,
	interval time.Duration,
	lab *LastApprovedBlockRef,
	comm *net.CommUtil,
	peersProvider func() []*peers.Peer,
	logger *logrus.Entry,
) (*ApproveBlockProtocol, error) {

	candidateHash, err := candidate.Hash()
	if err != nil {
		return nil, err
	}

	return &ApproveBlockProtocol{
		candidate:     candidate,
		candidateHash: candidateHash,
		transforms:    transforms,
		requiredSigs:  requiredSigs,
		start:         time.Now(),
		duration:      duration,
		interval:      interval,
		approvals:     make(map[string]message.Signature),
		lab:           lab,
		comm:          comm,
		peersProvider: peersProvider,
		logger:        logger.WithField("prefix", "approve-block"),
	}, nil
}

// AddApproval records a validator's signature over the candidate. Approvals
// for a different candidate and signatures that do not verify are dropped
// with a log line; duplicates from the same key count once.
func (p *ApproveBlockProtocol) AddApproval(a *message.BlockApproval) error {
	if !bytes.Equal(a.CandidateHash, p.candidateHash) {
		p.logger.Info("BlockApproval for unknown candidate received; ignoring.")
		return nil
	}

	ok, err := message.VerifyDigest(a.Sig, p.candidateHash)
	if err != nil || !ok {
		p.logger.WithField("validator", a.Sig.ValidatorHex()).Info("Invalid BlockApproval signature received; ignoring.")
		return nil
	}

	validator := a.Sig.ValidatorHex()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, seen := p.approvals[validator]; seen {
		return nil
	}

	p.approvals[validator] = a.Sig

	p.logger.WithFields(logrus.Fields{
		"validator": validator,
		"approvals": len(p.approvals),
		"required":  p.requiredSigs,
	}).Info("New BlockApproval received.")

	return nil
}

// ApprovalCount returns the number of distinct approvals gathered so far.
func (p *ApproveBlockProtocol) ApprovalCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.approvals)
}

// Run drives the ceremony until completion or shutdown. It must be launched
// in its own goroutine.
func (p *ApproveBlockProtocol) Run(shutdownCh <-chan struct{}) {
	p.logger.WithFields(logrus.Fields{
		"candidate": p.candidate.Block.Hex(),
		"required":  p.requiredSigs,
		"duration":  p.duration,
		"interval":  p.interval,
	}).Info("Starting genesis approval ceremony.")

	for {
		p.broadcastCandidate()

		select {
		case <-shutdownCh:
			return
		case <-time.After(p.interval):
		}

		if p.completed() {
			p.publish()
			return
		}
	}
}

// completed reports whether the ceremony can close: the deadline gives
// every committee member a chance to sign even after the threshold is met.
func (p *ApproveBlockProtocol) completed() bool {
	if time.Since(p.start) < p.duration {
		return false
	}
	return p.ApprovalCount() >= p.requiredSigs
}

func (p *ApproveBlockProtocol) broadcastCandidate() {
	ub := &message.UnapprovedBlock{
		Candidate: p.candidate,
		Timestamp: p.start.UnixNano() / int64(time.Millisecond),
		Duration:  int64(p.duration / time.Millisecond),
	}

	packet, err := message.NewUnapprovedBlockPacket(ub)
	if err != nil {
		p.logger.WithError(err).Error("Encoding UnapprovedBlock")
		return
	}

	targets := p.peersProvider()
	p.comm.StreamToPeers(packet, targets)

	p.logger.WithField("peers", len(targets)).Debug("Broadcast UnapprovedBlock.")
}

func (p *ApproveBlockProtocol) publish() {
	p.mu.Lock()
	sigs := make([]message.Signature, 0, len(p.approvals))
	for _, sig := range p.approvals {
		sigs = append(sigs, sig)
	}
	p.mu.Unlock()

	ab := &message.ApprovedBlock{
		Candidate: p.candidate,
		Sigs:      sigs,
	}

	p.lab.Set(&ApprovedBlockWithTransforms{
		ApprovedBlock: ab,
		Transforms:    p.transforms,
	})

	p.logger.WithField("approvals", len(sigs)).Info("Genesis ceremony complete; approved block published.")
}
