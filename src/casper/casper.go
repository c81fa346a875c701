package casper

import (
	"crypto/ecdsa"
	"sync"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/dag"
	"github.com/caspernetworks/casper/src/message"
	"github.com/sirupsen/logrus"
)

// DoppelgangerCheck is invoked for every block added to the Casper instance
// with the incoming block and this node's validator public key. It is how
// the packet handler learns that another node is signing with our key.
type DoppelgangerCheck func(b *message.Block, self []byte)

// MultiParentCasper is the consensus object a node obtains once it holds an
// approved genesis. It accepts new blocks and answers fork-choice queries.
type MultiParentCasper interface {
	Contains(b *message.Block) (bool, error)
	AddBlock(b *message.Block, doppelganger DoppelgangerCheck) error
	ForkChoiceTip() (*message.Block, error)
}

// hashSetCasper is a hash-set backed MultiParentCasper seeded with a genesis
// block. The fork-choice tip is the deepest block, ties broken by lowest
// hash, which keeps tip selection deterministic across nodes holding the
// same block set.
type hashSetCasper struct {
	mu sync.RWMutex

	ownPubKey []byte
	shardID   string
	genesis   *message.Block

	blocks  map[string]*message.Block
	heights map[string]int

	tip       *message.Block
	tipHeight int

	dag    *dag.Representation
	logger *logrus.Entry
}

// NewHashSetCasper seeds a MultiParentCasper with the approved genesis
// block. validatorKey may be nil for a read-only node.
func NewHashSetCasper(
	validatorKey *ecdsa.PrivateKey,
	genesis *message.Block,
	shardID string,
	dagRepr *dag.Representation,
	logger *logrus.Entry,
) (MultiParentCasper, error) {

	var ownPubKey []byte
	if validatorKey != nil {
		ownPubKey = keys.FromPublicKey(&validatorKey.PublicKey)
	}

	c := &hashSetCasper{
		ownPubKey: ownPubKey,
		shardID:   shardID,
		genesis:   genesis,
		blocks:    make(map[string]*message.Block),
		heights:   make(map[string]int),
		dag:       dagRepr,
		logger:    logger.WithField("prefix", "casper"),
	}

	if err := c.insert(genesis); err != nil {
		return nil, err
	}

	return c, nil
}

// Contains implements MultiParentCasper.
func (c *hashSetCasper) Contains(b *message.Block) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.blocks[b.Hex()]
	return ok, nil
}

// AddBlock implements MultiParentCasper.
func (c *hashSetCasper) AddBlock(b *message.Block, doppelganger DoppelgangerCheck) error {
	if doppelganger != nil && len(c.ownPubKey) > 0 {
		doppelganger(b, c.ownPubKey)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.blocks[b.Hex()]; ok {
		return nil
	}

	if err := c.insertLocked(b); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"block":  b.Hex(),
		"height": c.heights[b.Hex()],
	}).Debug("Added block")

	return nil
}

// ForkChoiceTip implements MultiParentCasper.
func (c *hashSetCasper) ForkChoiceTip() (*message.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tip, nil
}

func (c *hashSetCasper) insert(b *message.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(b)
}

func (c *hashSetCasper) insertLocked(b *message.Block) error {
	hex := b.Hex()

	height := 0
	for _, parent := range b.Parents() {
		parentHex := common.EncodeToString(parent)
		if h, ok := c.heights[parentHex]; ok && h+1 > height {
			height = h + 1
		}
	}

	c.blocks[hex] = b
	c.heights[hex] = height

	if err := c.dag.Insert(b); err != nil {
		return err
	}

	if c.tip == nil ||
		height > c.tipHeight ||
		(height == c.tipHeight && hex < c.tip.Hex()) {
		c.tip = b
		c.tipHeight = height
	}

	return nil
}
