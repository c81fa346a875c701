package genesis

import (
	"fmt"

	"github.com/caspernetworks/casper/src/crypto"
	"github.com/caspernetworks/casper/src/message"
)

// NewGenesisBlock constructs the deterministic genesis block for a shard:
// no parents, no sender, the bonded validator set, and a post-state hash
// derived from the bonds and wallets. Two nodes given the same inputs
// produce bit-identical genesis blocks.
func NewGenesisBlock(
	bonds []message.Bond,
	wallets []Wallet,
	minimumBond int64,
	maximumBond int64,
	hasFaucet bool,
	shardID string,
	deployTimestamp int64,
) (*message.Block, error) {

	if len(bonds) == 0 {
		return nil, fmt.Errorf("genesis needs at least one bonded validator")
	}

	for _, b := range bonds {
		if b.Stake < minimumBond || b.Stake > maximumBond {
			return nil, fmt.Errorf("bond stake %d outside [%d, %d]", b.Stake, minimumBond, maximumBond)
		}
	}

	sorted := make([]message.Bond, len(bonds))
	copy(sorted, bonds)
	sortBonds(sorted)

	//nil slices, not empty ones: the canonical wire encoding must be the
	//same before and after a round-trip
	block := &message.Block{
		Body: message.BlockBody{
			ShardID:       shardID,
			Timestamp:     deployTimestamp,
			Bonds:         sorted,
			PostStateHash: StateHash(sorted, wallets, hasFaucet),
		},
	}

	return block, nil
}

// StateHash folds the initial balances and bonds into a digest that stands
// in for the post-state of executing genesis. Ceremony validators recompute
// it to check a candidate's wallets and faucet against their own
// expectations.
func StateHash(bonds []message.Bond, wallets []Wallet, hasFaucet bool) []byte {
	buf := []byte{}

	for _, b := range bonds {
		buf = append(buf, b.Validator...)
		buf = appendInt64(buf, b.Stake)
	}

	for _, w := range wallets {
		buf = append(buf, w.PublicKey...)
		buf = appendInt64(buf, w.Balance)
	}

	if hasFaucet {
		buf = append(buf, []byte("faucet")...)
	}

	return crypto.SHA256(buf)
}

func appendInt64(buf []byte, v int64) []byte {
	for i := uint(0); i < 8; i++ {
		buf = append(buf, byte(uint64(v)>>(56-8*i)))
	}
	return buf
}
