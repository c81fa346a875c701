package peers

import (
	"github.com/caspernetworks/casper/src/common"
)

// Peer is a participant in the casper network. The PubKeyHex is the
// uncompressed secp256k1 public key; the ID is a short fingerprint of it used
// in logs and maps.
type Peer struct {
	ID        uint32 `json:"-"`
	NetAddr   string
	PubKeyHex string
	Moniker   string
}

// NewPeer is a factory method for a Peer
func NewPeer(pubKeyHex, netAddr, moniker string) *Peer {
	peer := &Peer{
		PubKeyHex: pubKeyHex,
		NetAddr:   netAddr,
		Moniker:   moniker,
	}

	peer.computeID()

	return peer
}

// PubKeyBytes returns the decoded form of PubKeyHex
func (p *Peer) PubKeyBytes() ([]byte, error) {
	return common.DecodeFromString(p.PubKeyHex)
}

func (p *Peer) computeID() error {
	pubKey, err := p.PubKeyBytes()

	if err != nil {
		return err
	}

	p.ID = common.Hash32(pubKey)

	return nil
}

// ExcludePeer is used to exclude a single peer from a list of peers.
func ExcludePeer(peers []*Peer, addr string) []*Peer {
	otherPeers := make([]*Peer, 0, len(peers))
	for _, p := range peers {
		if p.NetAddr != addr {
			otherPeers = append(otherPeers, p)
		}
	}
	return otherPeers
}
