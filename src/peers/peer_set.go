package peers

import (
	"sort"
)

// PeerSet is an immutable set of Peers indexed by ID and public key.
type PeerSet struct {
	Peers    []*Peer
	ByID     map[uint32]*Peer
	ByPubKey map[string]*Peer
}

// NewPeerSet creates a PeerSet from a list of Peers, sorted by ID.
func NewPeerSet(peers []*Peer) *PeerSet {
	sorted := make([]*Peer, len(peers))
	copy(sorted, peers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[uint32]*Peer)
	byPubKey := make(map[string]*Peer)
	for _, p := range sorted {
		byID[p.ID] = p
		byPubKey[p.PubKeyHex] = p
	}

	return &PeerSet{
		Peers:    sorted,
		ByID:     byID,
		ByPubKey: byPubKey,
	}
}

// Len returns the number of peers in the set.
func (ps *PeerSet) Len() int {
	return len(ps.Peers)
}
