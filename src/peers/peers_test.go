package peers

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/crypto/keys"
)

func newTestPeer(t *testing.T, addr string) *Peer {
	t.Helper()

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	return NewPeer(keys.PublicKeyHex(&key.PublicKey), addr, "")
}

func TestPeerID(t *testing.T) {
	peer := newTestPeer(t, "addr1")

	if peer.ID == 0 {
		t.Fatal("peer ID should be derived from the public key")
	}

	pub, err := peer.PubKeyBytes()
	if err != nil {
		t.Fatal(err)
	}

	if common.Hash32(pub) != peer.ID {
		t.Fatal("peer ID should be the FNV hash of the public key")
	}
}

func TestPeerSetIndexes(t *testing.T) {
	p1 := newTestPeer(t, "addr1")
	p2 := newTestPeer(t, "addr2")

	ps := NewPeerSet([]*Peer{p1, p2})

	if ps.Len() != 2 {
		t.Fatalf("peer set size = %d, want 2", ps.Len())
	}

	if ps.ByID[p1.ID] != p1 {
		t.Fatal("ByID lookup failed")
	}
	if ps.ByPubKey[p2.PubKeyHex] != p2 {
		t.Fatal("ByPubKey lookup failed")
	}
}

func TestExcludePeer(t *testing.T) {
	p1 := newTestPeer(t, "addr1")
	p2 := newTestPeer(t, "addr2")

	rest := ExcludePeer([]*Peer{p1, p2}, "addr1")

	if len(rest) != 1 || rest[0] != p2 {
		t.Fatal("ExcludePeer should drop exactly the matching peer")
	}
}

func TestJSONPeersRoundTrip(t *testing.T) {
	dir := t.TempDir()

	p1 := newTestPeer(t, "addr1")
	p2 := newTestPeer(t, "addr2")

	store := NewJSONPeers(dir)

	if err := store.SetPeers([]*Peer{p1, p2}); err != nil {
		t.Fatal(err)
	}

	ps, err := store.Peers()
	if err != nil {
		t.Fatal(err)
	}

	if ps.Len() != 2 {
		t.Fatalf("peer set size = %d, want 2", ps.Len())
	}

	if _, ok := ps.ByPubKey[p1.PubKeyHex]; !ok {
		t.Fatal("peer 1 did not survive the round-trip")
	}
}

func TestReadKnownValidators(t *testing.T) {
	key1, _ := keys.GenerateECDSAKey()
	key2, _ := keys.GenerateECDSAKey()

	hex1 := keys.PublicKeyHex(&key1.PublicKey)
	hex2 := keys.PublicKeyHex(&key2.PublicKey)

	path := filepath.Join(t.TempDir(), "known_validators.txt")
	content := fmt.Sprintf("# trusted validators\n%s\n\n%s\n", hex1, hex2)
	if err := ioutil.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	validators, err := ReadKnownValidators(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(validators) != 2 {
		t.Fatalf("parsed %d validators, want 2", len(validators))
	}

	if !validators[hex1] || !validators[hex2] {
		t.Fatal("parsed set should contain both keys in canonical form")
	}
}
