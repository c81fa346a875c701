package node

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/caspernetworks/casper/src/config"
	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/dag"
	"github.com/caspernetworks/casper/src/execution"
	nnet "github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/caspernetworks/casper/src/store"
)

func testNodeConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	conf := config.NewTestConfig(t)
	conf.SetDataDir(dir)
	conf.GenesisPath = filepath.Join(dir, "genesis")
	conf.BondsFile = filepath.Join(conf.GenesisPath, config.DefaultBondsFile)
	conf.WalletsFile = filepath.Join(conf.GenesisPath, config.DefaultWalletsFile)
	conf.KnownValidatorsFile = filepath.Join(dir, config.DefaultKnownValidatorsFile)
	conf.NumValidators = 2
	conf.ShardID = "node-test-shard"
	conf.DeployTimestamp = 42

	return conf
}

/*
A standalone node with requiredSigs=0 approves its own genesis and promotes
itself without any peer traffic.
*/
func TestStandaloneNodeSelfPromotion(t *testing.T) {
	conf := testNodeConfig(t)
	conf.Standalone = true
	conf.RequiredSigs = 0
	conf.ApproveGenesisDuration = 0
	conf.ApproveGenesisInterval = 10 * time.Millisecond

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	addr, trans := nnet.NewInmemTransport("")
	localPeer := peers.NewPeer(keys.PublicKeyHex(&key.PublicKey), addr, "solo")

	n := NewNode(
		conf,
		key,
		localPeer,
		peers.NewPeerSet([]*peers.Peer{localPeer}),
		trans,
		store.NewInmemStore(),
		dag.NewInmemStorage(),
		execution.NewInmemEngine(conf.Logger()),
	)

	if err := n.Init(); err != nil {
		t.Fatal(err)
	}

	if got := n.State(); got != "Standalone" {
		t.Fatalf("initial state = %s, want Standalone", got)
	}

	n.RunAsync()
	defer n.Shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for n.State() != "ApprovedBlockReceived" {
		if time.Now().After(deadline) {
			t.Fatalf("node stuck in %s", n.State())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if n.LastApprovedBlock() == nil {
		t.Fatal("the approved block should be available after promotion")
	}
}

/*
A default-role node comes up in Bootstrap and stays there without network
input.
*/
func TestDefaultNodeStartsInBootstrap(t *testing.T) {
	conf := testNodeConfig(t)
	conf.RequiredSigs = 1
	conf.BootstrapRequestDelay = 10 * time.Millisecond

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	addr, trans := nnet.NewInmemTransport("")
	localPeer := peers.NewPeer(keys.PublicKeyHex(&key.PublicKey), addr, "booter")

	n := NewNode(
		conf,
		key,
		localPeer,
		peers.NewPeerSet([]*peers.Peer{localPeer}),
		trans,
		store.NewInmemStore(),
		dag.NewInmemStorage(),
		execution.NewInmemEngine(conf.Logger()),
	)

	if err := n.Init(); err != nil {
		t.Fatal(err)
	}

	if got := n.State(); got != "Bootstrap" {
		t.Fatalf("initial state = %s, want Bootstrap", got)
	}

	n.RunAsync()
	defer n.Shutdown()

	time.Sleep(100 * time.Millisecond)

	if got := n.State(); got != "Bootstrap" {
		t.Fatalf("state = %s, want Bootstrap to persist without input", got)
	}
}
