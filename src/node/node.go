package node

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/caspernetworks/casper/src/casper"
	"github.com/caspernetworks/casper/src/config"
	"github.com/caspernetworks/casper/src/dag"
	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/genesis"
	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/caspernetworks/casper/src/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Node ties the packet-handling state machine to its collaborators: the
// transport, the block store, the DAG storage and the execution engine. It
// owns the background routines of the active role.
type Node struct {
	tasks

	conf   *config.Config
	logger *logrus.Entry

	validatorKey *ecdsa.PrivateKey
	localPeer    *peers.Peer
	peerSet      *peers.PeerSet

	trans net.Transport
	netCh <-chan net.RemotePacket
	comm  *net.CommUtil

	blockStore store.BlockStore
	dagStorage dag.Storage
	engine     execution.EngineService

	cell      *casper.HandlerCell
	casperRef *casper.CasperRef
	lab       *casper.LastApprovedBlockRef

	packetHandler *casper.PacketHandler
	approval      *casper.ApproveBlockProtocol //standalone only

	registry *prometheus.Registry

	sigintCh     chan os.Signal
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	start time.Time
}

// NewNode is a factory method that returns a Node instance
func NewNode(
	conf *config.Config,
	validatorKey *ecdsa.PrivateKey,
	localPeer *peers.Peer,
	peerSet *peers.PeerSet,
	trans net.Transport,
	blockStore store.BlockStore,
	dagStorage dag.Storage,
	engine execution.EngineService,
) *Node {

	//Prepare sigintCh to relay SIGINT system calls
	sigintCh := make(chan os.Signal, 1)
	signal.Notify(sigintCh, os.Interrupt, syscall.SIGINT)

	logger := conf.Logger().WithField("this_node", localPeer.NetAddr)

	node := Node{
		conf:         conf,
		logger:       logger,
		validatorKey: validatorKey,
		localPeer:    localPeer,
		peerSet:      peerSet,
		trans:        trans,
		netCh:        trans.Consumer(),
		comm:         net.NewCommUtil(trans, localPeer, logger),
		blockStore:   blockStore,
		dagStorage:   dagStorage,
		engine:       engine,
		casperRef:    casper.NewCasperRef(),
		lab:          casper.NewLastApprovedBlockRef(),
		registry:     prometheus.NewRegistry(),
		sigintCh:     sigintCh,
		shutdownCh:   make(chan struct{}),
		start:        time.Now(),
	}

	return &node
}

// Init builds the initial handler according to the node role and prepares
// the dispatcher.
func (n *Node) Init() error {
	env := casper.Env{
		BlockStore: n.blockStore,
		DagStorage: n.dagStorage,
		Engine:     n.engine,
		Lab:        n.lab,
	}

	var handler casper.Handler
	var err error

	switch role := n.conf.Role(); role {
	case config.RoleStandalone:
		handler, err = n.initStandalone(env)
	case config.RoleApproveGenesis:
		handler, err = n.initGenesisValidator(env)
	default:
		handler, err = n.initBootstrap(env)
	}

	if err != nil {
		return err
	}

	n.logger.WithField("state", handler.Name()).Debug("Initial handler installed")

	n.cell = casper.NewHandlerCell(handler)

	n.packetHandler = casper.NewPacketHandler(
		n.cell,
		n.casperRef,
		env,
		n.validatorKey,
		n.conf.ShardID,
		n.comm,
		n.connectedPeers,
		casper.NewMetrics(n.registry),
		n.logger,
	)

	return nil
}

// initStandalone builds the genesis, primes the approval ceremony, and
// returns the Standalone handler. The ceremony and the approval loop start
// in Run.
func (n *Node) initStandalone(env casper.Env) (casper.Handler, error) {
	bonds, err := genesis.ParseOrGenerateBonds(n.conf.BondsFile, n.conf.NumValidators, n.logger)
	if err != nil {
		return nil, err
	}

	if err := n.engine.SetBonds(bonds); err != nil {
		return nil, err
	}

	wallets, err := n.readWallets()
	if err != nil {
		return nil, err
	}

	deployTimestamp := n.conf.DeployTimestamp
	if deployTimestamp == 0 {
		deployTimestamp = time.Now().UnixNano() / int64(time.Millisecond)
	}

	genesisBlock, err := genesis.NewGenesisBlock(
		bonds,
		wallets,
		n.conf.MinimumBond,
		n.conf.MaximumBond,
		n.conf.HasFaucet,
		n.conf.ShardID,
		deployTimestamp,
	)
	if err != nil {
		return nil, err
	}

	dagRepr, err := n.dagStorage.GetRepresentation()
	if err != nil {
		return nil, err
	}

	transforms, err := n.engine.EffectsForBlock(genesisBlock, dagRepr)
	if err != nil {
		return nil, err
	}

	candidate := message.ApprovedBlockCandidate{
		Block:        genesisBlock,
		RequiredSigs: n.conf.RequiredSigs,
	}

	n.approval, err = casper.NewApproveBlockProtocol(
		candidate,
		transforms,
		n.conf.RequiredSigs,
		n.conf.ApproveGenesisDuration,
		n.conf.ApproveGenesisInterval,
		n.lab,
		n.comm,
		n.connectedPeers,
		n.logger,
	)
	if err != nil {
		return nil, err
	}

	return casper.NewStandaloneHandler(n.approval, n.comm, n.logger), nil
}

// initGenesisValidator reads the expected genesis parameters and returns
// the GenesisValidator handler.
func (n *Node) initGenesisValidator(env casper.Env) (casper.Handler, error) {
	if n.validatorKey == nil {
		return nil, fmt.Errorf("the approve-genesis role requires a validator key")
	}

	bonds, err := genesis.ParseBonds(n.conf.BondsFile)
	if err != nil {
		return nil, err
	}

	wallets, err := n.readWallets()
	if err != nil {
		return nil, err
	}

	approver := casper.NewBlockApproverProtocol(
		n.validatorKey,
		n.conf.DeployTimestamp,
		genesis.BondsMap(bonds),
		wallets,
		n.conf.MinimumBond,
		n.conf.MaximumBond,
		n.conf.HasFaucet,
		n.conf.RequiredSigs,
		n.comm,
		n.logger,
	)

	return casper.NewGenesisValidatorHandler(
		approver,
		n.validatorKey,
		n.conf.ShardID,
		env,
		n.comm,
		n.logger,
	), nil
}

// initBootstrap parses the known validators and returns the Bootstrap
// handler. The bootstrap requester starts in Run.
func (n *Node) initBootstrap(env casper.Env) (casper.Handler, error) {
	knownValidators := map[string]bool{}

	if _, err := os.Stat(n.conf.KnownValidatorsFile); err == nil {
		knownValidators, err = peers.ReadKnownValidators(n.conf.KnownValidatorsFile)
		if err != nil {
			return nil, err
		}
	} else {
		n.logger.WithField("path", n.conf.KnownValidatorsFile).Warn("No known-validators file; approved blocks cannot be validated")
	}

	return casper.NewBootstrapHandler(
		knownValidators,
		n.conf.RequiredSigs,
		n.validatorKey,
		n.conf.ShardID,
		env,
		n.comm,
		n.logger,
	), nil
}

func (n *Node) readWallets() ([]genesis.Wallet, error) {
	if _, err := os.Stat(n.conf.WalletsFile); err != nil {
		return nil, nil
	}
	return genesis.ParseWallets(n.conf.WalletsFile)
}

// connectedPeers returns every peer except ourselves.
func (n *Node) connectedPeers() []*peers.Peer {
	return peers.ExcludePeer(n.peerSet.Peers, n.localPeer.NetAddr)
}

// RunAsync calls Run in a separate goroutine.
func (n *Node) RunAsync() {
	go n.Run()
}

// Run starts the transport, the role's background routines, and the packet
// pump. It returns when the node shuts down.
func (n *Node) Run() {
	n.trans.Listen()

	switch n.conf.Role() {
	case config.RoleStandalone:
		n.goFunc(func() { n.approval.Run(n.shutdownCh) })
		n.goFunc(func() { n.packetHandler.RunApprovalLoop(n.conf.ApproveGenesisInterval, n.shutdownCh) })
	case config.RoleDefault:
		n.goFunc(n.requestApprovedBlocks)
	}

	for {
		select {
		case rp := <-n.netCh:
			n.goFunc(func() {
				n.packetHandler.Handle(rp.From, rp.Packet)
			})
		case <-n.shutdownCh:
			return
		case <-n.sigintCh:
			n.logger.Debug("Reacting to SIGINT - SHUTDOWN")
			n.Shutdown()
			return
		}
	}
}

// requestApprovedBlocks asks peers for an approved block after the initial
// delay, and keeps asking on the same period until the node transitions.
func (n *Node) requestApprovedBlocks() {
	for {
		select {
		case <-n.shutdownCh:
			return
		case <-time.After(n.conf.BootstrapRequestDelay):
		}

		if n.cell.Get().Name() == "ApprovedBlockReceived" {
			return
		}

		err := n.comm.SendApprovedBlockRequestToAll(n.conf.ShardID, n.connectedPeers())
		if err != nil {
			n.logger.WithError(err).Error("Requesting approved block")
		}
	}
}

// Shutdown stops the background routines, waits for in-flight packets, and
// closes the transport and the stores.
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		n.logger.Debug("Shutdown")

		close(n.shutdownCh)

		n.waitRoutines()

		//transport and stores should only be closed once all concurrent
		//operations are finished, otherwise they will panic trying to use
		//closed objects
		n.trans.Close()
		n.blockStore.Close()
		n.dagStorage.Close()
	})
}

// State returns the name of the active handler.
func (n *Node) State() string {
	return n.cell.Get().Name()
}

// Registry exposes the node's metric registry to the status service.
func (n *Node) Registry() *prometheus.Registry {
	return n.registry
}

// BlockStore ...
func (n *Node) BlockStore() store.BlockStore {
	return n.blockStore
}

// LastApprovedBlock returns the adopted approved block, nil before the
// transition.
func (n *Node) LastApprovedBlock() *message.ApprovedBlock {
	last := n.lab.Get()
	if last == nil {
		return nil
	}
	return last.ApprovedBlock
}

// GetStats returns stats
func (n *Node) GetStats() map[string]string {
	timeElapsed := time.Since(n.start)

	return map[string]string{
		"state":      n.State(),
		"moniker":    n.localPeer.Moniker,
		"num_peers":  strconv.Itoa(len(n.connectedPeers())),
		"shard_id":   n.conf.ShardID,
		"uptime_sec": strconv.FormatFloat(timeElapsed.Seconds(), 'f', 0, 64),
	}
}
