package commands

import (
	"crypto/ecdsa"
	"os"

	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/dag"
	"github.com/caspernetworks/casper/src/execution"
	"github.com/caspernetworks/casper/src/net"
	"github.com/caspernetworks/casper/src/node"
	"github.com/caspernetworks/casper/src/peers"
	"github.com/caspernetworks/casper/src/service"
	"github.com/caspernetworks/casper/src/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts a casper node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runCasper,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runCasper(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	key, err := loadOrCreateKey()
	if err != nil {
		logger.Error("Cannot load private key:", err)
		return err
	}

	localPeer := peers.NewPeer(
		keys.PublicKeyHex(&key.PublicKey),
		_config.BindAddr,
		_config.Moniker,
	)

	peerSet, err := loadPeers(localPeer)
	if err != nil {
		logger.Error("Cannot load peers:", err)
		return err
	}

	trans, err := net.NewTCPTransport(
		_config.BindAddr,
		_config.MaxPool,
		_config.TCPTimeout,
		logger,
	)
	if err != nil {
		logger.Error("Cannot initialize transport:", err)
		return err
	}

	blockStore, err := initStore(logger)
	if err != nil {
		logger.Error("Cannot initialize store:", err)
		return err
	}

	engine := execution.NewInmemEngine(logger)

	n := node.NewNode(
		_config,
		key,
		localPeer,
		peerSet,
		trans,
		blockStore,
		dag.NewInmemStorage(),
		engine,
	)

	if err := n.Init(); err != nil {
		logger.Error("Cannot initialize node:", err)
		return err
	}

	if !_config.NoService {
		svc := service.NewService(_config.ServiceAddr, n, logger)
		go svc.Serve()
	}

	n.Run()

	return nil
}

// loadOrCreateKey reads the keyfile, generating a fresh key when no file
// exists yet.
func loadOrCreateKey() (*ecdsa.PrivateKey, error) {
	keyfile := keys.NewSimpleKeyfile(_config.Keyfile())

	if _, err := os.Stat(_config.Keyfile()); err == nil {
		return keyfile.ReadKey()
	}

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(_config.DataDir, 0700); err != nil {
		return nil, err
	}

	if err := keyfile.WriteKey(key); err != nil {
		return nil, err
	}

	return key, nil
}

// loadPeers reads peers.json from the datadir; a missing file leaves the
// node alone with itself, which is what a fresh standalone node wants.
func loadPeers(localPeer *peers.Peer) (*peers.PeerSet, error) {
	peerStore := peers.NewJSONPeers(_config.DataDir)

	peerSet, err := peerStore.Peers()
	if err != nil {
		if os.IsNotExist(err) {
			return peers.NewPeerSet([]*peers.Peer{localPeer}), nil
		}
		return nil, err
	}

	return peerSet, nil
}

func initStore(logger *logrus.Entry) (store.BlockStore, error) {
	if !_config.Store {
		logger.Debug("Created new in-mem block store")
		return store.NewInmemStore(), nil
	}

	logger.WithField("path", _config.DatabaseDir).Debug("Opening badger block store")
	return store.NewBadgerStore(_config.DatabaseDir)
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.LogFile, "Duplicate log output to this file")
	cmd.Flags().String("moniker", _config.Moniker, "Optional name")

	// Network
	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port for casper node")
	cmd.Flags().DurationP("timeout", "t", _config.TCPTimeout, "TCP Timeout")
	cmd.Flags().Int("max-pool", _config.MaxPool, "Connection pool size max")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().Bool("no-service", _config.NoService, "Disable the HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.DatabaseDir, "Database directory")

	// Role
	cmd.Flags().Bool("approve-genesis", _config.ApproveGenesis, "Participate in the genesis approval ceremony as a validator")
	cmd.Flags().Bool("standalone", _config.Standalone, "Construct the genesis and run the approval ceremony")

	// Genesis
	cmd.Flags().String("shard-id", _config.ShardID, "Shard identifier")
	cmd.Flags().Int64("deploy-timestamp", _config.DeployTimestamp, "Timestamp of the genesis block (0 = now)")
	cmd.Flags().String("wallets", _config.WalletsFile, "Initial balances file")
	cmd.Flags().String("bonds", _config.BondsFile, "Genesis bonds file")
	cmd.Flags().String("genesis-path", _config.GenesisPath, "Directory for generated genesis artefacts")
	cmd.Flags().Int("num-validators", _config.NumValidators, "Validators to generate when no bonds file exists")
	cmd.Flags().Int64("minimum-bond", _config.MinimumBond, "Minimum stake accepted at genesis")
	cmd.Flags().Int64("maximum-bond", _config.MaximumBond, "Maximum stake accepted at genesis")
	cmd.Flags().Bool("has-faucet", _config.HasFaucet, "Include a test-token faucet in the genesis")
	cmd.Flags().Int("required-sigs", _config.RequiredSigs, "Validator signatures required on an approved block")
	cmd.Flags().Duration("approve-genesis-duration", _config.ApproveGenesisDuration, "Overall deadline of the genesis ceremony")
	cmd.Flags().Duration("approve-genesis-interval", _config.ApproveGenesisInterval, "Re-broadcast interval of the genesis ceremony")
	cmd.Flags().String("known-validators", _config.KnownValidatorsFile, "File listing the validators a bootstrapping node trusts")
	cmd.Flags().Duration("bootstrap-request-delay", _config.BootstrapRequestDelay, "Delay before a bootstrapping node asks for an approved block")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not the dependent paths, this
	// will update them to live inside the new datadir
	_config.SetDataDir(_config.DataDir)

	_config.Logger().WithFields(logrus.Fields{
		"DataDir":                _config.DataDir,
		"BindAddr":               _config.BindAddr,
		"ServiceAddr":            _config.ServiceAddr,
		"MaxPool":                _config.MaxPool,
		"Store":                  _config.Store,
		"LogLevel":               _config.LogLevel,
		"Moniker":                _config.Moniker,
		"Role":                   _config.Role(),
		"ShardID":                _config.ShardID,
		"RequiredSigs":           _config.RequiredSigs,
		"ApproveGenesisDuration": _config.ApproveGenesisDuration,
		"ApproveGenesisInterval": _config.ApproveGenesisInterval,
		"BootstrapRequestDelay":  _config.BootstrapRequestDelay,
	}).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all
	// other persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/casper.toml (.json, .yaml also work)
	viper.SetConfigName("casper")        // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from the config file
	return viper.Unmarshal(_config)
}
