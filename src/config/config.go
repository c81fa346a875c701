package config

import (
	"crypto/ecdsa"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Role determines the initial handler of the packet-handling state machine.
type Role string

const (
	// RoleApproveGenesis is a committee member of the genesis ceremony.
	RoleApproveGenesis Role = "approve-genesis"
	// RoleStandalone runs the genesis ceremony.
	RoleStandalone Role = "standalone"
	// RoleDefault bootstraps from the network.
	RoleDefault Role = "default"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the
	// validator's private key
	DefaultKeyfile = "priv_key"

	// DefaultBadgerFile is the default name of the folder containing the
	// Badger database
	DefaultBadgerFile = "badger_db"

	// DefaultBondsFile is the default name of the bonds file inside the
	// genesis directory
	DefaultBondsFile = "bonds.txt"

	// DefaultWalletsFile is the default name of the wallets file inside the
	// genesis directory
	DefaultWalletsFile = "wallets.txt"

	// DefaultKnownValidatorsFile is the default name of the known-validators
	// file
	DefaultKnownValidatorsFile = "known_validators.txt"
)

// Default configuration values.
const (
	DefaultLogLevel               = "debug"
	DefaultBindAddr               = "127.0.0.1:40400"
	DefaultServiceAddr            = "127.0.0.1:40403"
	DefaultTCPTimeout             = 1000 * time.Millisecond
	DefaultMaxPool                = 2
	DefaultShardID                = "casper-shard"
	DefaultNumValidators          = 5
	DefaultRequiredSigs           = 0
	DefaultMinimumBond            = 1
	DefaultMaximumBond            = 1 << 50
	DefaultApproveGenesisDuration = 5 * time.Minute
	DefaultApproveGenesisInterval = 5 * time.Second
	DefaultBootstrapRequestDelay  = 20 * time.Second
	DefaultStore                  = false
)

// Config contains all the configuration properties of a casper node.
type Config struct {
	// DataDir is the top-level directory containing configuration and data.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, duplicates the log output to a file.
	LogFile string `mapstructure:"log-file"`

	// BindAddr is the local address:port where this node talks to other
	// nodes.
	BindAddr string `mapstructure:"listen"`

	// ServiceAddr is the address:port of the HTTP status service.
	ServiceAddr string `mapstructure:"service-listen"`

	// NoService disables the HTTP status service.
	NoService bool `mapstructure:"no-service"`

	// Moniker defines the friendly name of this node.
	Moniker string `mapstructure:"moniker"`

	// MaxPool controls how many connections are pooled per target.
	MaxPool int `mapstructure:"max-pool"`

	// TCPTimeout is the timeout of TCP sends.
	TCPTimeout time.Duration `mapstructure:"timeout"`

	// Store activates persistent storage for blocks.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// ApproveGenesis makes this node a committee member of the genesis
	// ceremony.
	ApproveGenesis bool `mapstructure:"approve-genesis"`

	// Standalone makes this node the genesis constructor.
	Standalone bool `mapstructure:"standalone"`

	// ShardID is bound into the protocol to prevent cross-network replay.
	ShardID string `mapstructure:"shard-id"`

	// DeployTimestamp fixes the timestamp of the genesis block. 0 means the
	// constructor picks the current time.
	DeployTimestamp int64 `mapstructure:"deploy-timestamp"`

	// WalletsFile is the path of the initial balances file.
	WalletsFile string `mapstructure:"wallets"`

	// BondsFile is the path of the genesis bonds file.
	BondsFile string `mapstructure:"bonds"`

	// GenesisPath is the directory holding generated genesis artefacts.
	GenesisPath string `mapstructure:"genesis-path"`

	// NumValidators is the size of the generated validator set when no
	// bonds file exists.
	NumValidators int `mapstructure:"num-validators"`

	// MinimumBond and MaximumBond bound the stakes accepted at genesis.
	MinimumBond int64 `mapstructure:"minimum-bond"`
	MaximumBond int64 `mapstructure:"maximum-bond"`

	// HasFaucet includes a test-token faucet in the genesis.
	HasFaucet bool `mapstructure:"has-faucet"`

	// RequiredSigs is the number of validator signatures an approved block
	// needs.
	RequiredSigs int `mapstructure:"required-sigs"`

	// ApproveGenesisDuration is the overall deadline of the genesis
	// ceremony.
	ApproveGenesisDuration time.Duration `mapstructure:"approve-genesis-duration"`

	// ApproveGenesisInterval is the re-broadcast and polling interval of
	// the ceremony.
	ApproveGenesisInterval time.Duration `mapstructure:"approve-genesis-interval"`

	// KnownValidatorsFile lists the validators a bootstrapping node trusts.
	KnownValidatorsFile string `mapstructure:"known-validators"`

	// BootstrapRequestDelay is how long a bootstrapping node waits before
	// first asking peers for an approved block.
	BootstrapRequestDelay time.Duration `mapstructure:"bootstrap-request-delay"`

	// Key is the private key of the validator. Loaded from the keyfile when
	// nil.
	Key *ecdsa.PrivateKey `mapstructure:"-"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:                DefaultDataDir(),
		LogLevel:               DefaultLogLevel,
		BindAddr:               DefaultBindAddr,
		ServiceAddr:            DefaultServiceAddr,
		MaxPool:                DefaultMaxPool,
		TCPTimeout:             DefaultTCPTimeout,
		Store:                  DefaultStore,
		DatabaseDir:            DefaultDatabaseDir(),
		ShardID:                DefaultShardID,
		NumValidators:          DefaultNumValidators,
		MinimumBond:            DefaultMinimumBond,
		MaximumBond:            DefaultMaximumBond,
		RequiredSigs:           DefaultRequiredSigs,
		ApproveGenesisDuration: DefaultApproveGenesisDuration,
		ApproveGenesisInterval: DefaultApproveGenesisInterval,
		BootstrapRequestDelay:  DefaultBootstrapRequestDelay,
	}

	config.GenesisPath = filepath.Join(config.DataDir, "genesis")
	config.BondsFile = filepath.Join(config.GenesisPath, DefaultBondsFile)
	config.WalletsFile = filepath.Join(config.GenesisPath, DefaultWalletsFile)
	config.KnownValidatorsFile = filepath.Join(config.DataDir, DefaultKnownValidatorsFile)

	return config
}

// Role derives the node role from the discriminating flags; standalone wins
// over approve-genesis when both are set.
func (c *Config) Role() Role {
	if c.Standalone {
		return RoleStandalone
	}
	if c.ApproveGenesis {
		return RoleApproveGenesis
	}
	return RoleDefault
}

// SetDataDir sets the top-level directory, and updates the dependent paths
// that are still at their default value.
func (c *Config) SetDataDir(dataDir string) {
	defaults := NewDefaultConfig()

	c.DataDir = dataDir

	if c.DatabaseDir == defaults.DatabaseDir {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
	if c.GenesisPath == defaults.GenesisPath {
		c.GenesisPath = filepath.Join(dataDir, "genesis")
		c.BondsFile = filepath.Join(c.GenesisPath, DefaultBondsFile)
		c.WalletsFile = filepath.Join(c.GenesisPath, DefaultWalletsFile)
	}
	if c.KnownValidatorsFile == defaults.KnownValidatorsFile {
		c.KnownValidatorsFile = filepath.Join(dataDir, DefaultKnownValidatorsFile)
	}
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// Logger returns a formatted logrus Entry with prefix set to "casper".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			pathMap := lfshook.PathMap{}
			for _, level := range logrus.AllLevels {
				if level <= c.logger.Level {
					pathMap[level] = c.LogFile
				}
			}
			c.logger.Hooks.Add(lfshook.NewHook(
				pathMap,
				new(prefixed.TextFormatter),
			))
		}
	}
	return c.logger.WithField("prefix", "casper")
}

// DefaultDatabaseDir returns the default path for the badger database
// files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir returns the default directory name for top-level casper
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Casper")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Casper")
		} else {
			return filepath.Join(home, ".casper")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
