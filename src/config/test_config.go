package config

import (
	"testing"

	"github.com/caspernetworks/casper/src/common"
)

// NewTestConfig returns a config object with default values and a logger
// that writes through the test, so that log output only shows for failed
// tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	return config
}
