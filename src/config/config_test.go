package config

import (
	"path/filepath"
	"testing"
)

func TestRoleDerivation(t *testing.T) {
	conf := NewDefaultConfig()

	if conf.Role() != RoleDefault {
		t.Fatalf("role = %s, want %s", conf.Role(), RoleDefault)
	}

	conf.ApproveGenesis = true
	if conf.Role() != RoleApproveGenesis {
		t.Fatalf("role = %s, want %s", conf.Role(), RoleApproveGenesis)
	}

	//standalone wins when both discriminators are set
	conf.Standalone = true
	if conf.Role() != RoleStandalone {
		t.Fatalf("role = %s, want %s", conf.Role(), RoleStandalone)
	}
}

func TestSetDataDir(t *testing.T) {
	conf := NewDefaultConfig()
	conf.SetDataDir("/tmp/casper-test")

	if conf.DatabaseDir != filepath.Join("/tmp/casper-test", DefaultBadgerFile) {
		t.Fatalf("database dir not moved: %s", conf.DatabaseDir)
	}

	if conf.BondsFile != filepath.Join("/tmp/casper-test", "genesis", DefaultBondsFile) {
		t.Fatalf("bonds file not moved: %s", conf.BondsFile)
	}

	if conf.KnownValidatorsFile != filepath.Join("/tmp/casper-test", DefaultKnownValidatorsFile) {
		t.Fatalf("known validators file not moved: %s", conf.KnownValidatorsFile)
	}
}

func TestSetDataDirKeepsExplicitPaths(t *testing.T) {
	conf := NewDefaultConfig()
	conf.DatabaseDir = "/somewhere/else"
	conf.SetDataDir("/tmp/casper-test")

	if conf.DatabaseDir != "/somewhere/else" {
		t.Fatalf("explicit database dir was overridden: %s", conf.DatabaseDir)
	}
}
