package genesis

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/message"
	"github.com/sirupsen/logrus"
)

func testEntry(t *testing.T) *logrus.Entry {
	return common.NewTestLogger(t).WithField("prefix", "test")
}

func TestParseBonds(t *testing.T) {
	key1, _ := keys.GenerateECDSAKey()
	key2, _ := keys.GenerateECDSAKey()

	hex1 := common.EncodeToString(keys.FromPublicKey(&key1.PublicKey))
	hex2 := common.EncodeToString(keys.FromPublicKey(&key2.PublicKey))

	path := filepath.Join(t.TempDir(), "bonds.txt")
	content := fmt.Sprintf("# genesis bonds\n%s 10\n\n%s 20\n", hex1, hex2)
	if err := ioutil.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	bonds, err := ParseBonds(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(bonds) != 2 {
		t.Fatalf("parsed %d bonds, want 2", len(bonds))
	}

	m := BondsMap(bonds)
	if m[hex1] != 10 || m[hex2] != 20 {
		t.Fatalf("unexpected stakes: %v", m)
	}
}

func TestParseBondsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bonds.txt")
	if err := ioutil.WriteFile(path, []byte("not a bond line\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseBonds(path); err == nil {
		t.Fatal("garbage bonds file should not parse")
	}
}

func TestGenerateBonds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bonds.txt")

	bonds, err := GenerateBonds(path, 3, testEntry(t))
	if err != nil {
		t.Fatal(err)
	}

	if len(bonds) != 3 {
		t.Fatalf("generated %d bonds, want 3", len(bonds))
	}

	//the file must parse back to the same set
	parsed, err := ParseBonds(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(parsed) != 3 {
		t.Fatalf("parsed %d bonds, want 3", len(parsed))
	}

	parsedMap := BondsMap(parsed)
	for validator, stake := range BondsMap(bonds) {
		if parsedMap[validator] != stake {
			t.Fatalf("stake mismatch for %s", validator)
		}
	}

	//each validator got a keyfile whose key matches its bond
	for validator := range parsedMap {
		skPath := filepath.Join(dir, validator+".sk")

		key, err := keys.NewSimpleKeyfile(skPath).ReadKey()
		if err != nil {
			t.Fatalf("reading %s: %v", skPath, err)
		}

		if common.EncodeToString(keys.FromPublicKey(&key.PublicKey)) != validator {
			t.Fatal("keyfile does not match the bonded validator")
		}
	}
}

func TestParseWallets(t *testing.T) {
	key, _ := keys.GenerateECDSAKey()
	hex := common.EncodeToString(keys.FromPublicKey(&key.PublicKey))

	path := filepath.Join(t.TempDir(), "wallets.txt")
	content := fmt.Sprintf("# initial balances\n%s,1000\n", hex)
	if err := ioutil.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	wallets, err := ParseWallets(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(wallets) != 1 {
		t.Fatalf("parsed %d wallets, want 1", len(wallets))
	}
	if wallets[0].Balance != 1000 {
		t.Fatalf("balance = %d, want 1000", wallets[0].Balance)
	}
}

func TestGenesisDeterminism(t *testing.T) {
	key1, _ := keys.GenerateECDSAKey()
	key2, _ := keys.GenerateECDSAKey()

	bonds := []message.Bond{
		{Validator: keys.FromPublicKey(&key1.PublicKey), Stake: 10},
		{Validator: keys.FromPublicKey(&key2.PublicKey), Stake: 20},
	}

	//same inputs, different input order: same block
	reversed := []message.Bond{bonds[1], bonds[0]}

	first, err := NewGenesisBlock(bonds, nil, 1, 100, false, "shard", 42)
	if err != nil {
		t.Fatal(err)
	}

	second, err := NewGenesisBlock(reversed, nil, 1, 100, false, "shard", 42)
	if err != nil {
		t.Fatal(err)
	}

	if first.Hex() != second.Hex() {
		t.Fatalf("genesis is not deterministic: %s != %s", first.Hex(), second.Hex())
	}

	//a different shard produces a different genesis
	other, err := NewGenesisBlock(bonds, nil, 1, 100, false, "other-shard", 42)
	if err != nil {
		t.Fatal(err)
	}
	if other.Hex() == first.Hex() {
		t.Fatal("different shards should not share a genesis")
	}
}

func TestGenesisRejectsOutOfBoundsStake(t *testing.T) {
	key, _ := keys.GenerateECDSAKey()

	bonds := []message.Bond{{Validator: keys.FromPublicKey(&key.PublicKey), Stake: 5000}}

	if _, err := NewGenesisBlock(bonds, nil, 1, 100, false, "shard", 42); err == nil {
		t.Fatal("a stake above maximumBond should be rejected")
	}
}
