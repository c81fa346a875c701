package genesis

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/caspernetworks/casper/src/message"
	"github.com/sirupsen/logrus"
)

// ParseBonds reads a bonds file: one "<public key hex> <stake>" pair per
// line. Blank lines and '#' comments are skipped.
func ParseBonds(path string) ([]message.Bond, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	bonds := []message.Bond{}
	for i, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("bonds file, line %d: want '<pubkey> <stake>', got %q", i+1, line)
		}

		pubKey, err := decodeHexKey(fields[0])
		if err != nil {
			return nil, fmt.Errorf("bonds file, line %d: %v", i+1, err)
		}

		stake, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bonds file, line %d: %v", i+1, err)
		}

		bonds = append(bonds, message.Bond{Validator: pubKey, Stake: stake})
	}

	sortBonds(bonds)

	return bonds, nil
}

// GenerateBonds creates numValidators fresh keys, writes the bonds file at
// path and a "<pubkey hex>.sk" keyfile per validator next to it, and
// returns the bonds. It is what a standalone node does when no bonds file
// exists yet.
func GenerateBonds(path string, numValidators int, logger *logrus.Entry) ([]message.Bond, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"path":       path,
		"validators": numValidators,
	}).Info("No bonds file found; generating a genesis validator set.")

	bonds := []message.Bond{}
	lines := []string{}

	for i := 0; i < numValidators; i++ {
		key, err := keys.GenerateECDSAKey()
		if err != nil {
			return nil, err
		}

		pubBytes := keys.FromPublicKey(&key.PublicKey)
		pubHex := common.EncodeToString(pubBytes)
		stake := int64(i + 1)

		bonds = append(bonds, message.Bond{Validator: pubBytes, Stake: stake})
		lines = append(lines, fmt.Sprintf("%s %d", pubHex, stake))

		skPath := filepath.Join(dir, pubHex+".sk")
		if err := keys.NewSimpleKeyfile(skPath).WriteKey(key); err != nil {
			return nil, err
		}
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := ioutil.WriteFile(path, []byte(content), 0600); err != nil {
		return nil, err
	}

	sortBonds(bonds)

	return bonds, nil
}

// ParseOrGenerateBonds reads the bonds file, generating one when it does
// not exist.
func ParseOrGenerateBonds(path string, numValidators int, logger *logrus.Entry) ([]message.Bond, error) {
	if _, err := os.Stat(path); err == nil {
		return ParseBonds(path)
	}
	return GenerateBonds(path, numValidators, logger)
}

// BondsMap keys the bonds by the canonical hex form of the validator key.
func BondsMap(bonds []message.Bond) map[string]int64 {
	m := make(map[string]int64, len(bonds))
	for _, b := range bonds {
		m[common.EncodeToString(b.Validator)] = b.Stake
	}
	return m
}

func sortBonds(bonds []message.Bond) {
	sort.Slice(bonds, func(i, j int) bool {
		return common.EncodeToString(bonds[i].Validator) < common.EncodeToString(bonds[j].Validator)
	})
}

func decodeHexKey(s string) ([]byte, error) {
	if strings.HasPrefix(strings.ToUpper(s), "0X") {
		return common.DecodeFromString("0X" + s[2:])
	}
	return common.DecodeFromString("0X" + s)
}
