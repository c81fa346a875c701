package peers

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/caspernetworks/casper/src/common"
)

// ReadKnownValidators parses a known-validators file: one hex encoded public
// key per line. Blank lines and lines starting with '#' are skipped. The
// result is keyed by the canonical 0X hex form of the key.
func ReadKnownValidators(path string) (map[string]bool, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	validators := make(map[string]bool)
	for i, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		trimmed := line
		if strings.HasPrefix(strings.ToUpper(line), "0X") {
			trimmed = line[2:]
		}

		raw, err := hex.DecodeString(trimmed)
		if err != nil {
			return nil, fmt.Errorf("known validators file, line %d: %v", i+1, err)
		}

		validators[common.EncodeToString(raw)] = true
	}

	return validators, nil
}
