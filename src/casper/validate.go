package casper

import (
	"github.com/caspernetworks/casper/src/message"
)

// ValidateApprovedBlock checks that the candidate is signed by at least
// requiredSigs distinct members of the trusted validator set, and that every
// counted signature verifies against the candidate digest. Signatures from
// keys outside the trusted set are ignored, as are duplicates from the same
// key. A zero threshold is trivially satisfied; that is the unsafe dev-mode
// setting.
func ValidateApprovedBlock(ab *message.ApprovedBlock, trusted map[string]bool, requiredSigs int) (bool, error) {
	if ab.Candidate.Block == nil {
		return false, nil
	}

	digest, err := ab.Candidate.Hash()
	if err != nil {
		return false, err
	}

	seen := make(map[string]bool)
	count := 0

	for _, sig := range ab.Sigs {
		validator := sig.ValidatorHex()

		if !trusted[validator] || seen[validator] {
			continue
		}

		ok, err := message.VerifyDigest(sig, digest)
		if err != nil || !ok {
			continue
		}

		seen[validator] = true
		count++
	}

	return count >= requiredSigs, nil
}
