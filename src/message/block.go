package message

import (
	"crypto/ecdsa"

	"github.com/caspernetworks/casper/src/common"
	"github.com/caspernetworks/casper/src/crypto"
	"github.com/caspernetworks/casper/src/crypto/keys"
)

// Bond ties a validator's public key to its stake in the network.
type Bond struct {
	Validator []byte
	Stake     int64
}

// Deploy is a unit of work included in a block. The node does not execute
// deploys itself; they are handed to the execution engine which derives the
// state transforms.
type Deploy struct {
	Account   []byte
	Code      []byte
	Nonce     int64
	Timestamp int64
}

// BlockBody carries everything that is signed over.
type BlockBody struct {
	Parents       [][]byte
	Sender        []byte //validator public key, uncompressed form
	ShardID       string
	Timestamp     int64
	Bonds         []Bond
	Deploys       []Deploy
	PostStateHash []byte
}

//Marshal - canonical encoding of body only
func (bb *BlockBody) Marshal() ([]byte, error) {
	return marshal(bb)
}

// Unmarshal ...
func (bb *BlockBody) Unmarshal(data []byte) error {
	return unmarshal(data, bb)
}

// Hash ...
func (bb *BlockBody) Hash() ([]byte, error) {
	hashBytes, err := bb.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(hashBytes), nil
}

// Signature is a validator's signature over a digest. PublicKey is the
// uncompressed form of the signing key; Sig is the string encoding produced
// by keys.EncodeSignature.
type Signature struct {
	PublicKey []byte
	Sig       string
}

// ValidatorHex ...
func (s *Signature) ValidatorHex() string {
	return common.EncodeToString(s.PublicKey)
}

// Block is the unit of the casper DAG. Its hash is the SHA256 of the
// canonical body encoding, cached after first use.
type Block struct {
	Body BlockBody

	hash []byte
	hex  string
}

// Sender ...
func (b *Block) Sender() []byte {
	return b.Body.Sender
}

// Parents ...
func (b *Block) Parents() [][]byte {
	return b.Body.Parents
}

// Marshal ...
func (b *Block) Marshal() ([]byte, error) {
	return marshal(b.Body)
}

// Unmarshal ...
func (b *Block) Unmarshal(data []byte) error {
	return unmarshal(data, &b.Body)
}

// Hash returns the content address of the block.
func (b *Block) Hash() ([]byte, error) {
	if len(b.hash) == 0 {
		hashBytes, err := b.Body.Hash()
		if err != nil {
			return nil, err
		}
		b.hash = hashBytes
	}
	return b.hash, nil
}

// Hex ...
func (b *Block) Hex() string {
	if b.hex == "" {
		hash, _ := b.Hash()
		b.hex = common.EncodeToString(hash)
	}
	return b.hex
}

// Sign produces the sender's signature over the block hash.
func (b *Block) Sign(privKey *ecdsa.PrivateKey) (Signature, error) {
	signBytes, err := b.Hash()
	if err != nil {
		return Signature{}, err
	}
	return SignDigest(privKey, signBytes)
}

// Verify checks sig against the block hash.
func (b *Block) Verify(sig Signature) (bool, error) {
	signBytes, err := b.Hash()
	if err != nil {
		return false, err
	}
	return VerifyDigest(sig, signBytes)
}

// SignDigest signs an arbitrary digest, recording the signer's public key.
func SignDigest(privKey *ecdsa.PrivateKey, digest []byte) (Signature, error) {
	R, S, err := keys.Sign(privKey, digest)
	if err != nil {
		return Signature{}, err
	}
	return Signature{
		PublicKey: keys.FromPublicKey(&privKey.PublicKey),
		Sig:       keys.EncodeSignature(R, S),
	}, nil
}

// VerifyDigest checks that sig is a valid signature of digest by the key it
// carries.
func VerifyDigest(sig Signature, digest []byte) (bool, error) {
	pubKey := keys.ToPublicKey(sig.PublicKey)
	if pubKey == nil {
		return false, nil
	}

	r, s, err := keys.DecodeSignature(sig.Sig)
	if err != nil {
		return false, err
	}

	return keys.Verify(pubKey, digest, r, s), nil
}
