// Package keys implements the public key cryptography used throughout the
// casper node.
//
// A validator owns a cryptographic key-pair that it uses to sign genesis
// candidates and blocks, and to verify approvals produced by other
// validators. The private key is secret but the public key is part of the
// bonds file and of every signature travelling on the wire.
//
// Keys are ECDSA on the secp256k1 curve, the same curve used by Bitcoin and
// Ethereum.
package keys
