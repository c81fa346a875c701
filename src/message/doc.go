// Package message defines the protocol messages exchanged between casper
// nodes and their canonical wire encoding.
//
// Every message travels inside a Packet: a registered type identifier plus
// the canonical encoding of the message. The type identifiers are part of
// the wire contract; changing one is a network-breaking change.
package message
