package net

import (
	"errors"

	"github.com/caspernetworks/casper/src/message"
	"github.com/caspernetworks/casper/src/peers"
)

var (
	// ErrTransportShutdown is returned when operations on a transport are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")
)

// Blob is the unit a node streams to its peers: the sender's identity plus a
// routed packet.
type Blob struct {
	Sender *peers.Peer
	Packet *message.Packet
}

// RemotePacket is a packet received from a peer, as delivered on the
// Consumer channel.
type RemotePacket struct {
	From   *peers.Peer
	Packet *message.Packet
}

// Transport provides an interface for network transports to allow a node to
// communicate with other nodes.
type Transport interface {

	// Starts the transport listening
	Listen()

	// Consumer returns a channel that can be used to consume incoming
	// packets.
	Consumer() <-chan RemotePacket

	// LocalAddr is used to return our local address
	LocalAddr() string

	// Stream sends the blob to every target. Per-target failures are logged
	// and do not abort the remaining targets.
	Stream(targets []*peers.Peer, blob Blob) error

	// Close permanently closes a transport, stopping any associated
	// goroutines and freeing other resources.
	Close() error
}
