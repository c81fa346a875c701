package net

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/caspernetworks/casper/src/peers"
)

// NewInmemAddr returns a new in-memory addr with
// a randomly generated UUID as the ID.
func NewInmemAddr() string {
	return generateUUID()
}

// generateUUID is used to generate a random UUID.
func generateUUID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("failed to read random bytes: %v", err))
	}

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%12x",
		buf[0:4],
		buf[4:6],
		buf[6:8],
		buf[8:10],
		buf[10:16])
}

// InmemTransport implements the Transport interface, to allow casper to be
// tested in-memory without going over a network.
type InmemTransport struct {
	sync.RWMutex
	consumerCh chan RemotePacket
	localAddr  string
	peers      map[string]*InmemTransport
	closed     bool
}

// NewInmemTransport is used to initialize a new transport and generates a
// random local address if none is specified
func NewInmemTransport(addr string) (string, *InmemTransport) {
	if addr == "" {
		addr = NewInmemAddr()
	}
	trans := &InmemTransport{
		consumerCh: make(chan RemotePacket, 16),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
	}
	return addr, trans
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan RemotePacket {
	return i.consumerCh
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// Stream implements the Transport interface. When a target's consumer buffer
// is full the push is retried after a second, indefinitely, so no packet is
// dropped on a slow consumer.
func (i *InmemTransport) Stream(targets []*peers.Peer, blob Blob) error {
	var err error
	for _, target := range targets {
		i.RLock()
		peerTrans, ok := i.peers[target.NetAddr]
		closed := i.closed
		i.RUnlock()

		if closed {
			return ErrTransportShutdown
		}

		if !ok {
			err = fmt.Errorf("failed to connect to peer: %v", target.NetAddr)
			continue
		}

		rp := RemotePacket{From: blob.Sender, Packet: blob.Packet}

		for {
			select {
			case peerTrans.consumerCh <- rp:
			default:
				time.Sleep(time.Second)
				continue
			}
			break
		}
	}
	return err
}

// Connect is used to connect this transport to another transport for a given
// peer name. This allows for local routing.
func (i *InmemTransport) Connect(peer string, t Transport) {
	trans := t.(*InmemTransport)
	i.Lock()
	defer i.Unlock()
	i.peers[peer] = trans
}

// Disconnect is used to remove the ability to route to a given peer.
func (i *InmemTransport) Disconnect(peer string) {
	i.Lock()
	defer i.Unlock()
	delete(i.peers, peer)
}

// DisconnectAll is used to remove all routes to peers.
func (i *InmemTransport) DisconnectAll() {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
}

// Close is used to permanently disable the transport
func (i *InmemTransport) Close() error {
	i.Lock()
	i.closed = true
	i.Unlock()
	i.DisconnectAll()
	return nil
}

// Listen is an empty function as there is no need to defer initialisation of
// the InMem transport
func (i *InmemTransport) Listen() {
}
