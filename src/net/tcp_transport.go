package net

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/caspernetworks/casper/src/peers"
	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
)

/*
TCPTransport streams casper blobs over pooled TCP connections. Each blob is
framed as its canonical json encoding on the wire; a connection carries a
sequence of blobs in one direction only. Incoming blobs are pushed on the
consumer channel; when that channel is full the push is retried after a
second so a slow consumer backpressures the socket instead of dropping
packets.
*/
type TCPTransport struct {
	logger *logrus.Entry

	connPool     map[string][]*netConn
	connPoolLock sync.Mutex
	maxPool      int

	consumeCh chan RemotePacket

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	stream StreamLayer

	timeout time.Duration
}

type netConn struct {
	target string
	conn   net.Conn
	w      *bufio.Writer
	enc    *codec.Encoder
}

// Release closes the underlying connection
func (n *netConn) Release() error {
	return n.conn.Close()
}

// NewTCPTransport binds to bindAddr and returns a ready transport. The
// maxPool controls how many connections we will pool per target. The timeout
// is used to apply I/O deadlines.
func NewTCPTransport(
	bindAddr string,
	maxPool int,
	timeout time.Duration,
	logger *logrus.Entry,
) (*TCPTransport, error) {

	stream, err := NewTCPStreamLayer(bindAddr)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	trans := &TCPTransport{
		connPool:   make(map[string][]*netConn),
		consumeCh:  make(chan RemotePacket, 16),
		logger:     logger,
		maxPool:    maxPool,
		shutdownCh: make(chan struct{}),
		stream:     stream,
		timeout:    timeout,
	}

	return trans, nil
}

// Listen starts the accept loop.
func (t *TCPTransport) Listen() {
	go t.listen()
}

// Consumer implements the Transport interface.
func (t *TCPTransport) Consumer() <-chan RemotePacket {
	return t.consumeCh
}

// LocalAddr implements the Transport interface.
func (t *TCPTransport) LocalAddr() string {
	addr := t.stream.Addr()

	if addr != nil {
		return addr.String()
	}

	return ""
}

// Stream implements the Transport interface. Send failures are per-target:
// they are logged and the remaining targets are still attempted.
func (t *TCPTransport) Stream(targets []*peers.Peer, blob Blob) error {
	if t.isShutdown() {
		return ErrTransportShutdown
	}

	for _, target := range targets {
		if err := t.streamTo(target.NetAddr, blob); err != nil {
			t.logger.WithFields(logrus.Fields{
				"target": target.NetAddr,
				"error":  err,
			}).Error("Streaming blob")
		}
	}

	return nil
}

func (t *TCPTransport) streamTo(target string, blob Blob) error {
	conn, err := t.getConn(target)
	if err != nil {
		return err
	}

	if t.timeout > 0 {
		conn.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	}

	if err := conn.enc.Encode(blob); err != nil {
		conn.Release()
		return err
	}

	if err := conn.w.Flush(); err != nil {
		conn.Release()
		return err
	}

	t.returnConn(conn)
	return nil
}

// Close is used to stop the TCP transport.
func (t *TCPTransport) Close() error {
	t.shutdownLock.Lock()
	defer t.shutdownLock.Unlock()

	if !t.shutdown {
		close(t.shutdownCh)
		t.stream.Close()

		t.shutdown = true
	}
	return nil
}

func (t *TCPTransport) isShutdown() bool {
	t.shutdownLock.Lock()
	defer t.shutdownLock.Unlock()
	return t.shutdown
}

func (t *TCPTransport) listen() {
	for {
		conn, err := t.stream.Accept()
		if err != nil {
			if t.isShutdown() {
				return
			}
			t.logger.WithError(err).Error("Failed to accept connection")
			continue
		}

		t.logger.WithFields(logrus.Fields{
			"node":   t.LocalAddr(),
			"remote": conn.RemoteAddr(),
		}).Debug("accepted connection")

		go t.handleConn(conn)
	}
}

// handleConn decodes a sequence of blobs off the connection and pushes them
// on the consumer channel.
func (t *TCPTransport) handleConn(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(r, jh)

	for {
		var blob Blob
		if err := dec.Decode(&blob); err != nil {
			if !t.isShutdown() {
				t.logger.WithError(err).Debug("Connection closed")
			}
			return
		}

		rp := RemotePacket{From: blob.Sender, Packet: blob.Packet}

		for {
			select {
			case t.consumeCh <- rp:
			case <-t.shutdownCh:
				return
			default:
				t.logger.Debug("Consumer buffer full, retrying")
				time.Sleep(time.Second)
				continue
			}
			break
		}
	}
}

func (t *TCPTransport) getConn(target string) (*netConn, error) {
	if conn := t.getPooledConn(target); conn != nil {
		return conn, nil
	}

	conn, err := t.stream.Dial(target, t.timeout)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriter(conn)
	jh := new(codec.JsonHandle)
	jh.Canonical = true

	netConn := &netConn{
		target: target,
		conn:   conn,
		w:      w,
		enc:    codec.NewEncoder(w, jh),
	}

	return netConn, nil
}

func (t *TCPTransport) getPooledConn(target string) *netConn {
	t.connPoolLock.Lock()
	defer t.connPoolLock.Unlock()

	conns, ok := t.connPool[target]
	if !ok || len(conns) == 0 {
		return nil
	}

	var conn *netConn
	num := len(conns)
	conn, conns[num-1] = conns[num-1], nil
	t.connPool[target] = conns[:num-1]
	return conn
}

func (t *TCPTransport) returnConn(conn *netConn) {
	t.connPoolLock.Lock()
	defer t.connPoolLock.Unlock()

	key := conn.target
	conns := t.connPool[key]

	if !t.shutdown && len(conns) < t.maxPool {
		t.connPool[key] = append(conns, conn)
	} else {
		conn.Release()
	}
}
