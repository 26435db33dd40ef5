// Package engine provides a lossy loopback transport for exercising a
// sender/receiver pair end-to-end under simulated packet loss, without
// either peer knowing it isn't talking directly to the other.
//
// Grounded on the teacher's harness/engine/network.go Network/Bootstrap
// shape (a flag-gated, on-demand integration harness: "go test -args
// -enable"), replacing grpc/exec.Command node bootstrapping with a UDP
// relay that can drop datagrams by direction and sequence number.
package engine

import (
	"flag"
	"net"
	"sync"
)

// EnableHarness gates the slower, real-socket scenario tests in this
// package. Disabled by default so `go test ./...` stays fast; enable
// with `go test ./harness/... -args -enable`.
var EnableHarness = flag.Bool("enable", false, "Enable lossy-network harness scenario tests")

// Direction identifies which leg of a relayed datagram a DropRule is
// being asked about.
type Direction int

const (
	// ReceiverToSender is a REQUEST or HANDSHAKE_INIT datagram.
	ReceiverToSender Direction = iota
	// SenderToReceiver is a HANDSHAKE_ACK or PAYLOAD datagram.
	SenderToReceiver
)

// DropRule decides whether the seq'th datagram traveling in dir should
// be dropped. seq is a 1-based per-direction sequence number.
type DropRule func(dir Direction, seq int, payload []byte) bool

// Proxy relays datagrams between a real sender socket and a receiver
// socket, applying a DropRule to simulate loss in either direction. The
// receiver is configured to talk to the proxy's address instead of the
// sender's; the proxy takes the receiver's address from every datagram
// that does not come from the sender, so the most recent such source
// gets the sender's replies.
type Proxy struct {
	conn       *net.UDPConn
	senderAddr *net.UDPAddr
	drop       DropRule

	mu           sync.Mutex
	receiverAddr *net.UDPAddr
	seqR2S       int
	seqS2R       int

	done chan struct{}
}

// NewProxy starts a Proxy relaying to senderAddr, applying drop (which
// may be nil for a lossless relay) to every forwarded datagram.
func NewProxy(senderAddr *net.UDPAddr, drop DropRule) (*Proxy, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, err
	}

	p := &Proxy{
		conn:       conn,
		senderAddr: senderAddr,
		drop:       drop,
		done:       make(chan struct{}),
	}
	go p.run()
	return p, nil
}

// Addr is the address a receiver should be constructed with in place of
// the real sender's address.
func (p *Proxy) Addr() *net.UDPAddr {
	return p.conn.LocalAddr().(*net.UDPAddr)
}

// Close stops relaying and releases the proxy's socket.
func (p *Proxy) Close() {
	p.conn.Close()
	<-p.done
}

func (p *Proxy) run() {
	defer close(p.done)

	buf := make([]byte, 65535)
	for {
		n, from, err := p.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}

		dir, seq, dst := p.classify(from)
		if dst == nil {
			continue
		}
		if p.drop != nil && p.drop(dir, seq, buf[:n]) {
			continue
		}

		_, _ = p.conn.WriteToUDP(buf[:n], dst)
	}
}

func (p *Proxy) classify(from *net.UDPAddr) (Direction, int, *net.UDPAddr) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if from.IP.Equal(p.senderAddr.IP) && from.Port == p.senderAddr.Port {
		p.seqS2R++
		return SenderToReceiver, p.seqS2R, p.receiverAddr
	}

	p.receiverAddr = from
	p.seqR2S++
	return ReceiverToSender, p.seqR2S, p.senderAddr
}
