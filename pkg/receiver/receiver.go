// Package receiver implements ReceiverPeer: drives a transfer by
// repeatedly requesting the next ordered chunk at the current stream
// offset and writing accepted payloads to its sink, until the sender
// replies with a short payload.
//
// Grounded on the same peermgr.Peer construction-starts-the-worker shape
// as pkg/sender, mirrored for the receiver's request/response role.
package receiver

import (
	"errors"
	"net"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/1Radiation1/Networking/pkg/netio"
	"github.com/1Radiation1/Networking/pkg/sink"
	"github.com/1Radiation1/Networking/pkg/transfer"
	"github.com/1Radiation1/Networking/pkg/wire"
)

// DefaultTimeout is the readiness timeout when no WithTimeout option is given.
const DefaultTimeout = 500 * time.Millisecond

// Option configures a ReceiverPeer at construction.
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithTimeout overrides the default 500ms readiness timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// ReceiverPeer drives one transfer against a known sender address,
// writing accepted payloads to a sink in order. The worker starts at
// construction.
type ReceiverPeer struct {
	sink       sink.Sink
	senderAddr *net.UDPAddr
	timeout    time.Duration

	state *transfer.State
	log   *log.Entry

	conn *net.UDPConn

	packetSize uint16
	workingBuf []byte

	nextID uint64
	offset uint64
}

// New applies opts and starts a ReceiverPeer's worker goroutine.
func New(snk sink.Sink, peer *net.UDPAddr, opts ...Option) *ReceiverPeer {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	r := &ReceiverPeer{
		sink:       snk,
		senderAddr: peer,
		timeout:    o.timeout,
		state:      &transfer.State{},
		log:        log.WithField("prefix", "receiver"),
	}

	go r.run()
	return r
}

// IsRunning reports whether the worker is still active.
func (r *ReceiverPeer) IsRunning() bool { return !r.state.Finished() }

// ErrorOccurred reports whether the error slot has latched.
func (r *ReceiverPeer) ErrorOccurred() bool { return r.state.ErrorOccurred() }

// ErrorString returns the latched error message, or "" if none.
func (r *ReceiverPeer) ErrorString() string { return r.state.ErrorString() }

// ErrorCode returns the latched error code, or transfer.CodeNone if none.
func (r *ReceiverPeer) ErrorCode() int { return r.state.ErrorCode() }

// Stop requests the worker to exit and blocks until it has: after Stop
// returns, IsRunning is false and no further datagrams are emitted.
func (r *ReceiverPeer) Stop() {
	r.state.Stop()
	r.state.Wait()
}

// PeerAddress returns the sender address this receiver was constructed with.
func (r *ReceiverPeer) PeerAddress() *net.UDPAddr { return r.senderAddr }

// Timeout returns the configured readiness timeout.
func (r *ReceiverPeer) Timeout() time.Duration { return r.timeout }

func (r *ReceiverPeer) run() {
	defer r.cleanup()

	if !r.openSocket() {
		return
	}
	if !r.handshake() {
		return
	}
	r.requestLoop()
}

func (r *ReceiverPeer) cleanup() {
	if r.conn != nil {
		r.conn.Close()
	}
	r.state.Finish()
	r.log.Info("receiver worker exited")
}

func (r *ReceiverPeer) openSocket() bool {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		code := transfer.CodeStream
		var errno syscall.Errno
		if errors.As(err, &errno) {
			code = int(errno)
		}
		r.state.SetErr("Failed to open socket: "+err.Error(), code)
		return false
	}
	r.conn = conn
	return true
}

// handshake sends HANDSHAKE_INIT, resending on every readiness timeout,
// until a reply arrives from the configured sender address.
func (r *ReceiverPeer) handshake() bool {
	init := make([]byte, wire.HandshakeInitSize)
	wire.EncodeHandshakeInit(init)

	buf := make([]byte, wire.HandshakeAckSize)
	senderEp := netio.EndpointFromUDPAddr(r.senderAddr)

	for {
		if r.state.Stopped() {
			return false
		}
		if !netio.SendWithRetry(r.conn, r.state, init, r.senderAddr) {
			return false
		}

		result, ok, timedOut := netio.ReceiveOnce(r.conn, r.timeout, r.state, buf)
		if timedOut {
			continue
		}
		if !ok {
			return false
		}

		from := netio.EndpointFromUDPAddr(result.From)
		if !from.Equal(senderEp) {
			// Not our sender: ignore and keep waiting for the real reply.
			continue
		}

		packetSize, err := wire.DecodeHandshakeAck(buf[:result.N])
		if err != nil {
			r.state.SetErr("Invalid handshake: "+err.Error(), transfer.CodeProtocol)
			return false
		}

		r.packetSize = packetSize
		r.workingBuf = make([]byte, packetSize)
		r.log.WithField("packetSize", packetSize).Info("handshake complete")
		return true
	}
}

// requestLoop sends REQUEST(nextID, offset, N), waits for the matching
// PAYLOAD, writes its body to the sink, and advances state, repeating
// until a short payload signals end of transfer.
func (r *ReceiverPeer) requestLoop() {
	senderEp := netio.EndpointFromUDPAddr(r.senderAddr)
	req := make([]byte, wire.RequestSize)

	for {
		if r.state.Stopped() {
			return
		}

		wire.EncodeRequest(req, r.nextID, r.offset, r.packetSize)
		if !netio.SendWithRetry(r.conn, r.state, req, r.senderAddr) {
			return
		}

		result, ok, timedOut := netio.ReceiveOnce(r.conn, r.timeout, r.state, r.workingBuf)
		if timedOut {
			continue
		}
		if !ok {
			return
		}

		from := netio.EndpointFromUDPAddr(result.From)
		if !from.Equal(senderEp) {
			continue
		}

		hdr, err := wire.DecodePayloadHeader(r.workingBuf[:result.N])
		if err != nil {
			// Wrong tag: not a fatal protocol violation here, since a
			// stale retransmitted HANDSHAKE_ACK could plausibly arrive;
			// simply repeat the request per spec.md §4.3.
			continue
		}
		if hdr.ID != r.nextID {
			continue
		}

		body := r.workingBuf[wire.PayloadHeaderSize:result.N]
		if _, err := r.sink.Write(body); err != nil {
			r.state.SetErr("Stream write failed: "+err.Error(), transfer.CodeStream)
			return
		}

		r.offset += uint64(len(body))
		r.nextID++

		if result.N < int(r.packetSize) {
			return
		}
	}
}
