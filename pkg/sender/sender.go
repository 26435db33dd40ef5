// Package sender implements SenderPeer: binds a known port, accepts the
// first peer that handshakes, and serves chunk requests by reading its
// source at the requested offset. There is no FIN: the worker keeps
// serving until it is stopped or an error latches.
//
// Grounded on peermgr.Peer's construction-starts-the-worker shape
// (NewPeer never blocks; the caller observes Disconnect/error state from
// the outside) generalized to this protocol's bind/handshake/serve phases.
package sender

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/1Radiation1/Networking/pkg/netio"
	"github.com/1Radiation1/Networking/pkg/originfilter"
	"github.com/1Radiation1/Networking/pkg/source"
	"github.com/1Radiation1/Networking/pkg/transfer"
	"github.com/1Radiation1/Networking/pkg/wire"
)

// DefaultPacketSize is N when no WithPacketSize option is given.
const DefaultPacketSize = 508

// DefaultTimeout is the readiness timeout when no WithTimeout option is given.
const DefaultTimeout = 500 * time.Millisecond

// MinPacketSize is the smallest N a SenderPeer accepts: a REQUEST is 19
// bytes and must fit the peer's negotiated maxLen, so N below that can
// never carry a valid request/payload pair.
const MinPacketSize = wire.MinPacketSize

// Option configures a SenderPeer at construction.
type Option func(*options)

type options struct {
	packetSize uint16
	timeout    time.Duration
}

// WithPacketSize overrides the default 508-byte MTU hint.
func WithPacketSize(n uint16) Option {
	return func(o *options) { o.packetSize = n }
}

// WithTimeout overrides the default 500ms readiness timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// SenderPeer binds a listening port and serves one receiver's chunk
// requests until it is stopped or errors; it does not exit on its own when
// the source is exhausted or the receiver stops asking. The worker starts
// at construction.
type SenderPeer struct {
	src        source.Source
	port       uint16
	packetSize uint16
	timeout    time.Duration

	state  *transfer.State
	filter *originfilter.Filter
	log    *log.Entry

	conn *net.UDPConn

	peerAddr     *net.UDPAddr
	acknowledged bool
}

// New validates opts and starts a SenderPeer's worker goroutine. It
// returns an error only for a pre-start validation failure (packetSize
// too small); every post-start failure latches into the peer's error
// slot instead, per the observable-interface contract.
func New(src source.Source, port uint16, opts ...Option) (*SenderPeer, error) {
	o := options{packetSize: DefaultPacketSize, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.packetSize < MinPacketSize {
		return nil, fmt.Errorf("sender: packet size %d below minimum %d", o.packetSize, MinPacketSize)
	}

	s := &SenderPeer{
		src:        src,
		port:       port,
		packetSize: o.packetSize,
		timeout:    o.timeout,
		state:      &transfer.State{},
		filter:     originfilter.New(),
		log:        log.WithField("prefix", "sender"),
	}

	go s.run()
	return s, nil
}

// Port returns the configured listening port.
func (s *SenderPeer) Port() uint16 { return s.port }

// PacketSize returns the negotiated MTU hint N.
func (s *SenderPeer) PacketSize() uint16 { return s.packetSize }

// Timeout returns the configured readiness timeout.
func (s *SenderPeer) Timeout() time.Duration { return s.timeout }

// IsRunning reports whether the worker is still active.
func (s *SenderPeer) IsRunning() bool { return !s.state.Finished() }

// ErrorOccurred reports whether the error slot has latched.
func (s *SenderPeer) ErrorOccurred() bool { return s.state.ErrorOccurred() }

// ErrorString returns the latched error message, or "" if none.
func (s *SenderPeer) ErrorString() string { return s.state.ErrorString() }

// ErrorCode returns the latched error code, or transfer.CodeNone if none.
func (s *SenderPeer) ErrorCode() int { return s.state.ErrorCode() }

// Stop requests the worker to exit and blocks until it has: after Stop
// returns, IsRunning is false and no further datagrams are emitted.
func (s *SenderPeer) Stop() {
	s.state.Stop()
	s.state.Wait()
}

func (s *SenderPeer) run() {
	defer s.cleanup()

	if !s.bind() {
		return
	}
	if !s.receiveHandshake() {
		return
	}

	for !s.state.Stopped() && !s.state.ErrorOccurred() {
		if !s.announceMTU() {
			break
		}
		if s.serve() {
			break
		}
		// serve returned false without an error: pre-acknowledgement
		// recovery (§4.2.1). A stray sighting logged before this round
		// carries no information about the next, so advance the origin
		// filter's epoch before looping back to re-announce HANDSHAKE_ACK.
		s.filter.NextEpoch()
	}
}

func (s *SenderPeer) cleanup() {
	if s.conn != nil {
		s.conn.Close()
	}
	s.state.Finish()
	s.log.Info("sender worker exited")
}

func (s *SenderPeer) bind() bool {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: int(s.port)}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		code := transfer.CodeStream
		var errno syscall.Errno
		if errors.As(err, &errno) {
			code = int(errno)
		}
		s.state.SetErr("Failed the bind: "+err.Error(), code)
		return false
	}
	s.conn = conn
	s.log.WithField("port", s.port).Info("bound listening socket")
	return true
}

// receiveHandshake blocks (bounded by the readiness timeout, looping on
// the stop flag) for exactly one HANDSHAKE_INIT datagram. Its source
// address becomes peerAddr.
func (s *SenderPeer) receiveHandshake() bool {
	buf := make([]byte, s.packetSize)
	for {
		result, ok := netio.ReceiveWithRetry(s.conn, s.timeout, s.state, buf)
		if !ok {
			return false
		}

		if err := wire.DecodeHandshakeInit(buf[:result.N]); err != nil {
			s.state.SetErr("Corrupt handshake message: "+err.Error(), transfer.CodeProtocol)
			return false
		}

		s.peerAddr = result.From
		s.log.WithField("peer", s.peerAddr).Info("accepted handshake")
		return true
	}
}

// announceMTU sends HANDSHAKE_ACK, retransmitting on every readiness
// timeout until any datagram arrives on the socket.
func (s *SenderPeer) announceMTU() bool {
	ack := make([]byte, wire.HandshakeAckSize)
	wire.EncodeHandshakeAck(ack, s.packetSize)

	buf := make([]byte, 1)
	for {
		if s.state.Stopped() {
			return false
		}
		if !netio.SendWithRetry(s.conn, s.state, ack, s.peerAddr) {
			return false
		}

		// A real select-style peek isn't available on a UDPConn; the
		// datagram this consumes is discarded deliberately (see the
		// readiness-check note in DESIGN.md). Discarding a REQUEST here is harmless:
		// the receiver's retransmit-on-timeout discipline means it
		// will simply resend the same idempotent REQUEST.
		_, ok, timedOut := netio.ReceiveOnce(s.conn, s.timeout, s.state, buf)
		if ok {
			return true
		}
		if timedOut {
			continue
		}
		return false
	}
}

// serve runs the request/payload loop until stop, a fatal error, or a
// pre-acknowledgement stray datagram (which returns false to trigger the
// recovery wrapper in run()).
func (s *SenderPeer) serve() bool {
	buf := make([]byte, s.packetSize)

	for {
		if s.state.Stopped() {
			return true
		}

		result, ok := netio.ReceiveWithRetry(s.conn, s.timeout, s.state, buf)
		if !ok {
			// Either stopped or a fatal receive error already latched;
			// either way the outer loop must not re-enter recovery.
			return true
		}

		from := netio.EndpointFromUDPAddr(result.From)
		peerEp := netio.EndpointFromUDPAddr(s.peerAddr)

		if !from.Equal(peerEp) {
			if s.acknowledged {
				// Already acknowledged: silently ignore stray datagrams.
				continue
			}
			if s.filter.ShouldLog(from.IP) {
				s.log.WithField("from", from).Warn("ignoring datagram from unexpected origin before acknowledgement")
			}
			return false
		}

		req, err := wire.DecodeRequest(buf[:result.N])
		if err != nil {
			s.state.SetErr("Corrupt request: "+err.Error(), transfer.CodeProtocol)
			return true
		}
		if req.MaxLen > s.packetSize || int(req.MaxLen) < wire.PayloadHeaderSize {
			s.state.SetErr(fmt.Sprintf("Corrupt request: maxLen %d invalid for packet size %d", req.MaxLen, s.packetSize), transfer.CodeProtocol)
			return true
		}

		s.acknowledged = true

		if !s.servePayload(req) {
			return true
		}
	}
}

func (s *SenderPeer) servePayload(req wire.Request) bool {
	hdrLen := wire.PayloadHeaderSize
	bodyCap := int(req.MaxLen) - hdrLen

	out := make([]byte, req.MaxLen)
	wire.EncodePayloadHeader(out, req.ID)

	n, eof, err := s.src.ReadAt(out[hdrLen:hdrLen+bodyCap], req.Offset)
	if err != nil {
		s.state.SetErr("Stream read failed: "+err.Error(), transfer.CodeStream)
		return false
	}

	length := hdrLen + bodyCap
	if eof {
		length = hdrLen + n
	}

	return netio.SendWithRetry(s.conn, s.state, out[:length], s.peerAddr)
}
