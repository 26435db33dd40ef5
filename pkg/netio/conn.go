// Package netio provides the UDP socket-adjacent primitives both peers
// build on: cancel-aware, retrying send/receive over a *net.UDPConn that
// reports each datagram's source address (callers filter by origin with
// Endpoint), plus the transient-error classification in retry.go.
//
// Grounded on wire/sam3/raw.go's RawSession.Read/Write (ListenUDP bind,
// ReadFromUDP with a source-address check, WriteToUDP), generalized from a
// single fixed I2P bridge peer to the stop/error-aware, retry-until-success
// discipline this protocol's §4.4/§5 require.
package netio

import (
	"net"
	"time"

	"github.com/1Radiation1/Networking/pkg/transfer"
)

// ReceiveResult is the outcome of a successful ReceiveWithRetry call.
type ReceiveResult struct {
	N    int
	From *net.UDPAddr
}

// ReceiveWithRetry blocks until a datagram arrives, the deadline-bounded
// read succeeds, stop is requested, or a fatal error occurs. Transient
// errors (per RetryRecv) and plain timeouts are retried silently; every
// iteration rechecks state.Stopped()/state.ErrorOccurred() before resuming,
// bounding shutdown latency to one timeout window.
func ReceiveWithRetry(conn *net.UDPConn, timeout time.Duration, state *transfer.State, buf []byte) (ReceiveResult, bool) {
	for {
		if state.Stopped() || state.ErrorOccurred() {
			return ReceiveResult{}, false
		}

		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			state.SetErr("Failed the set read deadline: "+err.Error(), transfer.CodeStream)
			return ReceiveResult{}, false
		}

		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if IsTimeout(err) {
				continue
			}
			if RetryRecv(err) {
				continue
			}
			state.SetErr("Failed the recvfrom: "+err.Error(), errCodeOf(err))
			return ReceiveResult{}, false
		}

		return ReceiveResult{N: n, From: from}, true
	}
}

// ReceiveOnce attempts a single deadline-bounded read, without the
// retry-forever loop ReceiveWithRetry applies. It reports ok=true with a
// result on success, ok=false with timedOut=true on a bare readiness
// timeout (the caller typically retransmits and tries again), and
// ok=false with timedOut=false once stop is requested or a fatal error is
// latched into state. Transient recv errors are still
// retried internally, since they're never a useful signal to the caller
// that it should retransmit something different.
func ReceiveOnce(conn *net.UDPConn, timeout time.Duration, state *transfer.State, buf []byte) (result ReceiveResult, ok bool, timedOut bool) {
	for {
		if state.Stopped() || state.ErrorOccurred() {
			return ReceiveResult{}, false, false
		}

		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			state.SetErr("Failed the set read deadline: "+err.Error(), transfer.CodeStream)
			return ReceiveResult{}, false, false
		}

		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if IsTimeout(err) {
				return ReceiveResult{}, false, true
			}
			if RetryRecv(err) {
				continue
			}
			state.SetErr("Failed the recvfrom: "+err.Error(), errCodeOf(err))
			return ReceiveResult{}, false, false
		}

		return ReceiveResult{N: n, From: from}, true, false
	}
}

// SendWithRetry sends buf to addr, retrying transient send errors
// indefinitely until success, stop, or a fatal error.
func SendWithRetry(conn *net.UDPConn, state *transfer.State, buf []byte, addr *net.UDPAddr) bool {
	for {
		if state.Stopped() {
			return false
		}

		_, err := conn.WriteToUDP(buf, addr)
		if err == nil {
			return true
		}

		if RetrySend(err) {
			continue
		}

		state.SetErr("Failed the sendto: "+err.Error(), errCodeOf(err))
		return false
	}
}

func errCodeOf(err error) int {
	if errno, ok := errnoOf(err); ok {
		return int(errno)
	}
	return transfer.CodeStream
}
