package netio

import (
	"errors"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// RetryRecv classifies an error from a receive operation as transient
// (network reset/down — worth retrying indefinitely) or fatal.
//
// Grounded on original_source/UDPRMisc.h's RetryRecv, re-expressed against
// the POSIX errno set Go's net package surfaces on Unix in place of the
// Windows-specific WSAENETRESET/WSAENETDOWN codes the original enumerates.
func RetryRecv(err error) bool {
	errno, ok := errnoOf(err)
	if !ok {
		return false
	}
	switch errno {
	case unix.ECONNRESET, unix.ENETDOWN:
		return true
	default:
		return false
	}
}

// RetrySend classifies an error from a send operation as transient or fatal.
//
// Grounded on original_source/UDPRMisc.h's RetrySendTo.
func RetrySend(err error) bool {
	errno, ok := errnoOf(err)
	if !ok {
		return false
	}
	switch errno {
	case unix.ENETDOWN, unix.ECONNRESET, unix.ENOBUFS, unix.EHOSTUNREACH, unix.ENETUNREACH, unix.ETIMEDOUT:
		return true
	default:
		return false
	}
}

// IsTimeout reports whether err is a deadline-exceeded condition, i.e. "no
// datagram arrived within the readiness window" rather than a real socket
// error. This is the fold-in of the original's separate select()-based
// readiness check: Go has no portable non-consuming peek on a UDPConn, so
// readiness and receive are realized as a single deadline-bounded read.
func IsTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

func errnoOf(err error) (syscall.Errno, bool) {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		err = opErr.Err
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}
