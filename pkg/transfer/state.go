// Package transfer holds the run-state shared between a peer's owner and
// its worker goroutine: the stop flag, the finished flag, and the one-shot
// latching error slot.
package transfer

import (
	"sync"
	"sync/atomic"
)

// Sentinel error codes for failures that don't carry an OS errno.
const (
	// CodeNone marks the zero value: no error recorded.
	CodeNone = 0
	// CodeProtocol marks a protocol violation (bad tag, oversized request, ...).
	CodeProtocol = -1
	// CodeStream marks a failure reported by the byte source or sink.
	CodeStream = -2
)

// Error is the error type latched into a State's error slot. Code is either
// a real OS errno (extracted from the socket layer) or one of the CodeXxx
// sentinels above.
type Error struct {
	Msg  string
	Code int
}

func (e *Error) Error() string { return e.Msg }

// State is the small set of atomics plus one-shot error slot that a peer's
// worker and its owner share. It is safe for concurrent use.
//
// Grounded on peermgr.Peer's atomic `disconnected int32` flag in the
// teacher, generalized to the three-flag contract (stop/finished/error)
// this protocol's owner/worker split needs.
type State struct {
	stopped  atomic.Bool
	finished atomic.Bool

	errOnce sync.Once
	errMu   sync.RWMutex
	err     *Error

	doneOnce   sync.Once
	done       chan struct{}
	finishOnce sync.Once
}

// Stop requests that the worker exit at its next suspension point. Idempotent.
// It does not itself wait for the worker to exit; callers that need to join
// the worker call Wait (or, on a peer, its Stop method, which does both).
func (s *State) Stop() {
	s.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (s *State) Stopped() bool {
	return s.stopped.Load()
}

// Wait blocks until Finish has been called. Returns immediately if the
// worker has already finished.
func (s *State) Wait() {
	<-s.doneChan()
}

func (s *State) doneChan() chan struct{} {
	s.doneOnce.Do(func() {
		s.done = make(chan struct{})
	})
	return s.done
}

// Finish marks the worker as having exited, waking any Wait call. Safe to
// call more than once; only the first call has effect.
func (s *State) Finish() {
	s.finished.Store(true)
	s.finishOnce.Do(func() {
		close(s.doneChan())
	})
}

// Finished reports whether the worker has exited.
func (s *State) Finished() bool {
	return s.finished.Load()
}

// SetErr latches the first error into the slot. Subsequent calls are no-ops,
// preserving the first cause per spec.
func (s *State) SetErr(msg string, code int) {
	s.errOnce.Do(func() {
		s.errMu.Lock()
		s.err = &Error{Msg: msg, Code: code}
		s.errMu.Unlock()
	})
}

// Err returns the latched error, or nil if none has been set.
func (s *State) Err() error {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	if s.err == nil {
		return nil
	}
	return s.err
}

// ErrorOccurred reports whether an error has been latched.
func (s *State) ErrorOccurred() bool {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	return s.err != nil
}

// ErrorString returns the latched error's message, or "" if none.
func (s *State) ErrorString() string {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	if s.err == nil {
		return ""
	}
	return s.err.Msg
}

// ErrorCode returns the latched error's code, or CodeNone if none.
func (s *State) ErrorCode() int {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	if s.err == nil {
		return CodeNone
	}
	return s.err.Code
}
