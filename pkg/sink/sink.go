// Package sink provides the byte-sink adapters a ReceiverPeer writes to.
package sink

import (
	"bytes"
	"os"
	"sync"
)

// Sink is the byte sink a ReceiverPeer writes to. ReceiverPeer guarantees
// sequential, in-order, non-overlapping calls, so Sink never has to handle
// a gap or an out-of-order offset.
type Sink interface {
	Write(p []byte) (n int, err error)
}

// File adapts an *os.File into a Sink via sequential appends.
type File struct {
	f *os.File
}

// NewFile wraps f as a Sink.
func NewFile(f *os.File) *File {
	return &File{f: f}
}

// Write implements Sink.
func (s *File) Write(p []byte) (int, error) {
	return s.f.Write(p)
}

// Buffer is an in-memory Sink backed by a bytes.Buffer, used in tests and
// for round-trip verification.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewBuffer returns an empty in-memory Sink.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Write implements Sink.
func (s *Buffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

// Bytes returns a copy of the bytes written so far.
func (s *Buffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out
}
