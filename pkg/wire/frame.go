// Package wire encodes and decodes the four UDPR frame kinds on the wire.
//
// Wire format (all multi-byte integers little-endian):
//
//	HANDSHAKE_INIT  (receiver -> sender): {0x00}                                1 byte
//	REQUEST         (receiver -> sender): {0x01, id u64, offset u64, maxLen u16} 19 bytes
//	HANDSHAKE_ACK   (sender -> receiver): {0x00, packetSize u16}                 3 bytes
//	PAYLOAD         (sender -> receiver): {0x01, id u64} ++ body                 9 + len(body) bytes
//
// The 0x00/0x01 tags collide numerically between directions; a sender never
// decodes a PAYLOAD and a receiver never decodes a REQUEST, so the direction
// itself disambiguates. This package mirrors that split in its API:
// encode/decode functions are named per direction (DecodeRequest for the
// sender, DecodePayloadHeader for the receiver). All of them take a plain
// []byte and the tag alone cannot tell a REQUEST from a PAYLOAD, so picking
// the right decoder is up to the caller's role.
package wire

import (
	"encoding/binary"
	"errors"
)

// Tag values. They repeat across directions by design (see package doc).
const (
	TagHandshake = 0x00
	TagData      = 0x01
)

// Frame sizes in bytes.
const (
	HandshakeInitSize = 1
	RequestSize       = 1 + 8 + 8 + 2
	HandshakeAckSize  = 1 + 2
	PayloadHeaderSize = 1 + 8

	// MinPacketSize is the smallest legal negotiated packet size: it must
	// be large enough to carry a REQUEST frame (the larger of the two
	// header overheads, per spec).
	MinPacketSize = RequestSize
)

// ErrShortBuffer is returned when a decode target is too small for the frame.
var ErrShortBuffer = errors.New("wire: buffer too short for frame")

// ErrBadTag is returned when a decoded tag doesn't match the expected frame kind.
var ErrBadTag = errors.New("wire: unexpected message tag")

// EncodeHandshakeInit writes the 1-byte HANDSHAKE_INIT frame into buf,
// which must have length >= HandshakeInitSize.
func EncodeHandshakeInit(buf []byte) int {
	buf[0] = TagHandshake
	return HandshakeInitSize
}

// DecodeHandshakeInit validates that buf holds a well-formed HANDSHAKE_INIT frame.
func DecodeHandshakeInit(buf []byte) error {
	if len(buf) < HandshakeInitSize {
		return ErrShortBuffer
	}
	if buf[0] != TagHandshake {
		return ErrBadTag
	}
	return nil
}

// EncodeHandshakeAck writes the 3-byte HANDSHAKE_ACK frame into buf.
func EncodeHandshakeAck(buf []byte, packetSize uint16) int {
	buf[0] = TagHandshake
	binary.LittleEndian.PutUint16(buf[1:3], packetSize)
	return HandshakeAckSize
}

// DecodeHandshakeAck parses a HANDSHAKE_ACK frame, returning the announced packet size.
func DecodeHandshakeAck(buf []byte) (packetSize uint16, err error) {
	if len(buf) < HandshakeAckSize {
		return 0, ErrShortBuffer
	}
	if buf[0] != TagHandshake {
		return 0, ErrBadTag
	}
	return binary.LittleEndian.Uint16(buf[1:3]), nil
}

// EncodeRequest writes the 19-byte REQUEST frame into buf.
func EncodeRequest(buf []byte, id uint64, offset uint64, maxLen uint16) int {
	buf[0] = TagData
	binary.LittleEndian.PutUint64(buf[1:9], id)
	binary.LittleEndian.PutUint64(buf[9:17], offset)
	binary.LittleEndian.PutUint16(buf[17:19], maxLen)
	return RequestSize
}

// Request is a decoded REQUEST frame.
type Request struct {
	ID     uint64
	Offset uint64
	MaxLen uint16
}

// DecodeRequest parses a REQUEST frame.
func DecodeRequest(buf []byte) (Request, error) {
	if len(buf) < RequestSize {
		return Request{}, ErrShortBuffer
	}
	if buf[0] != TagData {
		return Request{}, ErrBadTag
	}
	return Request{
		ID:     binary.LittleEndian.Uint64(buf[1:9]),
		Offset: binary.LittleEndian.Uint64(buf[9:17]),
		MaxLen: binary.LittleEndian.Uint16(buf[17:19]),
	}, nil
}

// EncodePayloadHeader writes the 9-byte PAYLOAD header into buf; the caller
// places the body bytes starting at buf[PayloadHeaderSize:] itself.
func EncodePayloadHeader(buf []byte, id uint64) int {
	buf[0] = TagData
	binary.LittleEndian.PutUint64(buf[1:9], id)
	return PayloadHeaderSize
}

// PayloadHeader is a decoded PAYLOAD frame header. It carries only the ID;
// the body stays in the buffer passed to DecodePayloadHeader.
type PayloadHeader struct {
	ID uint64
}

// DecodePayloadHeader parses the 9-byte header of a PAYLOAD frame. The
// caller is responsible for treating buf[PayloadHeaderSize:] as the body.
func DecodePayloadHeader(buf []byte) (PayloadHeader, error) {
	if len(buf) < PayloadHeaderSize {
		return PayloadHeader{}, ErrShortBuffer
	}
	if buf[0] != TagData {
		return PayloadHeader{}, ErrBadTag
	}
	return PayloadHeader{ID: binary.LittleEndian.Uint64(buf[1:9])}, nil
}
