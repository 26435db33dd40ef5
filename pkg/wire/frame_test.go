package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshakeInitRoundTrip(t *testing.T) {
	buf := make([]byte, HandshakeInitSize)
	n := EncodeHandshakeInit(buf)
	assert.Equal(t, HandshakeInitSize, n)
	require.NoError(t, DecodeHandshakeInit(buf))
}

func TestDecodeHandshakeInitBadTag(t *testing.T) {
	buf := []byte{0x01}
	assert.ErrorIs(t, DecodeHandshakeInit(buf), ErrBadTag)
}

func TestDecodeHandshakeInitShort(t *testing.T) {
	assert.ErrorIs(t, DecodeHandshakeInit(nil), ErrShortBuffer)
}

func TestHandshakeAckRoundTrip(t *testing.T) {
	buf := make([]byte, HandshakeAckSize)
	n := EncodeHandshakeAck(buf, 508)
	assert.Equal(t, HandshakeAckSize, n)

	got, err := DecodeHandshakeAck(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 508, got)
}

func TestRequestRoundTrip(t *testing.T) {
	buf := make([]byte, RequestSize)
	n := EncodeRequest(buf, 42, 12345, 508)
	assert.Equal(t, RequestSize, n)

	req, err := DecodeRequest(buf)
	require.NoError(t, err)
	assert.Equal(t, Request{ID: 42, Offset: 12345, MaxLen: 508}, req)
}

func TestDecodeRequestBadTag(t *testing.T) {
	buf := make([]byte, RequestSize)
	EncodeRequest(buf, 0, 0, 0)
	buf[0] = TagHandshake
	_, err := DecodeRequest(buf)
	assert.ErrorIs(t, err, ErrBadTag)
}

func TestPayloadHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, PayloadHeaderSize+3)
	n := EncodePayloadHeader(buf, 7)
	assert.Equal(t, PayloadHeaderSize, n)
	copy(buf[PayloadHeaderSize:], []byte("abc"))

	hdr, err := DecodePayloadHeader(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 7, hdr.ID)
	assert.Equal(t, []byte("abc"), buf[PayloadHeaderSize:])
}

func TestDecodeShortBuffers(t *testing.T) {
	_, err := DecodeHandshakeAck(make([]byte, 2))
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = DecodeRequest(make([]byte, 18))
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = DecodePayloadHeader(make([]byte, 8))
	assert.ErrorIs(t, err, ErrShortBuffer)
}
