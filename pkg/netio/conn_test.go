package netio

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/1Radiation1/Networking/pkg/transfer"
)

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSendReceiveRoundTrip(t *testing.T) {
	a := listenLoopback(t)
	b := listenLoopback(t)

	state := &transfer.State{}
	ok := SendWithRetry(a, state, []byte("hello"), b.LocalAddr().(*net.UDPAddr))
	require.True(t, ok)

	buf := make([]byte, 16)
	res, ok := ReceiveWithRetry(b, 500*time.Millisecond, state, buf)
	require.True(t, ok)
	require.Equal(t, 5, res.N)
	require.Equal(t, "hello", string(buf[:res.N]))
}

func TestReceiveOnceTimesOut(t *testing.T) {
	b := listenLoopback(t)
	state := &transfer.State{}

	buf := make([]byte, 16)
	_, ok, timedOut := ReceiveOnce(b, 50*time.Millisecond, state, buf)
	require.False(t, ok)
	require.True(t, timedOut)
	require.False(t, state.ErrorOccurred())
}

func TestReceiveWithRetryStopsOnStop(t *testing.T) {
	b := listenLoopback(t)
	state := &transfer.State{}
	state.Stop()

	buf := make([]byte, 16)
	_, ok := ReceiveWithRetry(b, 50*time.Millisecond, state, buf)
	require.False(t, ok)
	require.False(t, state.ErrorOccurred())
}

func TestEndpointEquality(t *testing.T) {
	e1 := Endpoint{IP: net.IPv4(1, 2, 3, 4)}
	e2 := Endpoint{IP: net.IPv4(1, 2, 3, 4)}
	e3 := Endpoint{IP: net.IPv4(5, 6, 7, 8)}

	require.True(t, e1.Equal(e2))
	require.False(t, e1.Equal(e3))
}
