package originfilter

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldLogOncePerAddressPerEpoch(t *testing.T) {
	f := New()
	ip := net.IPv4(10, 0, 0, 1).To4()

	require.True(t, f.ShouldLog(ip))
	require.False(t, f.ShouldLog(ip), "same address should not log twice within the same epoch")
}

func TestNextEpochForgetsSeenAddresses(t *testing.T) {
	f := New()
	ip := net.IPv4(10, 0, 0, 1).To4()

	require.True(t, f.ShouldLog(ip))
	require.False(t, f.ShouldLog(ip))

	f.NextEpoch()

	require.True(t, f.ShouldLog(ip), "a new epoch should forget addresses seen in the previous one")
}
