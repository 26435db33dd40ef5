package source

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferReadAt(t *testing.T) {
	src := NewBuffer([]byte("ABCDE"))

	buf := make([]byte, 3)
	n, eof, err := src.ReadAt(buf, 0)
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, 3, n)
	require.Equal(t, "ABC", string(buf[:n]))

	buf = make([]byte, 3)
	n, eof, err = src.ReadAt(buf, 3)
	require.NoError(t, err)
	require.True(t, eof)
	require.Equal(t, 2, n)
	require.Equal(t, "DE", string(buf[:n]))
}

func TestBufferReadAtPastEnd(t *testing.T) {
	src := NewBuffer([]byte("AB"))

	buf := make([]byte, 4)
	n, eof, err := src.ReadAt(buf, 10)
	require.NoError(t, err)
	require.True(t, eof)
	require.Equal(t, 0, n)
}

func TestBufferReadAtEmpty(t *testing.T) {
	src := NewBuffer(nil)
	buf := make([]byte, 4)
	n, eof, err := src.ReadAt(buf, 0)
	require.NoError(t, err)
	require.True(t, eof)
	require.Equal(t, 0, n)
}

func TestFileReadAt(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "source-*")
	require.NoError(t, err)
	_, err = f.WriteString("hello world")
	require.NoError(t, err)

	src := NewFile(f)
	buf := make([]byte, 5)
	n, eof, err := src.ReadAt(buf, 0)
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, "hello", string(buf[:n]))

	buf = make([]byte, 100)
	n, eof, err = src.ReadAt(buf, 6)
	require.NoError(t, err)
	require.True(t, eof)
	require.Equal(t, "world", string(buf[:n]))
}
