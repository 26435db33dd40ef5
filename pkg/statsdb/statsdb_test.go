package statsdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveAndAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	first := TransferRecord{ID: time.Unix(1, 0), PeerAddr: "127.0.0.1:9000", Bytes: 1000, Duration: time.Second, Succeeded: true}
	second := TransferRecord{ID: time.Unix(2, 0), PeerAddr: "127.0.0.1:9001", Bytes: 500, Succeeded: false, ErrMessage: "timed out"}

	require.NoError(t, db.Save(&first))
	require.NoError(t, db.Save(&second))

	records, err := db.All()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "127.0.0.1:9001", records[0].PeerAddr)
}
