// Package statsdb is an optional, off-hot-path transfer history ledger
// for cmd/udpr-recv's --stats-db flag. It records one row per completed
// (or failed) transfer so repeated CLI runs leave an inspectable local
// record.
//
// Grounded on capi.GetStormDBInstance()/store.Save(&record) in
// pkg/p2p/peer/connector.go's logPeerCount, adapted from a periodic
// peer-count snapshot to a write-once-at-completion transfer record.
package statsdb

import (
	"time"

	"github.com/asdine/storm/v3"
)

// TransferRecord is one completed or failed transfer, keyed by its
// start time.
type TransferRecord struct {
	ID         time.Time `storm:"id"`
	PeerAddr   string    `storm:"index"`
	Bytes      uint64
	Duration   time.Duration
	Succeeded  bool
	ErrMessage string
}

// DB wraps a storm-backed bolt database holding TransferRecord rows.
type DB struct {
	db *storm.DB
}

// Open opens (creating if necessary) the stats database at path.
func Open(path string) (*DB, error) {
	db, err := storm.Open(path)
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close releases the underlying bolt file.
func (d *DB) Close() error {
	return d.db.Close()
}

// Save persists a TransferRecord.
func (d *DB) Save(r *TransferRecord) error {
	return d.db.Save(r)
}

// All returns every recorded transfer, most recent first.
func (d *DB) All() ([]TransferRecord, error) {
	var records []TransferRecord
	if err := d.db.All(&records); err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
