// Package originfilter throttles logging for repeated stray datagrams from
// addresses that are not (yet, or no longer) the negotiated peer.
//
// It has no effect on protocol state: a SenderPeer treats stray datagrams
// the same way with or without it (after acknowledgement it ignores them;
// before it, a stray sends the sender back into handshake recovery,
// spec.md §4.2). This package only
// decides whether a given stray sighting is worth a WARN log line, so a
// scanner or a misconfigured second client hammering the listening port
// can't flood the log.
//
// Adapted from pkg/p2p/peer/dupemap/tmpmap.go: that package deduplicated
// gossiped consensus messages per round via a cuckoo filter keyed by block
// height. Here there are no rounds, so the "height" dimension collapses to
// a single epoch that advances each time the sender re-enters handshake
// recovery (SenderPeer.run calls NextEpoch), and the per-address cuckoo filter is paired with
// a token-bucket rate limiter so a single address can't produce unbounded
// log volume even within one epoch.
package originfilter

import (
	"bytes"
	"sync"
	"time"

	cuckoo "github.com/seiflotfy/cuckoofilter"
	"golang.org/x/time/rate"
)

const (
	defaultCapacity = 1024
	defaultTTL      = 5 * time.Minute
	// defaultRate caps warnings at roughly one every two seconds with a
	// small burst allowance, independent of how many distinct addresses
	// are seen.
	defaultRate  = rate.Limit(0.5)
	defaultBurst = 5
)

// Filter decides whether a stray sighting from an address should be logged.
type Filter struct {
	mu sync.Mutex

	epoch   uint64
	seen    map[uint64]*cuckoo.Filter
	expires map[uint64]time.Time

	capacity uint
	ttl      time.Duration
	limiter  *rate.Limiter
}

// New returns a Filter with the default capacity, TTL, and rate cap.
func New() *Filter {
	return &Filter{
		seen:     make(map[uint64]*cuckoo.Filter),
		expires:  make(map[uint64]time.Time),
		capacity: defaultCapacity,
		ttl:      defaultTTL,
		limiter:  rate.NewLimiter(defaultRate, defaultBurst),
	}
}

// NextEpoch advances the epoch, effectively forgetting every address seen
// so far. Call this whenever the sender re-enters handshake recovery
// (§4.2.1), since a stray sighting before one handshake round carries no
// information about the next.
func (f *Filter) NextEpoch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.epoch++
}

// ShouldLog reports whether a stray sighting from ip, in the current
// epoch, is worth logging: true at most once per address per epoch (within
// ttl), and always subject to the overall rate cap.
func (f *Filter) ShouldLog(ip []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	filter, ok := f.seen[f.epoch]
	if !ok || time.Now().After(f.expires[f.epoch]) {
		filter = cuckoo.NewFilter(f.capacity)
		f.seen[f.epoch] = filter
		f.expires[f.epoch] = time.Now().Add(f.ttl)
	}

	buf := bytes.NewBuffer(ip)
	if filter.Lookup(buf.Bytes()) {
		return false
	}
	filter.Insert(buf.Bytes())

	return f.limiter.Allow()
}
