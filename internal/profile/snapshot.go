package profile

import (
	"sort"
	"sync/atomic"
	"time"
)

// Snapshot is an immutable, fully merged profile table. It is built in one
// pass at load time and must never be mutated after publication; readers may
// share it concurrently without locking.
type Snapshot struct {
	byBBL    map[BBL]*BuildingProfile
	ordered  []*BuildingProfile // sorted by BBL for stable scans
	LoadedAt time.Time
	Version  int64
}

// NewSnapshot builds a snapshot from a merged table.
func NewSnapshot(table map[BBL]*BuildingProfile, version int64) *Snapshot {
	ordered := make([]*BuildingProfile, 0, len(table))
	for _, p := range table {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].BBL < ordered[j].BBL })

	return &Snapshot{
		byBBL:    table,
		ordered:  ordered,
		LoadedAt: time.Now().UTC(),
		Version:  version,
	}
}

// Get returns the profile for bbl, or nil when absent.
func (s *Snapshot) Get(bbl BBL) *BuildingProfile {
	return s.byBBL[bbl]
}

// All returns the profiles in BBL order. Callers must not mutate the
// returned slice or the profiles it points to.
func (s *Snapshot) All() []*BuildingProfile {
	return s.ordered
}

// Len returns the number of merged profiles.
func (s *Snapshot) Len() int { return len(s.ordered) }

// Published holds the currently visible snapshot behind an atomic pointer.
// Load builds a complete snapshot first, then swaps it in; a reader either
// sees the previous table or the new one, never a partial merge.
type Published struct {
	ptr atomic.Pointer[Snapshot]
}

// Publish atomically replaces the visible snapshot.
func (p *Published) Publish(s *Snapshot) {
	p.ptr.Store(s)
}

// Current returns the visible snapshot, or nil before the first publish.
func (p *Published) Current() *Snapshot {
	return p.ptr.Load()
}
