package engine

import (
	"sync"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
)

// candidateStore holds the currently accepted records for one page context,
// in acceptance order, together with the generation counter that invalidates
// stale async results. All methods are safe for concurrent use; the
// enrichment goroutine reaches the record set only through these accessors
// (the size cache it also shares carries its own lock).
type candidateStore struct {
	mu         sync.Mutex
	records    []schemas.CandidateRecord
	generation uint64
}

func newCandidateStore() *candidateStore { return &candidateStore{} }

func (s *candidateStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Records returns a copy of the accepted set in acceptance order.
func (s *candidateStore) Records() []schemas.CandidateRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schemas.CandidateRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *candidateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Replace installs a new accepted set if gen still matches the store's
// generation. A false return means a reset happened mid-scan and the pass
// result must be discarded.
func (s *candidateStore) Replace(gen uint64, records []schemas.CandidateRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.records = records
	return true
}

// ApplySize sets the probed size on the record with the given source URL,
// honoring both the generation guard and the absent-to-present invariant.
func (s *candidateStore) ApplySize(gen uint64, sourceURL string, bytes int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	for i := range s.records {
		if s.records[i].SourceURL == sourceURL && !s.records[i].HasSize() {
			s.records[i].SetSize(bytes)
			return true
		}
	}
	return false
}

// Clear drops every record and bumps the generation. This is the sole
// cancellation mechanism: pending async results self-invalidate on apply.
func (s *candidateStore) Clear() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.generation++
	return s.generation
}
