package building

import (
	"errors"
	"sync"
	"time"

	"github.com/Xebarter/Leap-sub002/internal/domain/building"
)

// ErrDraftNotFound indicates the draft expired or never existed.
var ErrDraftNotFound = errors.New("building draft not found")

type draft struct {
	cfg     *building.Configuration
	touched time.Time
}

// DraftStore holds the in-progress configurations of admin sessions. Each
// draft is only ever mutated while the store lock is held.
type DraftStore struct {
	drafts map[string]*draft
	mu     sync.RWMutex
	now    func() time.Time
}

// NewDraftStore creates an empty draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[string]*draft),
		now:    time.Now,
	}
}

// Put stores cfg under id, replacing any previous draft.
func (s *DraftStore) Put(id string, cfg *building.Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[id] = &draft{cfg: cfg, touched: s.now()}
}

// View runs fn with read access to the draft.
func (s *DraftStore) View(id string, fn func(*building.Configuration)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	if !ok {
		return ErrDraftNotFound
	}
	fn(d.cfg)
	return nil
}

// Update runs fn with exclusive access to the draft and refreshes its
// last-touched time.
func (s *DraftStore) Update(id string, fn func(*building.Configuration) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return ErrDraftNotFound
	}
	d.touched = s.now()
	return fn(d.cfg)
}

// Delete removes a draft.
func (s *DraftStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

// Purge drops drafts untouched for longer than ttl and returns how many were removed.
func (s *DraftStore) Purge(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-ttl)
	removed := 0
	for id, d := range s.drafts {
		if d.touched.Before(cutoff) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of open drafts.
func (s *DraftStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
