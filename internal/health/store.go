package health

import "sync"

// Store is the process-wide registry of renditions proven permanently
// unusable. The playback collaborator marks entries; normalization only
// reads. Markings are append-only: there is no way to resurrect a key.
type Store interface {
	IsDead(variantKey string) bool
	MarkDead(variantKey string) error
}

// MemoryStore is an in-memory Store, used in tests and as the default when
// no persistent path is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	dead map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dead: make(map[string]struct{})}
}

// IsDead reports whether the rendition was marked permanently dead.
func (s *MemoryStore) IsDead(variantKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dead[variantKey]
	return ok
}

// MarkDead records a rendition as permanently dead.
func (s *MemoryStore) MarkDead(variantKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dead[variantKey] = struct{}{}
	return nil
}
