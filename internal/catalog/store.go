package catalog

import "sync"

// Store holds the current catalog as a version-stamped snapshot. Readers get
// their own copy, so an admin edit can never change a catalog while an
// estimate is being computed from it.
type Store struct {
	mu      sync.RWMutex
	current *Catalog
	version int64
}

// NewStore returns a Store holding a copy of c at the given version.
func NewStore(c *Catalog, version int64) *Store {
	return &Store{current: c.Clone(), version: version}
}

// Snapshot returns a private copy of the current catalog and its version.
func (s *Store) Snapshot() (*Catalog, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone(), s.version
}

// Version returns the current version stamp.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Replace validates c and installs it as the next version. persist, when not
// nil, runs under the write lock before the swap; if it fails the current
// snapshot is kept.
func (s *Store) Replace(c *Catalog, persist func(version int64, c *Catalog) error) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	next := c.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.version + 1
	if persist != nil {
		if err := persist(version, next); err != nil {
			return 0, err
		}
	}

	s.current = next
	s.version = version
	return version, nil
}
