package prompts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps overrides in process. It backs tests and the "memory"
// storage backend.
type MemoryStore struct {
	mu     sync.RWMutex
	byDoc  map[string]*Override
	bySlug map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byDoc:  make(map[string]*Override),
		bySlug: make(map[string]string),
	}
}

func (s *MemoryStore) lookup(slug string) *Override {
	if docID, ok := s.bySlug[slug]; ok {
		return s.byDoc[docID]
	}
	return nil
}

// Get returns the active override for slug.
func (s *MemoryStore) Get(ctx context.Context, slug string) (*Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOverride(s.lookup(slug)), nil
}

// GetMany returns the active overrides for slugs, keyed by slug.
func (s *MemoryStore) GetMany(ctx context.Context, slugs []string) (map[string]*Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Override, len(slugs))
	for _, slug := range slugs {
		if o := s.lookup(slug); o != nil {
			out[slug] = cloneOverride(o)
		}
	}
	return out, nil
}

// GetByDocID returns the active override with the given document id.
func (s *MemoryStore) GetByDocID(ctx context.Context, docID string) (*Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byDoc[docID]
	if !ok {
		return nil, nil
	}
	return cloneOverride(o), nil
}

// List returns every active override ordered by slug.
func (s *MemoryStore) List(ctx context.Context) ([]Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Override, 0, len(s.byDoc))
	for _, o := range s.byDoc {
		out = append(out, *cloneOverride(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// Create inserts o and assigns its DocID.
func (s *MemoryStore) Create(ctx context.Context, o *Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.Slug == "" {
		return fmt.Errorf("%w: empty slug", ErrValidation)
	}
	if _, exists := s.bySlug[o.Slug]; exists {
		return fmt.Errorf("%w: override %s already exists", ErrConflict, o.Slug)
	}

	o.DocID = uuid.NewString()
	o.Status = StatusActive
	o.UpdatedAt = time.Now().UTC()
	s.byDoc[o.DocID] = cloneOverride(o)
	s.bySlug[o.Slug] = o.DocID
	return nil
}

// Update replaces the stored override if its version still equals expectedVersion.
func (s *MemoryStore) Update(ctx context.Context, o *Override, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.lookup(o.Slug)
	if cur == nil || cur.Version != expectedVersion {
		return fmt.Errorf("%w: %s is no longer at version %d", ErrConflict, o.Slug, expectedVersion)
	}

	o.DocID = cur.DocID
	o.Status = StatusActive
	o.UpdatedAt = time.Now().UTC()
	s.byDoc[o.DocID] = cloneOverride(o)
	return nil
}

// Delete removes the override for slug. Missing slugs are a no-op.
func (s *MemoryStore) Delete(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if docID, ok := s.bySlug[slug]; ok {
		delete(s.byDoc, docID)
		delete(s.bySlug, slug)
	}
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
