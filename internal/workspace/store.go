package workspace

import (
	"sync"
	"time"

	"exam-allocator/internal/allocator"
)

// Store keeps workspaces in memory, keyed by ID.
type Store struct {
	mu          sync.RWMutex
	workspaces  map[string]*Workspace
	defaultMode allocator.Mode
	now         func() time.Time
}

func NewStore(defaultMode allocator.Mode) *Store {
	return &Store{
		workspaces:  make(map[string]*Workspace),
		defaultMode: defaultMode,
		now:         time.Now,
	}
}

func (s *Store) Create() *Workspace {
	ws := newWorkspace(s.defaultMode, s.now)
	s.mu.Lock()
	s.workspaces[ws.ID] = ws
	s.mu.Unlock()
	return ws
}

func (s *Store) Get(id string) *Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaces[id]
}

// GetOrCreate returns the workspace for id, creating a new one when
// id is unknown. The second result reports whether it was created.
func (s *Store) GetOrCreate(id string) (*Workspace, bool) {
	if ws := s.Get(id); ws != nil {
		return ws, false
	}
	return s.Create(), true
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.workspaces[id]
	delete(s.workspaces, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// Prune drops workspaces not updated within maxAge and returns how many went.
func (s *Store) Prune(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, ws := range s.workspaces {
		if ws.UpdatedAt().Before(cutoff) {
			delete(s.workspaces, id)
			removed++
		}
	}
	return removed
}
