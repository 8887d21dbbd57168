package state

import (
	"context"
	"sync"
	"time"

	"github.com/markpad/markpad/pkg/api"
)

// MemStore keeps state in memory. Used by tests and --ephemeral runs.
type MemStore struct {
	mu      sync.RWMutex
	recents []api.RecentFile
	session *api.Session
	now     func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{now: time.Now}
}

func (m *MemStore) AddRecent(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.RecentFile, 0, len(m.recents)+1)
	out = append(out, api.RecentFile{Path: path, OpenedAt: m.now().UTC()})
	for _, rf := range m.recents {
		if rf.Path == path {
			continue
		}
		out = append(out, rf)
	}
	if len(out) > MaxRecents {
		out = out[:MaxRecents]
	}
	m.recents = out
	return nil
}

func (m *MemStore) Recents(ctx context.Context) ([]api.RecentFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]api.RecentFile(nil), m.recents...), nil
}

func (m *MemStore) RemoveRecent(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.recents[:0]
	for _, rf := range m.recents {
		if rf.Path != path {
			out = append(out, rf)
		}
	}
	m.recents = out
	return nil
}

func (m *MemStore) SaveSession(ctx context.Context, s api.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.SavedAt = m.now().UTC()
	m.session = &s
	return nil
}

func (m *MemStore) LoadSession(ctx context.Context) (api.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return api.Session{}, ErrNotFound
	}
	return *m.session, nil
}

func (m *MemStore) Close() error { return nil }
