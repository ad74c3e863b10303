package critique

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"geoverify/domain/core"
	dcritique "geoverify/domain/critique"
	"geoverify/internal/errors"
)

// MemoryStore keeps session records in memory. Records are stored as JSON so
// callers never share pointers with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[core.SessionID][]byte
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[core.SessionID][]byte)}
}

// Get loads a session by ID
func (m *MemoryStore) Get(ctx context.Context, id core.SessionID) (*dcritique.Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.SessionNotFound(id.String())
	}

	var session dcritique.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrapf(err, "failed to decode session %s", id)
	}
	return &session, nil
}

// Save stores a snapshot of the session
func (m *MemoryStore) Save(ctx context.Context, session *dcritique.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrapf(err, "failed to encode session %s", session.ID)
	}

	m.mu.Lock()
	m.sessions[session.ID] = data
	m.mu.Unlock()
	return nil
}

// List returns sessions ordered by most recent update
func (m *MemoryStore) List(ctx context.Context, limit int) ([]*dcritique.Session, error) {
	m.mu.RLock()
	ids := make([]core.SessionID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	sessions := make([]*dcritique.Session, 0, len(ids))
	for _, id := range ids {
		s, err := m.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	SortByRecency(sessions)
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// SortByRecency orders sessions newest update first, breaking ties by ID
func SortByRecency(sessions []*dcritique.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.UpdatedAt.Time().Equal(b.UpdatedAt.Time()) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}
