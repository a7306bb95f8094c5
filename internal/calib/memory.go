package calib

// #region imports
import "sync"

// #endregion

// #region memory-store

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu       sync.Mutex
	versions map[string][]Record // session → versions, newest last
}

// NewMemoryStore creates an empty in-memory calibration store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{versions: make(map[string][]Record)}
}

// Load returns the newest saved record for a session, nil when absent.
func (m *MemoryStore) Load(sessionID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.versions[sessionID]
	if len(recs) == 0 {
		return nil, nil
	}
	rec := recs[len(recs)-1]
	return &rec, nil
}

// Save appends a record as the session's active calibration.
func (m *MemoryStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[rec.SessionID] = append(m.versions[rec.SessionID], rec)
	return nil
}

// History returns up to limit records, newest first.
func (m *MemoryStore) History(sessionID string, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.versions[sessionID]
	var out []Record
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recs[i])
	}
	return out, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

// #endregion memory-store
