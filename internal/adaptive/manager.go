package adaptive

// #region imports
import (
	"log"
	"sync"

	"github.com/kdowling/fin-reliability/go-engine/internal/calib"
)

// #endregion

// #region manager

// Manager owns the per-session adaptive states. Sessions are created
// lazily and resume their persisted calibration when one exists. There is
// deliberately no process-wide default state: callers address sessions by
// ID so unrelated conversations can never share rolling windows.
type Manager struct {
	mu       sync.Mutex
	store    calib.Store
	sessions map[string]*State
}

// NewManager creates a session manager backed by the given store.
func NewManager(store calib.Store) *Manager {
	return &Manager{
		store:    store,
		sessions: make(map[string]*State),
	}
}

// Session returns the state for a session ID, creating it on first use.
// A store read failure is logged and treated as a fresh session; scoring
// must not be blocked by persistence.
func (m *Manager) Session(id string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.sessions[id]; ok {
		return st
	}

	var resume *calib.Record
	if m.store != nil {
		rec, err := m.store.Load(id)
		if err != nil {
			log.Printf("[CALIB] load session %s: %v, starting fresh", id, err)
		} else {
			resume = rec
		}
	}

	st := NewState(id, resume)
	m.sessions[id] = st
	return st
}

// Drop discards a session's in-memory state. Persisted calibration
// survives for the next session with the same ID.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// #endregion manager
