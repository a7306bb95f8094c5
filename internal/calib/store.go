package calib

// #region imports
import (
	"time"

	"github.com/kdowling/fin-reliability/go-engine/internal/scenario"
)

// #endregion

// #region record

// Record is one persisted calibration snapshot: the learned weight vector
// for a session, versioned with a parent pointer so retune history forms a
// chain.
type Record struct {
	VersionID  string
	ParentID   string
	SessionID  string
	Weights    map[scenario.SignalName]float64
	TotalTurns int
	Reason     string
	CreatedAt  time.Time
}

// #endregion record

// #region store-interface

// Store abstracts calibration persistence so the same retune logic works
// against SQLite, a database row, or an in-memory stub in tests.
type Store interface {
	// Load returns the active calibration for a session, or nil when the
	// session has never been retuned.
	Load(sessionID string) (*Record, error)
	// Save persists a calibration version and makes it active.
	Save(rec Record) error
	// History returns the most recent calibration versions for a session.
	History(sessionID string, limit int) ([]Record, error)
	Close() error
}

// #endregion store-interface
