package adaptive

// #region imports
import (
	"sync"

	"github.com/kdowling/fin-reliability/go-engine/internal/calib"
	"github.com/kdowling/fin-reliability/go-engine/internal/scenario"
)

// #endregion

// #region contradiction-signal

// SignalContradiction extends the five extractor signals with the smoothed
// NLI contradiction channel, which exists only in adaptive mode.
const SignalContradiction scenario.SignalName = "contradiction"

// adaptiveSignals lists all six adaptive-mode signals in composition order.
var adaptiveSignals = append(append([]scenario.SignalName{}, scenario.AllSignals...), SignalContradiction)

// #endregion contradiction-signal

// #region window-caps

const (
	scoreWindowCap    = 20
	contraWindowCap   = 3
	smoothedWindowCap = 10
	entropyWindowCap  = 10
	queryHistoryCap   = 20
)

// #endregion window-caps

// #region state

// queryScore is one stored (question, score) pair for drift comparison.
type queryScore struct {
	Question string
	Score    float64
}

// State is the calibration state of one conversation session. It is owned
// exclusively by that session; the scorer locks it for the duration of a
// turn so concurrent turns of the same session serialize instead of
// corrupting the rolling windows.
type State struct {
	mu sync.Mutex

	SessionID string

	scoreWindow    []float64 // last N composite scores
	contraWindow   []float64 // last 3 raw contradiction values
	smoothedWindow []float64 // smoothed contradiction per turn
	entropyWindow  []float64 // raw uncertainty per turn
	queryHistory   []queryScore

	// CurrentWeights is the session's learned calibration multiplier over
	// the six adaptive signals. It is persisted on every retune.
	CurrentWeights map[scenario.SignalName]float64

	TotalTurns     int
	LastRetuneTurn int

	lastQuestion  string
	lastVersionID string // persisted calibration version this state resumed from
}

// NewState creates session state, resuming from a persisted calibration
// record when one is supplied.
func NewState(sessionID string, resume *calib.Record) *State {
	st := &State{
		SessionID:      sessionID,
		CurrentWeights: defaultCalibration(),
	}
	if resume != nil && len(resume.Weights) > 0 {
		for name, w := range resume.Weights {
			st.CurrentWeights[name] = w
		}
		st.TotalTurns = resume.TotalTurns
		st.LastRetuneTurn = resume.TotalTurns
		st.lastVersionID = resume.VersionID
	}
	return st
}

// defaultCalibration is the uniform multiplier vector: composing it with a
// scenario profile reproduces the profile's weights exactly until the first
// retune diverges from it.
func defaultCalibration() map[scenario.SignalName]float64 {
	w := make(map[scenario.SignalName]float64, len(adaptiveSignals))
	uniform := 1.0 / float64(len(adaptiveSignals))
	for _, name := range adaptiveSignals {
		w[name] = uniform
	}
	return w
}

// #endregion state

// #region window-helpers

// push appends v to a bounded FIFO window, evicting the oldest entry.
func push(window []float64, v float64, capacity int) []float64 {
	window = append(window, v)
	if len(window) > capacity {
		window = window[1:]
	}
	return window
}

// #endregion window-helpers
