package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kdowling/fin-reliability/go-engine/internal/adaptive"
	"github.com/kdowling/fin-reliability/go-engine/internal/signal"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a recorded-session fixture.
type Fixture struct {
	Description string        `json:"description"`
	SessionID   string        `json:"session_id"`
	Turns       []FixtureTurn `json:"turns"`
}

// FixtureTurn is one recorded scoring request.
type FixtureTurn struct {
	TurnID            string             `json:"turn_id"`
	Question          string             `json:"question"`
	Answer            string             `json:"answer"`
	Passages          []string           `json:"passages"`
	Uncertainty       *float64           `json:"uncertainty"`
	ContradictionRaw  *float64           `json:"contradiction_raw"`
	Facts             map[string]float64 `json:"facts"`
	Sources           []string           `json:"sources"`
	Entities          []string           `json:"entities"`
	ComparativeIntent bool               `json:"comparative_intent"`
}

// ToInput converts a fixture turn to an adaptive scoring input.
func (ft *FixtureTurn) ToInput() adaptive.Input {
	in := adaptive.Input{
		Answer:            ft.Answer,
		Question:          ft.Question,
		Passages:          ft.Passages,
		Uncertainty:       ft.Uncertainty,
		ContradictionRaw:  ft.ContradictionRaw,
		ComparativeIntent: ft.ComparativeIntent,
	}
	if len(ft.Facts) > 0 || len(ft.Sources) > 0 || len(ft.Entities) > 0 {
		in.Facts = &signal.Facts{
			Fields:   ft.Facts,
			Sources:  ft.Sources,
			Entities: ft.Entities,
		}
	}
	return in
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.SessionID == "" {
		f.SessionID = "replay"
	}
	return &f, nil
}

// #endregion fixture-loader
