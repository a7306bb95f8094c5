package main

// #region imports
import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kdowling/fin-reliability/go-engine/internal/adaptive"
	"github.com/kdowling/fin-reliability/go-engine/internal/calib"
	"github.com/kdowling/fin-reliability/go-engine/internal/composite"
	"github.com/kdowling/fin-reliability/go-engine/internal/risk"
	"github.com/kdowling/fin-reliability/go-engine/internal/semantic"
	"github.com/kdowling/fin-reliability/go-engine/internal/signal"
)

// #endregion

// #region request-response

// turnRequest is one JSON line on stdin.
type turnRequest struct {
	SessionID         string             `json:"session_id"`
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

// turnResponse is one JSON line on stdout.
type turnResponse struct {
	Score                 float64            `json:"score"`
	Label                 string             `json:"label"`
	Scenario              string             `json:"scenario"`
	ScenarioName          string             `json:"scenario_name"`
	WeightsUsed           map[string]float64 `json:"weights_used"`
	Available             []string           `json:"available_signals"`
	Renormalized          bool               `json:"renormalized"`
	NoData                bool               `json:"no_data,omitempty"`
	SmoothedContradiction *float64           `json:"smoothed_contradiction,omitempty"`
	StabilityIndex        float64            `json:"stability_index"`
	Drift                 bool               `json:"drift"`
	Retuned               bool               `json:"retuned"`
	Warnings              []string           `json:"warnings,omitempty"`
	Turns                 int                `json:"turns"`
	Threshold             float64            `json:"threshold"`
	NeedsReview           bool               `json:"needs_review"`
	HighRiskQuestion      bool               `json:"high_risk_question"`
}

// #endregion request-response

// #region main

func main() {
	_ = godotenv.Load()

	dbPath := envOr("FINREL_DB", "calibration.db")
	estimatorAddr := os.Getenv("FINREL_ESTIMATOR_ADDR")

	store, err := calib.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open calibration store: %v", err)
	}
	defer store.Close()

	sim := buildSimilarity(estimatorAddr)
	static := composite.NewScorer(composite.DefaultConfig())
	scorer := adaptive.NewScorer(static, sim, store, adaptive.DefaultConfig())
	evaluator := risk.NewEvaluator(riskConfig())
	sessions := adaptive.NewManager(store)

	fmt.Fprintln(os.Stderr, "Reliability scorer ready.")
	fmt.Fprintf(os.Stderr, "  DB: %s | Estimator: %s\n", dbPath, orNone(estimatorAddr))
	fmt.Fprintln(os.Stderr, "One JSON request per line on stdin.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	out := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req turnRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			log.Printf("bad request: %v", err)
			continue
		}
		if req.SessionID == "" {
			req.SessionID = "default"
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		res := scorer.Compute(ctx, sessions.Session(req.SessionID), toInput(req))
		cancel()

		score := res.Score
		var scorePtr *float64
		if !res.NoData {
			scorePtr = &score
		}
		assessment := evaluator.Evaluate(scorePtr, res.ScenarioID, req.Question, 0)

		if err := out.Encode(toResponse(res, assessment)); err != nil {
			log.Printf("encode response: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin: %v", err)
	}
}

// #endregion main

// #region wiring

func buildSimilarity(addr string) semantic.Provider {
	if addr == "" {
		return semantic.Lexical{}
	}
	client, err := semantic.NewClient(addr)
	if err != nil {
		log.Printf("[SEM] estimator at %s unavailable: %v, using lexical similarity", addr, err)
		return semantic.Lexical{}
	}
	return semantic.Fallback(client, semantic.Lexical{})
}

func riskConfig() risk.Config {
	cfg := risk.DefaultConfig()
	if envOr("FINREL_HIGH_RISK_FLOOR", "off") == "enforce" {
		cfg.Policy = risk.FloorEnforce
	}
	return cfg
}

func toInput(req turnRequest) adaptive.Input {
	in := adaptive.Input{
		Answer:            req.Answer,
		Question:          req.Question,
		Passages:          req.Passages,
		Uncertainty:       req.Uncertainty,
		ContradictionRaw:  req.ContradictionRaw,
		ComparativeIntent: req.ComparativeIntent,
	}
	if len(req.Facts) > 0 || len(req.Sources) > 0 || len(req.Entities) > 0 {
		in.Facts = &signal.Facts{
			Fields:   req.Facts,
			Sources:  req.Sources,
			Entities: req.Entities,
		}
	}
	return in
}

func toResponse(res adaptive.Result, assessment risk.Assessment) turnResponse {
	weights := make(map[string]float64, len(res.WeightsUsed))
	for name, w := range res.WeightsUsed {
		weights[string(name)] = w
	}
	available := make([]string, 0, len(res.Available))
	for _, name := range res.Available {
		available = append(available, string(name))
	}
	return turnResponse{
		Score:                 res.Score,
		Label:                 string(res.Label),
		Scenario:              res.ScenarioID,
		ScenarioName:          res.ScenarioName,
		WeightsUsed:           weights,
		Available:             available,
		Renormalized:          res.Renormalized,
		NoData:                res.NoData,
		SmoothedContradiction: res.SmoothedContradiction,
		StabilityIndex:        res.StabilityIndex,
		Drift:                 res.DriftDetected,
		Retuned:               res.Retuned,
		Warnings:              res.Warnings,
		Turns:                 res.TurnsProcessed,
		Threshold:             assessment.Threshold,
		NeedsReview:           assessment.NeedsReview,
		HighRiskQuestion:      assessment.HighRiskQuestion,
	}
}

// #endregion wiring

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// #endregion helpers
