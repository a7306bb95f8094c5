package main

// #region imports
import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kdowling/fin-reliability/go-engine/internal/replay"
)

// #endregion

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to recorded-session fixture JSON")
	jsonOut := flag.Bool("json", false, "output per-turn results as JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/session.json [--json]")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	results, summary := replay.Replay(context.Background(), fixture, replay.DefaultConfig())

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
	} else {
		printTable(results)
	}

	fmt.Printf("\n%d turns: %d retunes, %d drift flags, %d need review\n",
		summary.TotalTurns, summary.Retunes, summary.DriftFlags, summary.NeedsReview)
	for label, count := range summary.Labels {
		fmt.Printf("  %-16s %d\n", label, count)
	}
	fmt.Println("final weights:")
	for name, w := range summary.FinalWeights {
		fmt.Printf("  %-14s %.4f\n", name, w)
	}
}

// #endregion main

// #region table

func printTable(results []replay.TurnResult) {
	fmt.Printf("%-10s %-7s %-16s %-14s %-6s %s\n",
		"TURN", "SCORE", "LABEL", "SCENARIO", "DRIFT", "REVIEW")
	for _, r := range results {
		fmt.Printf("%-10s %-7.4f %-16s %-14s %-6v %v\n",
			r.TurnID, r.Score, r.Label, r.ScenarioID, r.Drift, r.Assessment.NeedsReview)
	}
}

// #endregion table
