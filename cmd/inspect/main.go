package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kdowling/fin-reliability/go-engine/internal/calib"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to calibration.db")
	session := flag.String("session", "default", "session ID to inspect")
	last := flag.Int("last", 20, "show N most recent calibration versions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/calibration.db [--session id] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := calib.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := store.History(*session, *last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Printf("no calibration history for session %q\n", *session)
		return
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printTable(records)
}

// #endregion main

// #region table

func printTable(records []calib.Record) {
	fmt.Printf("%-36s %-6s %-20s %s\n", "VERSION", "TURNS", "CREATED", "REASON")
	for _, rec := range records {
		fmt.Printf("%-36s %-6d %-20s %s\n",
			rec.VersionID, rec.TotalTurns,
			rec.CreatedAt.Format(time.RFC3339), rec.Reason)
		for name, w := range rec.Weights {
			fmt.Printf("    %-14s %.4f\n", name, w)
		}
	}
}

// #endregion table
