package semantic

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestLexicalSimilarity(t *testing.T) {
	var l Lexical
	ctx := context.Background()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "apple stock price today", "apple stock price today", 1.0},
		{"disjoint", "apple stock price", "weather forecast rain", 0.0},
		{"empty", "", "apple stock", 0.0},
		{"both-empty", "", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Similarity(ctx, tt.a, tt.b)
			if err != nil {
				t.Fatalf("similarity: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}

	// Partial overlap lands strictly between the extremes.
	got, err := l.Similarity(ctx, "apple stock price", "apple stock earnings")
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if got <= 0 || got >= 1 {
		t.Errorf("partial overlap: got %f, want (0, 1)", got)
	}
}

// fixed is a provider with scripted availability and result.
type fixed struct {
	available bool
	sim       float64
	err       error
}

func (f fixed) Available() bool { return f.available }

func (f fixed) Similarity(_ context.Context, _, _ string) (float64, error) {
	return f.sim, f.err
}

func TestChainFallsThrough(t *testing.T) {
	ctx := context.Background()

	// Unavailable and erroring providers are skipped in order.
	chain := Fallback(
		fixed{available: false, sim: 0.1},
		fixed{available: true, err: errors.New("boom")},
		fixed{available: true, sim: 0.9},
	)
	if !chain.Available() {
		t.Fatal("chain with a usable provider must be available")
	}
	got, err := chain.Similarity(ctx, "a", "b")
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if got != 0.9 {
		t.Errorf("got %f, want 0.9 from the last provider", got)
	}
}

func TestChainExhausted(t *testing.T) {
	chain := Fallback(
		fixed{available: false},
		fixed{available: true, err: errors.New("boom")},
	)
	if _, err := chain.Similarity(context.Background(), "a", "b"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}

	empty := Fallback()
	if empty.Available() {
		t.Error("empty chain must be unavailable")
	}
}
