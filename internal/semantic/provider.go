package semantic

// #region imports
import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode"
)

// #endregion

// #region provider

// Provider computes semantic similarity between two texts in [0, 1].
// An unavailable provider is a normal missing-signal condition for
// callers, never a crash.
type Provider interface {
	Available() bool
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// ErrUnavailable is returned when no provider in a chain can serve a call.
var ErrUnavailable = errors.New("semantic: no similarity provider available")

// #endregion provider

// #region chain

// Chain tries providers in order, falling through on unavailability or error.
type Chain struct {
	providers []Provider
}

// Fallback builds a provider chain. Typical use: gRPC sidecar first,
// lexical cosine last.
func Fallback(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Available reports whether any provider in the chain is usable.
func (c *Chain) Available() bool {
	for _, p := range c.providers {
		if p.Available() {
			return true
		}
	}
	return false
}

// Similarity returns the first successful result in chain order.
func (c *Chain) Similarity(ctx context.Context, a, b string) (float64, error) {
	for _, p := range c.providers {
		if !p.Available() {
			continue
		}
		if sim, err := p.Similarity(ctx, a, b); err == nil {
			return sim, nil
		}
	}
	return 0, ErrUnavailable
}

// #endregion chain

// #region lexical

// Lexical is a dependency-free similarity provider: cosine over token
// count vectors. Always available.
type Lexical struct{}

// Available always reports true.
func (Lexical) Available() bool { return true }

// Similarity computes cosine similarity between token count vectors.
// Returns 0 for empty inputs.
func (Lexical) Similarity(_ context.Context, a, b string) (float64, error) {
	va := countVector(a)
	vb := countVector(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0, nil
	}

	var dot, normA, normB float64
	for tok, ca := range va {
		normA += ca * ca
		if cb, ok := vb[tok]; ok {
			dot += ca * cb
		}
	}
	for _, cb := range vb {
		normB += cb * cb
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0, nil
	}
	return dot / denom, nil
}

func countVector(text string) map[string]float64 {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	vec := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		if len(t) < 2 {
			continue
		}
		vec[t]++
	}
	return vec
}

// #endregion lexical
