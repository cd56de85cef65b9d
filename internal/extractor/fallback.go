package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"freightsnap/internal/domain"
	"freightsnap/internal/port"
)

// circuitState tracks rate-limit backoff for a single normalizer.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackNormalizer tries normalizers in order, skipping those with open
// rate-limit circuits. This is an availability fallback across providers,
// not a retry of the same provider: each normalizer is invoked at most
// once per document.
type FallbackNormalizer struct {
	normalizers []port.Normalizer
	circuits    []*circuitState
	names       []string
}

// NewFallbackNormalizer creates a FallbackNormalizer from an ordered list
// of normalizers and their names.
func NewFallbackNormalizer(normalizers []port.Normalizer, names []string) *FallbackNormalizer {
	circuits := make([]*circuitState, len(normalizers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackNormalizer{
		normalizers: normalizers,
		circuits:    circuits,
		names:       names,
	}
}

func (f *FallbackNormalizer) Normalize(ctx context.Context, documentText, sourceName string) (*domain.ExtractedDocument, error) {
	now := time.Now()
	var lastErr error

	for i, n := range f.normalizers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("extractor.FallbackNormalizer: skipping %s (circuit open until %s)",
				f.names[i], resetAt.Format(time.RFC3339))
			continue
		}

		doc, err := n.Normalize(ctx, documentText, sourceName)
		if err == nil {
			return doc, nil
		}

		log.Printf("extractor.FallbackNormalizer: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			f.circuits[i].open(now.Add(rlErr.RetryAfter))
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if lastErr == nil {
		return nil, NewRateLimitError("all", fmt.Errorf("all extraction providers rate limited"), 0)
	}
	return nil, lastErr
}
