package oracle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"docfill/internal/port"
)

// circuitState tracks rate-limit backoff for a single oracle.
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

// FallbackOracle tries oracles in order, skipping those with open circuits.
// It implements port.SemanticOracle.
type FallbackOracle struct {
	oracles  []port.SemanticOracle
	circuits []*circuitState
}

// NewFallbackOracle creates a FallbackOracle from an ordered list of oracles.
func NewFallbackOracle(oracles []port.SemanticOracle) *FallbackOracle {
	circuits := make([]*circuitState, len(oracles))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackOracle{
		oracles:  oracles,
		circuits: circuits,
	}
}

func (f *FallbackOracle) Name() string {
	return "fallback"
}

func (f *FallbackOracle) Disambiguate(ctx context.Context, req port.OracleRequest) ([]port.OracleField, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, o := range f.oracles {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("oracle.FallbackOracle: skipping %s (circuit open until %s)", o.Name(), resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		fields, err := o.Disambiguate(ctx, req)
		if err == nil {
			return fields, nil
		}

		log.Printf("oracle.FallbackOracle: %s failed: %v", o.Name(), err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all oracles rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all oracles failed: %w", lastErr)
}
