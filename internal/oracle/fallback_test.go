package oracle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfill/internal/oracle"
	"docfill/internal/port"
)

// stubOracle counts calls and returns a fixed answer or error.
type stubOracle struct {
	name   string
	fields []port.OracleField
	err    error
	calls  int
}

func (s *stubOracle) Disambiguate(_ context.Context, _ port.OracleRequest) ([]port.OracleField, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.fields, nil
}

func (s *stubOracle) Name() string { return s.name }

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &stubOracle{name: "primary", fields: []port.OracleField{{Occurrence: 0, Label: "Tenant"}}}
	secondary := &stubOracle{name: "secondary"}
	f := oracle.NewFallbackOracle([]port.SemanticOracle{primary, secondary})

	fields, err := f.Disambiguate(context.Background(), port.OracleRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Tenant", fields[0].Label)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
}

func TestFallback_SecondaryCoversPrimaryFailure(t *testing.T) {
	primary := &stubOracle{name: "primary", err: errors.New("boom")}
	secondary := &stubOracle{name: "secondary", fields: []port.OracleField{{Occurrence: 0, Label: "Rent"}}}
	f := oracle.NewFallbackOracle([]port.SemanticOracle{primary, secondary})

	fields, err := f.Disambiguate(context.Background(), port.OracleRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Rent", fields[0].Label)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallback_RateLimitOpensCircuit(t *testing.T) {
	primary := &stubOracle{name: "primary", err: oracle.NewRateLimitError("primary", errors.New("429"), 60)}
	secondary := &stubOracle{name: "secondary", fields: []port.OracleField{{Occurrence: 0}}}
	f := oracle.NewFallbackOracle([]port.SemanticOracle{primary, secondary})

	_, err := f.Disambiguate(context.Background(), port.OracleRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, primary.calls)

	// The rate-limited primary is skipped while its circuit is open.
	_, err = f.Disambiguate(context.Background(), port.OracleRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 2, secondary.calls)
}

func TestFallback_AllRateLimited(t *testing.T) {
	primary := &stubOracle{name: "primary", err: oracle.NewRateLimitError("primary", errors.New("429"), 30)}
	secondary := &stubOracle{name: "secondary", err: oracle.NewRateLimitError("secondary", errors.New("429"), 90)}
	f := oracle.NewFallbackOracle([]port.SemanticOracle{primary, secondary})

	_, err := f.Disambiguate(context.Background(), port.OracleRequest{})
	require.Error(t, err)

	var rlErr *oracle.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
	assert.LessOrEqual(t, rlErr.RetryAfter.Seconds(), 30.0)
}

func TestFallback_AllFailed(t *testing.T) {
	primary := &stubOracle{name: "primary", err: errors.New("boom")}
	secondary := &stubOracle{name: "secondary", err: errors.New("crash")}
	f := oracle.NewFallbackOracle([]port.SemanticOracle{primary, secondary})

	_, err := f.Disambiguate(context.Background(), port.OracleRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all oracles failed")
	assert.Contains(t, err.Error(), "crash")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 30, oracle.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, oracle.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, oracle.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
}
