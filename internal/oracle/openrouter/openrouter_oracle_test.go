package openrouter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfill/internal/config"
	"docfill/internal/domain"
	"docfill/internal/oracle"
	"docfill/internal/oracle/openrouter"
	"docfill/internal/port"
)

func testConfig() *config.OracleProviderConfig {
	return &config.OracleProviderConfig{
		Provider:     "openrouter",
		APIKey:       "test-key",
		DefaultModel: "test/model",
	}
}

func request() port.OracleRequest {
	return port.OracleRequest{
		DocumentText: "Rent: {amount}",
		Occurrences: []domain.Occurrence{
			{RawText: "{amount}", Kind: domain.KindCurly, Context: "Rent: {amount}"},
		},
	}
}

func completion(content, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]string{"content": content},
				"finish_reason": finishReason,
			},
		},
	}
}

func TestDisambiguate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test/model", body["model"])
		assert.Equal(t, float64(0), body["temperature"])

		_ = json.NewEncoder(w).Encode(completion(`{"fields":[{"occurrence":0,"label":"Rent Amount","data_type":"currency","same_field_as":null}]}`, "stop"))
	}))
	defer server.Close()

	o := openrouter.NewOracleWithEndpoint(testConfig(), server.URL)
	fields, err := o.Disambiguate(context.Background(), request())
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Rent Amount", fields[0].Label)
	assert.Equal(t, domain.DataTypeCurrency, fields[0].DataType)
}

func TestDisambiguate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	o := openrouter.NewOracleWithEndpoint(testConfig(), server.URL)
	_, err := o.Disambiguate(context.Background(), request())
	require.Error(t, err)

	var rlErr *oracle.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openrouter", rlErr.Provider)
	// No Retry-After header falls back to the default backoff.
	assert.Equal(t, 60.0, rlErr.RetryAfter.Seconds())
}

func TestDisambiguate_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completion(`{"fields":[{"occ`, "length"))
	}))
	defer server.Close()

	o := openrouter.NewOracleWithEndpoint(testConfig(), server.URL)
	_, err := o.Disambiguate(context.Background(), request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finish_reason: length")
}

func TestDisambiguate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	o := openrouter.NewOracleWithEndpoint(testConfig(), server.URL)
	_, err := o.Disambiguate(context.Background(), request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
