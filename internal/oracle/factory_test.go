package oracle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfill/internal/config"
	"docfill/internal/oracle"
	"docfill/internal/port"
)

func registerStub(name string) {
	oracle.RegisterProvider(name, func(cfg *config.OracleProviderConfig) (port.SemanticOracle, error) {
		return &stubOracle{name: name}, nil
	})
}

func TestNewOracle_UnknownProvider(t *testing.T) {
	_, err := oracle.NewOracle(&config.OracleProviderConfig{Provider: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown oracle provider")
}

func TestBuildChain_NoneConfigured(t *testing.T) {
	o, err := oracle.BuildChain(&config.OracleConfig{})
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestBuildChain_SingleProvider(t *testing.T) {
	registerStub("stub-single")

	o, err := oracle.BuildChain(&config.OracleConfig{
		Primary: config.OracleProviderConfig{Provider: "stub-single"},
	})
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "stub-single", o.Name())
}

func TestBuildChain_TwoProvidersFallBack(t *testing.T) {
	registerStub("stub-a")
	registerStub("stub-b")

	o, err := oracle.BuildChain(&config.OracleConfig{
		Primary:   config.OracleProviderConfig{Provider: "stub-a"},
		Secondary: config.OracleProviderConfig{Provider: "stub-b"},
	})
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "fallback", o.Name())
}
