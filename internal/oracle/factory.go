package oracle

import (
	"fmt"

	"docfill/internal/config"
	"docfill/internal/port"
)

// ProviderFactory is a function that creates a SemanticOracle from a provider config.
type ProviderFactory func(cfg *config.OracleProviderConfig) (port.SemanticOracle, error)

// registry of oracle provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an oracle provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewOracle creates a SemanticOracle from a provider config using the registered factory.
func NewOracle(cfg *config.OracleProviderConfig) (port.SemanticOracle, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown oracle provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// BuildChain constructs the oracle for the configured providers. With two
// providers it returns a fallback chain, with one a single oracle, and with
// none it returns nil so callers run heuristic-only.
func BuildChain(cfg *config.OracleConfig) (port.SemanticOracle, error) {
	var oracles []port.SemanticOracle
	for _, pc := range []*config.OracleProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig()} {
		if pc == nil {
			continue
		}
		o, err := NewOracle(pc)
		if err != nil {
			return nil, fmt.Errorf("building oracle %s: %w", pc.Provider, err)
		}
		oracles = append(oracles, o)
	}
	switch len(oracles) {
	case 0:
		return nil, nil
	case 1:
		return oracles[0], nil
	default:
		return NewFallbackOracle(oracles), nil
	}
}
