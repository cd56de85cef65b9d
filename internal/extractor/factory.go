package extractor

import (
	"fmt"

	"freightsnap/internal/config"
	"freightsnap/internal/port"
)

// ProviderFactory is a function that creates a Normalizer from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.Normalizer, error)

// registry of normalizer provider factories, populated explicitly via
// RegisterProvider during wiring.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a normalizer provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// New creates a Normalizer from a provider config using the registered factory.
func New(cfg *config.ProviderConfig) (port.Normalizer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
