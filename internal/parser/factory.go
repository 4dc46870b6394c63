package parser

import (
	"fmt"

	"coverscan/internal/config"
	"coverscan/internal/port"
)

// ProviderFactory is a function that creates a PageParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.PageParser, error)

// registry of recognition provider factories, populated via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a recognition provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewPageParser creates a PageParser from a provider config using the registered factory.
func NewPageParser(cfg *config.ParserProviderConfig) (port.PageParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown recognition provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
