// Package backends assembles the backend registry. Every backend kind the
// program knows about is declared here; adding a backend means adding one
// registration to the table below.
package backends

import (
	"github.com/geoquery/citysearch/pkg/backends/mockgeo"
	"github.com/geoquery/citysearch/pkg/backends/nominatim"
	"github.com/geoquery/citysearch/pkg/config"
	"github.com/geoquery/citysearch/pkg/core"
)

// NewRegistry builds the registry with every known backend kind. cfg may be
// nil; backends then start with their built-in defaults. The kinds without a
// factory are declared so their metadata shows up in listings, but creating
// them falls back to the default.
func NewRegistry(cfg *config.Config) (*core.Registry, error) {
	return core.NewRegistry(core.KindNominatim,
		core.Registration{
			Descriptor: core.Descriptor{
				Kind:               core.KindNominatim,
				Description:        "OpenStreetMap Nominatim geocoding service - free worldwide city search",
				RateLimitPerMinute: 60,
			},
			Factory: factoryFor(cfg, core.KindNominatim, nominatim.New),
		},
		core.Registration{
			Descriptor: core.Descriptor{
				Kind:               core.KindMock,
				Description:        "Mock backend for testing - returns predefined test data with configurable delays and errors",
				RateLimitPerMinute: 600,
			},
			Factory: factoryFor(cfg, core.KindMock, mockgeo.New),
		},
		core.Registration{
			Descriptor: core.Descriptor{
				Kind:               core.KindGooglePlaces,
				Description:        "Google Places API - requires API key",
				RequiresCredential: true,
				RateLimitPerMinute: 600,
			},
		},
		core.Registration{
			Descriptor: core.Descriptor{
				Kind:               core.KindOpenCage,
				Description:        "OpenCage geocoding API - requires API key",
				RequiresCredential: true,
				RateLimitPerMinute: 60,
			},
		},
		core.Registration{
			Descriptor: core.Descriptor{
				Kind:               core.KindBingMaps,
				Description:        "Bing Maps locations API - requires API key",
				RequiresCredential: true,
				RateLimitPerMinute: 60,
			},
		},
	)
}

// factoryFor wraps a backend constructor so that, when no explicit config is
// passed at create time, the backend's section of the loaded configuration
// file is used.
func factoryFor(cfg *config.Config, kind core.Kind, construct core.BackendFactory) core.BackendFactory {
	return func(backendConfig interface{}) (core.Backend, error) {
		if backendConfig == nil && cfg != nil {
			backendConfig = cfg.BackendConfig(kind.String())
		}
		return construct(backendConfig)
	}
}
