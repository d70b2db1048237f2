package mockgeo

import (
	"fmt"
	"strings"

	"github.com/geoquery/citysearch/pkg/core"
)

type seedCity struct {
	name    string
	country string
	lat     float64
	lon     float64
}

// Fixed dataset served by the mock backend. The tail entries are
// intentional near-duplicates so the deduplication path gets exercised with
// realistic provider noise.
var dataset = []seedCity{
	{"Berlin", "Germany", 52.5200, 13.4050},
	{"Munich", "Germany", 48.1351, 11.5820},
	{"Hamburg", "Germany", 53.5511, 9.9937},
	{"Cologne", "Germany", 50.9375, 6.9603},
	{"Frankfurt", "Germany", 50.1109, 8.6821},
	{"New York", "United States", 40.7128, -74.0060},
	{"Los Angeles", "United States", 34.0522, -118.2437},
	{"Chicago", "United States", 41.8781, -87.6298},
	{"San Francisco", "United States", 37.7749, -122.4194},
	{"London", "United Kingdom", 51.5074, -0.1278},
	{"Manchester", "United Kingdom", 53.4808, -2.2426},
	{"Birmingham", "United Kingdom", 52.4862, -1.8904},
	{"Paris", "France", 48.8566, 2.3522},
	{"Lyon", "France", 45.7640, 4.8357},
	{"Marseille", "France", 43.2965, 5.3698},
	// Near-duplicate coordinates and exact repeats.
	{"Berlin", "Germany", 52.5201, 13.4051},
	{"London", "United Kingdom", 51.5074, -0.1278},
	{"Paris", "France", 48.8566, 2.3522},
}

func (s seedCity) toCity() *core.City {
	displayName := fmt.Sprintf("%s, %s", s.name, s.country)
	return core.NewCity(s.name, displayName, s.country, s.lat, s.lon)
}

// generateCities filters the dataset against the query and falls back to
// generic synthetic results when nothing matches. Queries containing "test"
// optionally get an injected duplicate cluster.
func generateCities(query string, includeDuplicates bool) []*core.City {
	lowerQuery := strings.ToLower(strings.TrimSpace(query))
	var cities []*core.City

	for _, seed := range dataset {
		lowerName := strings.ToLower(seed.name)
		lowerCountry := strings.ToLower(seed.country)
		if strings.Contains(lowerName, lowerQuery) ||
			strings.Contains(lowerCountry, lowerQuery) ||
			strings.Contains(lowerQuery, lowerName) {
			cities = append(cities, seed.toCity())
		}
	}

	if includeDuplicates && strings.Contains(lowerQuery, "test") {
		cities = append(cities,
			core.NewCity("Test City", "Test City, Test Country", "Test Country", 50.0, 10.0),
			core.NewCity("Test City", "Test City, Test Country", "Test Country", 50.0001, 10.0001),
			core.NewCity("Test City", "Test City, Test Country", "Test Country", 50.0, 10.0),
			core.NewCity("Test City", "Test City, Test Country", "Test Country", 50.1, 10.1),
		)
	}

	if len(cities) == 0 && lowerQuery != "" {
		n := len(lowerQuery)
		if n > 3 {
			n = 3
		}
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("Mock City %d (%s)", i+1, query)
			displayName := fmt.Sprintf("%s, Mock Country", name)
			cities = append(cities, core.NewCity(name, displayName, "Mock Country", 50.0+float64(i)*0.1, 10.0+float64(i)*0.1))
		}
	}

	return cities
}
