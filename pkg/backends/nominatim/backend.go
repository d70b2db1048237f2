// Package nominatim implements the city search backend for the
// OpenStreetMap Nominatim geocoding API. It is free to use without a
// credential; the public instance asks for a meaningful User-Agent and at
// most one request per second.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/geoquery/citysearch/pkg/config"
	"github.com/geoquery/citysearch/pkg/core"
	"github.com/geoquery/citysearch/pkg/log"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent = "citysearch/0.1 (github.com/geoquery/citysearch)"
	defaultLimit     = 10
	defaultTimeout   = 30 * time.Second
)

// Config holds the Nominatim endpoint settings.
type Config struct {
	BaseURL   string          `toml:"base_url"`
	UserAgent string          `toml:"user_agent"`
	Limit     int             `toml:"limit"`
	Timeout   config.Duration `toml:"timeout"`
}

func (c *Config) Validate() error {
	if c.Limit != 0 && (c.Limit < minLimit || c.Limit > maxLimit) {
		return fmt.Errorf("limit must be between %d and %d, got %d", minLimit, maxLimit, c.Limit)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := Config{
		BaseURL:   defaultBaseURL,
		UserAgent: defaultUserAgent,
		Limit:     defaultLimit,
		Timeout:   config.Duration{Duration: defaultTimeout},
	}
	if c == nil {
		return out
	}
	if c.BaseURL != "" {
		out.BaseURL = c.BaseURL
	}
	if c.UserAgent != "" {
		out.UserAgent = c.UserAgent
	}
	if c.Limit != 0 {
		out.Limit = c.Limit
	}
	if c.Timeout.Duration != 0 {
		out.Timeout = c.Timeout
	}
	return out
}

// Backend is the Nominatim-backed search backend.
type Backend struct {
	cfg    Config
	client *http.Client
	logger *log.Logger

	mu           sync.Mutex
	searching    bool
	activeOp     uint64
	cancel       context.CancelFunc
	lastError    string
	successCount int
	failureCount int
}

// New creates a Nominatim backend. config may be nil (defaults), *Config,
// or a raw TOML table.
func New(rawConfig interface{}) (core.Backend, error) {
	var cfg *Config
	switch c := rawConfig.(type) {
	case nil:
	case *Config:
		cfg = c
	default:
		cfg = &Config{}
		if err := config.Decode(rawConfig, cfg); err != nil {
			return nil, fmt.Errorf("invalid config for nominatim backend: %w", err)
		}
	}
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	resolved := cfg.withDefaults()
	return &Backend{
		cfg:    resolved,
		client: &http.Client{Timeout: resolved.Timeout.Duration},
		logger: log.ForComponent("nominatim"),
	}, nil
}

// SearchCities begins an asynchronous Nominatim search. The started event
// is emitted before the network request is issued.
func (b *Backend) SearchCities(op uint64, query string, events chan<- core.Event) {
	request := newSearchRequest(query, b.cfg.Limit)

	b.mu.Lock()
	if b.searching && b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.searching = true
	b.activeOp = op
	b.mu.Unlock()

	events <- core.Event{Op: op, Kind: core.EventStarted}

	if err := request.validate(); err != nil {
		msg := fmt.Sprintf("invalid request: %v", err)
		b.logger.Errorf("%s", msg)
		b.mu.Lock()
		b.failLocked(msg)
		b.mu.Unlock()
		events <- core.Event{Op: op, Kind: core.EventError, Message: msg}
		events <- core.Event{Op: op, Kind: core.EventFinished}
		return
	}

	b.logger.Debugf("search op=%d query=%q limit=%d", op, query, request.limit)
	go b.run(ctx, op, request, events)
}

func (b *Backend) run(ctx context.Context, op uint64, request searchRequest, events chan<- core.Event) {
	cities, err := b.fetch(ctx, request)

	b.mu.Lock()
	if ctx.Err() != nil {
		// Cancelled: suppress the outcome, confirm with finished only. A
		// superseded operation must not clear the searching flag of the
		// newer one.
		if b.activeOp == op {
			b.searching = false
		}
		b.mu.Unlock()
		events <- core.Event{Op: op, Kind: core.EventFinished}
		return
	}

	if err != nil {
		msg := err.Error()
		b.failLocked(msg)
		b.mu.Unlock()
		b.logger.Warnf("search op=%d failed: %s", op, msg)
		events <- core.Event{Op: op, Kind: core.EventError, Message: msg}
		events <- core.Event{Op: op, Kind: core.EventFinished}
		return
	}

	b.searching = false
	b.successCount++
	b.lastError = ""
	b.mu.Unlock()

	b.logger.Infof("found %d cities for op=%d", len(cities), op)
	events <- core.Event{Op: op, Kind: core.EventCities, Cities: cities}
	events <- core.Event{Op: op, Kind: core.EventFinished}
}

func (b *Backend) fetch(ctx context.Context, request searchRequest) ([]*core.City, error) {
	reqURL, err := request.url(b.cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", b.cfg.UserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim API returned status %d", resp.StatusCode)
	}

	var records []placeRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	cities := make([]*core.City, 0, len(records))
	for _, record := range records {
		if city := record.toCity(); city != nil {
			cities = append(cities, city)
		}
	}

	if len(cities) == 0 {
		return nil, fmt.Errorf("no cities found for your search query")
	}

	return cities, nil
}

// placeRecord mirrors one element of the Nominatim response array.
// Coordinates arrive as JSON strings.
type placeRecord struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		Country      string `json:"country"`
	} `json:"address"`
}

// toCity translates a raw record, or returns nil when the essentials are
// missing. The city name falls back through town, village and municipality,
// then to the first segment of the display name.
func (p placeRecord) toCity() *core.City {
	name := p.Address.City
	if name == "" {
		name = p.Address.Town
	}
	if name == "" {
		name = p.Address.Village
	}
	if name == "" {
		name = p.Address.Municipality
	}
	if name == "" {
		if parts := strings.SplitN(p.DisplayName, ",", 2); len(parts) > 0 {
			name = strings.TrimSpace(parts[0])
		}
	}

	if name == "" || p.DisplayName == "" {
		return nil
	}

	lat, _ := strconv.ParseFloat(p.Lat, 64)
	lon, _ := strconv.ParseFloat(p.Lon, 64)
	return core.NewCity(name, p.DisplayName, p.Address.Country, lat, lon)
}

func (b *Backend) failLocked(msg string) {
	b.searching = false
	b.failureCount++
	b.lastError = msg
}

// CancelSearch aborts the in-flight request, if any. Idempotent.
func (b *Backend) CancelSearch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.searching || b.cancel == nil {
		return
	}
	b.logger.Infof("cancelling nominatim search")
	b.cancel()
	b.cancel = nil
}

func (b *Backend) IsSearching() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searching
}

func (b *Backend) Name() string { return "Nominatim" }
func (b *Backend) Description() string {
	return "OpenStreetMap Nominatim geocoding service - free worldwide city search"
}
func (b *Backend) SupportsAutoComplete() bool   { return false }
func (b *Backend) RequiresCredential() bool     { return false }
func (b *Backend) RateLimitPerMinute() int      { return 60 }
func (b *Backend) SupportedCountries() []string { return nil }

func (b *Backend) IsAvailable() bool { return b.client != nil }

func (b *Backend) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

func (b *Backend) SuccessCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.successCount
}

func (b *Backend) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// Close aborts any pending request and releases idle connections.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.searching = false
	b.mu.Unlock()

	b.client.CloseIdleConnections()
	return nil
}
