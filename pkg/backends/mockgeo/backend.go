// Package mockgeo implements a deterministic search backend used for
// testing and offline development. It serves a fixed dataset with
// configurable network delay, error injection and custom result overrides.
package mockgeo

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/geoquery/citysearch/pkg/config"
	"github.com/geoquery/citysearch/pkg/core"
	"github.com/geoquery/citysearch/pkg/log"
)

// Config controls the simulation knobs.
type Config struct {
	SimulateDelay     bool            `toml:"simulate_delay"`
	Delay             config.Duration `toml:"delay"`
	SimulateErrors    bool            `toml:"simulate_errors"`
	ErrorRate         float64         `toml:"error_rate"`
	IncludeDuplicates bool            `toml:"include_duplicates"`
}

func (c *Config) Validate() error {
	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		return fmt.Errorf("error_rate must be within [0, 1], got %g", c.ErrorRate)
	}
	if c.Delay.Duration < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	return nil
}

// Backend is the mock search backend.
type Backend struct {
	logger *log.Logger
	rng    *rand.Rand

	mu           sync.Mutex
	cfg          Config
	custom       []*core.City
	searching    bool
	activeOp     uint64
	cancel       context.CancelFunc
	lastError    string
	successCount int
	failureCount int
}

// New creates a mock backend. config may be nil (defaults), *Config, or a
// raw TOML table.
func New(rawConfig interface{}) (core.Backend, error) {
	cfg := Config{}
	switch c := rawConfig.(type) {
	case nil:
	case *Config:
		cfg = *c
	default:
		if err := config.Decode(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("invalid config for mock backend: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Backend{
		logger: log.ForComponent("mock"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:    cfg,
	}, nil
}

// SearchCities begins a simulated search. The started event is emitted
// before returning; the outcome is delivered from a goroutine when delay
// simulation is on, synchronously otherwise.
func (b *Backend) SearchCities(op uint64, query string, events chan<- core.Event) {
	b.mu.Lock()
	if b.searching && b.cancel != nil {
		b.logger.Warnf("search already in progress, cancelling previous search")
		b.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.searching = true
	b.activeOp = op
	delay := time.Duration(0)
	if b.cfg.SimulateDelay {
		delay = b.cfg.Delay.Duration
	}
	b.mu.Unlock()

	events <- core.Event{Op: op, Kind: core.EventStarted}
	b.logger.Debugf("mock search op=%d query=%q delay=%v", op, query, delay)

	if strings.TrimSpace(query) == "" {
		b.emitError(op, "query cannot be empty", events)
		return
	}

	if delay > 0 {
		go b.run(ctx, op, query, delay, events)
		return
	}
	b.run(ctx, op, query, 0, events)
}

func (b *Backend) run(ctx context.Context, op uint64, query string, delay time.Duration, events chan<- core.Event) {
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			b.emitCancelled(op, events)
			return
		}
	}

	b.mu.Lock()
	if ctx.Err() != nil {
		b.mu.Unlock()
		b.emitCancelled(op, events)
		return
	}

	if b.shouldSimulateErrorLocked() {
		msg := fmt.Sprintf("simulated network error for query: %s", query)
		b.failLocked(msg)
		b.mu.Unlock()
		events <- core.Event{Op: op, Kind: core.EventError, Message: msg}
		events <- core.Event{Op: op, Kind: core.EventFinished}
		return
	}

	cities := b.resultsForLocked(query)
	if len(cities) == 0 {
		msg := fmt.Sprintf("no cities found for query: %s", query)
		b.failLocked(msg)
		b.mu.Unlock()
		events <- core.Event{Op: op, Kind: core.EventError, Message: msg}
		events <- core.Event{Op: op, Kind: core.EventFinished}
		return
	}

	b.searching = false
	b.successCount++
	b.lastError = ""
	b.mu.Unlock()

	b.logger.Debugf("returning %d mock cities for op=%d", len(cities), op)
	events <- core.Event{Op: op, Kind: core.EventCities, Cities: cities}
	events <- core.Event{Op: op, Kind: core.EventFinished}
}

// emitError reports a failed operation that never suspended.
func (b *Backend) emitError(op uint64, msg string, events chan<- core.Event) {
	b.mu.Lock()
	b.failLocked(msg)
	b.mu.Unlock()
	events <- core.Event{Op: op, Kind: core.EventError, Message: msg}
	events <- core.Event{Op: op, Kind: core.EventFinished}
}

// emitCancelled closes a cancelled operation: finished only, no result, no
// error, counters untouched. Only the current operation may clear the
// searching flag; a superseded goroutine settling late must not clobber the
// state of the newer operation.
func (b *Backend) emitCancelled(op uint64, events chan<- core.Event) {
	b.mu.Lock()
	if b.activeOp == op {
		b.searching = false
	}
	b.mu.Unlock()
	events <- core.Event{Op: op, Kind: core.EventFinished}
}

func (b *Backend) failLocked(msg string) {
	b.searching = false
	b.failureCount++
	b.lastError = msg
}

// CancelSearch cancels the pending operation, if any. Idempotent.
func (b *Backend) CancelSearch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.searching || b.cancel == nil {
		b.logger.Debugf("cancel requested but no search in progress")
		return
	}
	b.logger.Infof("cancelling mock search")
	b.cancel()
	b.cancel = nil
}

func (b *Backend) IsSearching() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searching
}

// SetSimulateNetworkDelay enables or disables delay simulation.
func (b *Backend) SetSimulateNetworkDelay(enable bool, delay time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.SimulateDelay = enable
	b.cfg.Delay = config.Duration{Duration: delay}
}

// SetSimulateErrors enables or disables error injection. The rate is
// clamped to [0, 1].
func (b *Backend) SetSimulateErrors(enable bool, rate float64) {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.SimulateErrors = enable
	b.cfg.ErrorRate = rate
}

// SetCustomResults installs a fixed result set that overrides the generated
// data. Copies are stored; the caller keeps ownership of its slice.
func (b *Backend) SetCustomResults(cities []*core.City) {
	copies := make([]*core.City, 0, len(cities))
	for _, c := range cities {
		if c == nil {
			continue
		}
		dup := *c
		copies = append(copies, &dup)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.custom = copies
}

// ClearCustomResults removes the fixed result set.
func (b *Backend) ClearCustomResults() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.custom = nil
}

// SetIncludeDuplicates toggles duplicate injection for "test" queries.
func (b *Backend) SetIncludeDuplicates(enable bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.IncludeDuplicates = enable
}

func (b *Backend) shouldSimulateErrorLocked() bool {
	if !b.cfg.SimulateErrors {
		return false
	}
	return b.rng.Float64() < b.cfg.ErrorRate
}

func (b *Backend) resultsForLocked(query string) []*core.City {
	if len(b.custom) > 0 {
		cities := make([]*core.City, 0, len(b.custom))
		for _, c := range b.custom {
			dup := *c
			cities = append(cities, &dup)
		}
		return cities
	}
	return generateCities(query, b.cfg.IncludeDuplicates)
}

func (b *Backend) Name() string { return "Mock" }
func (b *Backend) Description() string {
	return "Mock backend for testing - returns predefined test data with configurable delays and errors"
}
func (b *Backend) SupportsAutoComplete() bool   { return true }
func (b *Backend) RequiresCredential() bool     { return false }
func (b *Backend) RateLimitPerMinute() int      { return 600 }
func (b *Backend) SupportedCountries() []string { return nil }

func (b *Backend) IsAvailable() bool { return true }

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

// Close cancels any pending operation.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.searching = false
	return nil
}
