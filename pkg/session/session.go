// Package session implements the search session: one active backend, an
// aggregated result set and the bookkeeping that ties asynchronous backend
// events back to the operation that caused them.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/geoquery/citysearch/pkg/config"
	"github.com/geoquery/citysearch/pkg/core"
	"github.com/geoquery/citysearch/pkg/log"
	"github.com/geoquery/citysearch/pkg/results"
)

// ErrEmptyQuery is returned by Search for blank queries. The backend is
// never invoked in that case.
var ErrEmptyQuery = errors.New("search query cannot be empty")

// Hooks are optional notifications fired from the session's event loop.
// They run outside the session lock but on the loop goroutine, so they must
// not block for long.
type Hooks struct {
	SearchStarted   func()
	SearchCompleted func(added int)
	SearchFailed    func(message string)
}

// Session owns a backend and an aggregated result set. Backend events carry
// the operation id they belong to; the session discards everything that is
// not from the current operation, which makes backend swaps and rapid
// re-searches safe without coordinating with the backend goroutines.
type Session struct {
	id       string
	logger   *log.Logger
	registry *core.Registry
	cfg      *config.Config
	hooks    Hooks

	events chan core.Event
	done   chan struct{}

	mu           sync.Mutex
	backend      core.Backend
	aggregator   *results.Aggregator
	activeOp     uint64
	searching    bool
	lastError    string
	successCount int
	failureCount int
	closed       bool
}

// New creates a session using the registry's default backend, or the
// configured default when cfg names one. The session's event loop starts
// immediately.
func New(registry *core.Registry, cfg *config.Config, hooks Hooks) (*Session, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	kind := registry.DefaultKind()
	if cfg != nil && cfg.DefaultBackend != "" {
		kind = registry.KindFromString(cfg.DefaultBackend)
	}

	backend, err := registry.Create(kind, nil)
	if err != nil {
		return nil, fmt.Errorf("creating initial backend: %w", err)
	}

	s := &Session{
		id:         uuid.NewString()[:8],
		logger:     log.ForComponent("session"),
		registry:   registry,
		cfg:        cfg,
		hooks:      hooks,
		events:     make(chan core.Event, 64),
		done:       make(chan struct{}),
		backend:    backend,
		aggregator: results.New(),
	}

	s.logger.Debugf("session %s started with backend %s", s.id, backend.Name())
	go s.loop()
	return s, nil
}

func (s *Session) loop() {
	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
		case <-s.done:
			return
		}
	}
}

// apply folds one backend event into the session state. Events from
// superseded operations are dropped here; this is the only place session
// state changes in response to a backend.
func (s *Session) apply(ev core.Event) {
	s.mu.Lock()

	if ev.Op != s.activeOp {
		s.mu.Unlock()
		s.logger.Debugf("discarding stale event %s op=%d active=%d", ev.Kind, ev.Op, s.activeOp)
		return
	}

	var hook func()
	switch ev.Kind {
	case core.EventStarted:
		s.searching = true
		if s.hooks.SearchStarted != nil {
			hook = s.hooks.SearchStarted
		}
	case core.EventCities:
		added := s.aggregator.AddBatch(ev.Cities)
		s.successCount++
		s.lastError = ""
		s.logger.Debugf("op=%d delivered %d cities, %d new", ev.Op, len(ev.Cities), added)
		if s.hooks.SearchCompleted != nil {
			completed := s.hooks.SearchCompleted
			hook = func() { completed(added) }
		}
	case core.EventError:
		s.failureCount++
		s.lastError = ev.Message
		s.logger.Warnf("op=%d failed: %s", ev.Op, ev.Message)
		if s.hooks.SearchFailed != nil {
			failed := s.hooks.SearchFailed
			msg := ev.Message
			hook = func() { failed(msg) }
		}
	case core.EventFinished:
		s.searching = false
	}

	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Search clears the current results and starts a new search operation. An
// in-flight search is cancelled and its remaining events discarded. Blank
// queries fail without touching the backend.
func (s *Session) Search(query string) error {
	if strings.TrimSpace(query) == "" {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return fmt.Errorf("session is closed")
		}
		s.failureCount++
		s.lastError = ErrEmptyQuery.Error()
		failed := s.hooks.SearchFailed
		s.mu.Unlock()

		if failed != nil {
			failed(ErrEmptyQuery.Error())
		}
		return ErrEmptyQuery
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session is closed")
	}
	if s.searching {
		s.backend.CancelSearch()
	}
	s.activeOp++
	op := s.activeOp
	s.aggregator.Clear()
	s.lastError = ""
	s.searching = true
	backend := s.backend
	s.mu.Unlock()

	s.logger.Infof("session %s search op=%d query=%q backend=%s", s.id, op, query, backend.Name())
	backend.SearchCities(op, query, s.events)
	return nil
}

// Cancel aborts the in-flight search, if any. The results collected so far
// are kept; the operation stays current so its closing event clears the
// searching flag.
func (s *Session) Cancel() {
	s.mu.Lock()
	backend := s.backend
	s.mu.Unlock()
	backend.CancelSearch()
}

// ClearResults empties the aggregated result set and the last error, and
// cancels any in-flight search. The operation stays current so the
// backend's closing event clears the searching flag.
func (s *Session) ClearResults() {
	s.mu.Lock()
	s.aggregator.Clear()
	s.lastError = ""
	backend := s.backend
	s.mu.Unlock()
	backend.CancelSearch()
}

// SetBackend swaps the active backend. The previous backend's search is
// cancelled and the backend closed; any of its events still in flight
// become stale. Session counters and results are preserved.
func (s *Session) SetBackend(backend core.Backend) error {
	if backend == nil {
		return fmt.Errorf("backend cannot be nil")
	}

	s.mu.Lock()
	old := s.backend
	s.backend = backend
	s.activeOp++
	s.searching = false
	s.lastError = ""
	s.mu.Unlock()

	old.CancelSearch()
	if err := old.Close(); err != nil {
		s.logger.Warnf("closing previous backend %s: %v", old.Name(), err)
	}

	s.logger.Infof("session %s switched backend %s -> %s", s.id, old.Name(), backend.Name())
	return nil
}

// SetBackendByName resolves a backend name through the registry and swaps
// to it. Unknown or unimplemented names resolve to the default kind.
func (s *Session) SetBackendByName(name string) error {
	kind := s.registry.KindFromString(name)
	if kind.String() != name {
		s.logger.Warnf("backend %q not available, using %s", name, kind)
	}

	var raw interface{}
	if s.cfg != nil {
		raw = s.cfg.BackendConfig(kind.String())
	}
	backend, err := s.registry.Create(kind, raw)
	if err != nil {
		return fmt.Errorf("creating backend %s: %w", kind, err)
	}
	return s.SetBackend(backend)
}

// ID returns the session correlation id.
func (s *Session) ID() string {
	return s.id
}

// BackendName returns the active backend's name.
func (s *Session) BackendName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Name()
}

// Backend returns the active backend.
func (s *Session) Backend() core.Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend
}

// Cities returns the aggregated results, sorted.
func (s *Session) Cities() []*core.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregator.Cities()
}

// Count returns the number of aggregated results.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregator.Count()
}

// IsSearching reports whether a search operation is in flight.
func (s *Session) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// LastError returns the message of the most recent failure, or empty after
// a success.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// SuccessCount returns the number of completed searches in this session.
// Counters survive backend swaps.
func (s *Session) SuccessCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successCount
}

// FailureCount returns the number of failed searches in this session.
func (s *Session) FailureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureCount
}

// Close stops the event loop and closes the backend. The session is
// unusable afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	backend := s.backend
	s.mu.Unlock()

	backend.CancelSearch()
	err := backend.Close()
	close(s.done)

	s.logger.Debugf("session %s closed", s.id)
	return err
}
