package core

// Backend represents a pluggable provider of asynchronous city search.
// All search backends must implement this interface to integrate with a
// search session.
//
// Backends are self-contained units that:
// - Know how to resolve a free-text query into City records (API, fixture data, ...)
// - Tag every emission with the operation id the caller issued
// - Keep their own health bookkeeping, independent of any session counters
//
// Event contract for SearchCities(op, query, events):
//   - EventStarted is emitted synchronously, before SearchCities returns, so
//     callers observe the search as in progress before any suspension point.
//   - Exactly one of EventCities or EventError follows, then exactly one
//     EventFinished — unless the operation is cancelled first, in which case
//     the result or error is suppressed and only EventFinished is emitted.
//   - Zero matching records is an error, not an empty success.
//   - Every event carries op, so a consumer can discard emissions of
//     superseded operations by identity.
//
// The events channel must be buffered; backends may emit while the consumer
// is between reads.
type Backend interface {
	// SearchCities begins an asynchronous search operation identified by op.
	// A new call supersedes any operation still in flight on this backend.
	SearchCities(op uint64, query string, events chan<- Event)

	// CancelSearch cancels the in-flight operation, if any. Idempotent; a
	// cancelled operation emits EventFinished and nothing else.
	CancelSearch()

	// IsSearching reports whether an operation is in flight.
	IsSearching() bool

	// Metadata.
	Name() string
	Description() string
	SupportsAutoComplete() bool
	RequiresCredential() bool
	RateLimitPerMinute() int
	SupportedCountries() []string // empty = unrestricted

	// Health and diagnostics. Counters are the backend's own bookkeeping;
	// sessions keep separate counters that survive backend swaps.
	IsAvailable() bool
	LastError() string
	SuccessCount() int
	FailureCount() int

	// Close releases any resources. The backend must not be reused after.
	Close() error
}

// EventKind identifies a backend lifecycle event.
type EventKind int

const (
	// EventStarted confirms an operation began.
	EventStarted EventKind = iota
	// EventCities delivers the result batch of a completed operation.
	EventCities
	// EventError delivers the failure of a completed operation.
	EventError
	// EventFinished closes an operation's bookkeeping, after the result or
	// error, or alone when the operation was cancelled.
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventCities:
		return "cities"
	case EventError:
		return "error"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is a single backend emission, tagged with the operation it was
// issued for so that stale emissions are discardable by identity.
type Event struct {
	Op      uint64
	Kind    EventKind
	Cities  []*City
	Message string
}
