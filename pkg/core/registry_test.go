package core

import (
	"testing"
)

// Stub backend for registry tests.
type stubBackend struct {
	name string
}

func (s *stubBackend) SearchCities(op uint64, query string, events chan<- Event) {
	events <- Event{Op: op, Kind: EventStarted}
	events <- Event{Op: op, Kind: EventError, Message: "stub backend has no data"}
	events <- Event{Op: op, Kind: EventFinished}
}
func (s *stubBackend) CancelSearch()                {}
func (s *stubBackend) IsSearching() bool            { return false }
func (s *stubBackend) Name() string                 { return s.name }
func (s *stubBackend) Description() string          { return "stub" }
func (s *stubBackend) SupportsAutoComplete() bool   { return false }
func (s *stubBackend) RequiresCredential() bool     { return false }
func (s *stubBackend) RateLimitPerMinute() int      { return 0 }
func (s *stubBackend) SupportedCountries() []string { return nil }
func (s *stubBackend) IsAvailable() bool            { return true }
func (s *stubBackend) LastError() string            { return "" }
func (s *stubBackend) SuccessCount() int            { return 0 }
func (s *stubBackend) FailureCount() int            { return 0 }
func (s *stubBackend) Close() error                 { return nil }

func stubFactory(name string) BackendFactory {
	return func(config interface{}) (Backend, error) {
		return &stubBackend{name: name}, nil
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry("Alpha",
		Registration{
			Descriptor: Descriptor{Kind: "Alpha", Description: "first stub", RateLimitPerMinute: 60},
			Factory:    stubFactory("Alpha"),
		},
		Registration{
			Descriptor: Descriptor{Kind: "Beta", Description: "second stub", RequiresCredential: true, RateLimitPerMinute: 10},
			Factory:    stubFactory("Beta"),
		},
		Registration{
			Descriptor: Descriptor{Kind: "Gamma", Description: "declared but unimplemented", RequiresCredential: true},
		},
	)
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}
	return r
}

func TestRegistryAvailableKindsExcludesUnimplemented(t *testing.T) {
	r := testRegistry(t)

	kinds := r.AvailableKinds()
	if len(kinds) != 2 || kinds[0] != "Alpha" || kinds[1] != "Beta" {
		t.Errorf("AvailableKinds = %v, want [Alpha Beta]", kinds)
	}

	if r.Available("Gamma") {
		t.Error("Kind without factory should not be available")
	}
	if all := r.Kinds(); len(all) != 3 {
		t.Errorf("Kinds should list declared kinds too, got %v", all)
	}
}

func TestRegistryCreateKnownKind(t *testing.T) {
	r := testRegistry(t)

	backend, err := r.Create("Beta", nil)
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}
	if backend.Name() != "Beta" {
		t.Errorf("Created backend name = %s, want Beta", backend.Name())
	}
}

func TestRegistryCreateFallsBackToDefault(t *testing.T) {
	r := testRegistry(t)

	for _, kind := range []Kind{"DoesNotExist", "Gamma", "alpha"} {
		backend, err := r.Create(kind, nil)
		if err != nil {
			t.Fatalf("Create(%s) returned error: %v", kind, err)
		}
		if backend.Name() != "Alpha" {
			t.Errorf("Create(%s) name = %s, want fallback Alpha", kind, backend.Name())
		}
	}
}

func TestRegistryKindFromStringRoundTrip(t *testing.T) {
	r := testRegistry(t)

	for _, kind := range r.AvailableKinds() {
		if got := r.KindFromString(kind.String()); got != kind {
			t.Errorf("KindFromString(%s) = %s, want round-trip", kind, got)
		}
	}

	// Matching is case-sensitive; unknown strings map to the default kind.
	if got := r.KindFromString("alpha"); got != "Alpha" {
		t.Errorf("KindFromString(alpha) = %s, want default Alpha", got)
	}
	if got := r.KindFromString("DoesNotExist"); got != r.DefaultKind() {
		t.Errorf("KindFromString(DoesNotExist) = %s, want default", got)
	}
	// Unimplemented kinds resolve to the default too.
	if got := r.KindFromString("Gamma"); got != r.DefaultKind() {
		t.Errorf("KindFromString(Gamma) = %s, want default", got)
	}
}

func TestRegistryMetadata(t *testing.T) {
	r := testRegistry(t)

	if !r.RequiresCredential("Beta") {
		t.Error("Beta should require a credential")
	}
	if r.RequiresCredential("Alpha") {
		t.Error("Alpha should not require a credential")
	}
	if r.Description("Alpha") != "first stub" {
		t.Errorf("Description(Alpha) = %q", r.Description("Alpha"))
	}
	if r.RateLimit("Beta") != 10 {
		t.Errorf("RateLimit(Beta) = %d, want 10", r.RateLimit("Beta"))
	}
	if desc, ok := r.Describe("Gamma"); !ok || desc.Kind != "Gamma" {
		t.Errorf("Describe(Gamma) = %+v ok=%v", desc, ok)
	}
}

func TestRegistryConstructionErrors(t *testing.T) {
	alpha := Registration{
		Descriptor: Descriptor{Kind: "Alpha"},
		Factory:    stubFactory("Alpha"),
	}

	if _, err := NewRegistry("Alpha", alpha, alpha); err == nil {
		t.Error("Duplicate kind registration should fail")
	}

	if _, err := NewRegistry("Missing", alpha); err == nil {
		t.Error("Unregistered default kind should fail")
	}

	noFactory := Registration{Descriptor: Descriptor{Kind: "Empty"}}
	if _, err := NewRegistry("Empty", noFactory); err == nil {
		t.Error("Default kind without factory should fail")
	}
}
