package core

import (
	"fmt"
)

// Kind identifies a backend implementation. Kind names are case-sensitive
// and round-trip through KindFromString for every available kind.
type Kind string

const (
	KindNominatim    Kind = "Nominatim"
	KindMock         Kind = "Mock"
	KindGooglePlaces Kind = "GooglePlaces"
	KindOpenCage     Kind = "OpenCage"
	KindBingMaps     Kind = "BingMaps"
)

func (k Kind) String() string {
	return string(k)
}

// Descriptor is pure backend metadata, behavior-free.
type Descriptor struct {
	Kind               Kind
	Description        string
	RequiresCredential bool
	RateLimitPerMinute int
}

// BackendFactory constructs a backend instance. config may be nil for
// defaults, a typed config pointer, or raw decoded configuration data.
type BackendFactory func(config interface{}) (Backend, error)

// Registration binds a descriptor to its factory. A nil factory declares a
// kind that is known but not implemented; such kinds keep their metadata but
// are excluded from AvailableKinds and fall back on Create.
type Registration struct {
	Descriptor
	Factory BackendFactory
}

// Registry maps backend kinds to constructors. The table is built once at
// startup and never mutated afterward; callers share it by reference.
type Registry struct {
	def     Kind
	order   []Kind
	entries map[Kind]Registration
}

// NewRegistry builds a registry from an explicit registration table. The
// default kind must be registered with a working factory since every
// unknown-kind lookup lands on it.
func NewRegistry(def Kind, regs ...Registration) (*Registry, error) {
	r := &Registry{
		def:     def,
		entries: make(map[Kind]Registration, len(regs)),
	}

	for _, reg := range regs {
		if reg.Kind == "" {
			return nil, fmt.Errorf("registration without a kind")
		}
		if _, exists := r.entries[reg.Kind]; exists {
			return nil, fmt.Errorf("backend kind %s already registered", reg.Kind)
		}
		r.entries[reg.Kind] = reg
		r.order = append(r.order, reg.Kind)
	}

	defReg, ok := r.entries[def]
	if !ok {
		return nil, fmt.Errorf("default backend kind %s not registered", def)
	}
	if defReg.Factory == nil {
		return nil, fmt.Errorf("default backend kind %s has no factory", def)
	}

	return r, nil
}

// Create constructs a backend for the given kind. Unknown kinds and kinds
// without a working constructor deterministically fall back to the default
// kind; callers detect the fallback by inspecting the backend's name.
func (r *Registry) Create(kind Kind, config interface{}) (Backend, error) {
	reg, ok := r.entries[kind]
	if !ok || reg.Factory == nil {
		reg = r.entries[r.def]
	}

	backend, err := reg.Factory(config)
	if err != nil {
		return nil, fmt.Errorf("creating %s backend: %w", reg.Kind, err)
	}
	return backend, nil
}

// AvailableKinds lists the kinds with a working constructor, in registration
// order. Declared-but-unimplemented kinds are excluded rather than
// listed-then-failing.
func (r *Registry) AvailableKinds() []Kind {
	kinds := make([]Kind, 0, len(r.order))
	for _, kind := range r.order {
		if r.entries[kind].Factory != nil {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Kinds lists every registered kind, available or not.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, len(r.order))
	copy(kinds, r.order)
	return kinds
}

// DefaultKind returns the fallback kind.
func (r *Registry) DefaultKind() Kind {
	return r.def
}

// KindFromString resolves a name to a kind. Matching is case-sensitive and
// only available kinds resolve; anything else maps to the default kind.
func (r *Registry) KindFromString(name string) Kind {
	kind := Kind(name)
	if reg, ok := r.entries[kind]; ok && reg.Factory != nil {
		return kind
	}
	return r.def
}

// Available reports whether the kind has a working constructor.
func (r *Registry) Available(kind Kind) bool {
	reg, ok := r.entries[kind]
	return ok && reg.Factory != nil
}

// RequiresCredential reports whether the kind needs an access credential.
func (r *Registry) RequiresCredential(kind Kind) bool {
	return r.entries[kind].RequiresCredential
}

// Description returns the kind's human-readable description.
func (r *Registry) Description(kind Kind) string {
	return r.entries[kind].Description
}

// RateLimit returns the kind's requests-per-minute hint.
func (r *Registry) RateLimit(kind Kind) int {
	return r.entries[kind].RateLimitPerMinute
}

// Describe returns the full descriptor for a kind.
func (r *Registry) Describe(kind Kind) (Descriptor, bool) {
	reg, ok := r.entries[kind]
	return reg.Descriptor, ok
}
