// Package results owns the deduplicated, sorted collection of cities a
// search session accumulates. Insertion order is irrelevant: after every
// mutation the collection is sorted by the canonical city ordering, and
// duplicates are rejected by the three-tier matching policy on core.City.
package results

import (
	"slices"
	"sync"

	"github.com/geoquery/citysearch/pkg/core"
)

// Aggregator maintains a duplicate-free, sorted sequence of cities. It is
// exclusively owned by one session; the internal mutex only covers readers
// (CLI, tests) observing while the session's event loop mutates.
type Aggregator struct {
	mu     sync.RWMutex
	cities []*core.City
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Add inserts the city unless it is invalid or a duplicate of an existing
// member. Returns whether it was inserted. Invalid records are dropped
// silently; partial provider data is not an exceptional condition.
func (a *Aggregator) Add(city *core.City) bool {
	if !city.Valid() {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.duplicateLocked(city) {
		return false
	}

	a.cities = append(a.cities, city)
	a.sortLocked()
	return true
}

// AddBatch inserts the batch in a single pass, filtering against both the
// existing collection and entries accepted earlier in the same batch. When
// several batch members are mutually duplicate the earliest in batch order
// wins. Returns the number of cities inserted.
func (a *Aggregator) AddBatch(batch []*core.City) int {
	if len(batch) == 0 {
		return 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	accepted := make([]*core.City, 0, len(batch))
	for _, city := range batch {
		if !city.Valid() {
			continue
		}
		if a.duplicateLocked(city) {
			continue
		}
		if duplicateOfAny(accepted, city) {
			continue
		}
		accepted = append(accepted, city)
	}

	if len(accepted) == 0 {
		return 0
	}

	a.cities = append(a.cities, accepted...)
	a.sortLocked()
	return len(accepted)
}

// Clear empties the collection.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cities = nil
}

// Count returns the number of retained cities.
func (a *Aggregator) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cities)
}

// Cities returns a snapshot of the collection in ascending city order.
func (a *Aggregator) Cities() []*core.City {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snapshot := make([]*core.City, len(a.cities))
	copy(snapshot, a.cities)
	return snapshot
}

func (a *Aggregator) duplicateLocked(city *core.City) bool {
	return duplicateOfAny(a.cities, city)
}

func duplicateOfAny(cities []*core.City, city *core.City) bool {
	for _, existing := range cities {
		if city.DuplicateOf(existing) {
			return true
		}
	}
	return false
}

// Batches are small; a full sort after each mutation keeps the invariant
// simple instead of maintaining an ordered-insert structure.
func (a *Aggregator) sortLocked() {
	slices.SortFunc(a.cities, func(x, y *core.City) int {
		return x.Compare(y)
	})
}
