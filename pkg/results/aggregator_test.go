package results

import (
	"testing"

	"github.com/geoquery/citysearch/pkg/core"
)

func berlin() *core.City {
	return core.NewCity("Berlin", "Berlin, Germany", "Germany", 52.5200, 13.4050)
}

func TestAddAndCount(t *testing.T) {
	agg := New()

	if !agg.Add(berlin()) {
		t.Fatal("First add should insert")
	}
	if agg.Count() != 1 {
		t.Errorf("Count = %d, want 1", agg.Count())
	}
}

func TestAddIsIdempotentForDuplicates(t *testing.T) {
	agg := New()

	agg.Add(berlin())
	if agg.Add(berlin()) {
		t.Error("Second add of the same city should be rejected")
	}
	if agg.Count() != 1 {
		t.Errorf("Count = %d, want 1 after duplicate add", agg.Count())
	}
}

func TestAddDropsInvalidSilently(t *testing.T) {
	agg := New()

	if agg.Add(nil) {
		t.Error("nil should never be inserted")
	}
	if agg.Add(core.NewCity("", "Berlin, Germany", "Germany", 52.52, 13.405)) {
		t.Error("City without name should be dropped")
	}
	if agg.Add(core.NewCity("Berlin", "", "Germany", 52.52, 13.405)) {
		t.Error("City without display name should be dropped")
	}
	if agg.Count() != 0 {
		t.Errorf("Count = %d, want 0", agg.Count())
	}
}

func TestAddBatchFiltersAgainstExisting(t *testing.T) {
	agg := New()
	agg.Add(berlin())

	added := agg.AddBatch([]*core.City{
		core.NewCity("berlin", "BERLIN, GERMANY", "Germany", 12.0, 12.0), // display name dup
		core.NewCity("Munich", "Munich, Germany", "Germany", 48.1351, 11.5820),
	})

	if added != 1 {
		t.Errorf("AddBatch added %d, want 1", added)
	}
	if agg.Count() != 2 {
		t.Errorf("Count = %d, want 2", agg.Count())
	}
}

func TestAddBatchFirstSeenWins(t *testing.T) {
	agg := New()

	first := core.NewCity("Test City", "Test City, Test Country", "Test Country", 50.0, 10.0)
	batch := []*core.City{
		first,
		core.NewCity("Test City", "Test City, Test Country", "Test Country", 50.0001, 10.0001),
		core.NewCity("test city", "TEST CITY, TEST COUNTRY", "test country", 50.0, 10.0),
	}

	if added := agg.AddBatch(batch); added != 1 {
		t.Fatalf("AddBatch added %d, want 1", added)
	}

	cities := agg.Cities()
	if len(cities) != 1 {
		t.Fatalf("Count = %d, want 1", len(cities))
	}
	if cities[0] != first {
		t.Error("The earliest batch member should be the one retained")
	}
}

func TestAddBatchEquivalentToRepeatedAdd(t *testing.T) {
	batch := []*core.City{
		core.NewCity("Paris", "Paris, France", "France", 48.8566, 2.3522),
		nil,
		core.NewCity("Lyon", "Lyon, France", "France", 45.7640, 4.8357),
		core.NewCity("Paris", "Paris, France", "France", 48.8566, 2.3522),
	}

	viaBatch := New()
	batchAdded := viaBatch.AddBatch(batch)

	viaAdd := New()
	addAdded := 0
	for _, c := range batch {
		if viaAdd.Add(c) {
			addAdded++
		}
	}

	if batchAdded != addAdded {
		t.Errorf("AddBatch inserted %d, repeated Add inserted %d", batchAdded, addAdded)
	}
	if viaBatch.Count() != viaAdd.Count() {
		t.Errorf("Counts differ: batch %d vs add %d", viaBatch.Count(), viaAdd.Count())
	}
}

func TestSortInvariant(t *testing.T) {
	agg := New()

	agg.AddBatch([]*core.City{
		core.NewCity("Munich", "Munich, Germany", "Germany", 48.1351, 11.5820),
		core.NewCity("amsterdam", "amsterdam, Netherlands", "Netherlands", 52.37, 4.89),
	})
	agg.Add(core.NewCity("Berlin", "Berlin, Germany", "Germany", 52.5200, 13.4050))
	agg.AddBatch([]*core.City{
		core.NewCity("Zagreb", "Zagreb, Croatia", "Croatia", 45.8150, 15.9819),
		core.NewCity("Athens", "Athens, Greece", "Greece", 37.9838, 23.7275),
	})

	cities := agg.Cities()
	for i := 1; i < len(cities); i++ {
		if cities[i].Less(cities[i-1]) {
			t.Errorf("Cities out of order at %d: %s before %s", i, cities[i-1].DisplayName, cities[i].DisplayName)
		}
	}
}

func TestClear(t *testing.T) {
	agg := New()
	agg.Add(berlin())

	agg.Clear()
	if agg.Count() != 0 {
		t.Errorf("Count = %d after Clear, want 0", agg.Count())
	}

	// The collection accepts the same city again after clearing.
	if !agg.Add(berlin()) {
		t.Error("Add after Clear should insert")
	}
}

func TestCitiesReturnsSnapshot(t *testing.T) {
	agg := New()
	agg.Add(berlin())

	snapshot := agg.Cities()
	snapshot[0] = nil

	if agg.Cities()[0] == nil {
		t.Error("Mutating the returned slice must not affect the aggregator")
	}
}
