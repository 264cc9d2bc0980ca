package storage

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Snapshot is the full police table held in memory. It is built once at
// startup and shared read-only.
type Snapshot struct {
	stops     []Stop
	countries []string
	loadedAt  time.Time
}

func LoadSnapshot(ctx context.Context, store *Store) (*Snapshot, error) {
	stops, err := store.LoadStops(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stops: %w", err)
	}
	return NewSnapshot(stops), nil
}

func NewSnapshot(stops []Stop) *Snapshot {
	seen := make(map[string]struct{})
	var countries []string
	for _, stop := range stops {
		if !stop.CountryName.Valid {
			continue
		}
		if _, ok := seen[stop.CountryName.String]; ok {
			continue
		}
		seen[stop.CountryName.String] = struct{}{}
		countries = append(countries, stop.CountryName.String)
	}
	sort.Strings(countries)

	return &Snapshot{
		stops:     stops,
		countries: countries,
		loadedAt:  time.Now(),
	}
}

// Stops returns the records in load order. Callers must not modify the slice.
func (s *Snapshot) Stops() []Stop {
	if s == nil {
		return nil
	}
	return s.stops
}

// Countries returns the sorted distinct non-null country names.
func (s *Snapshot) Countries() []string {
	if s == nil {
		return nil
	}
	return s.countries
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.stops)
}

func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}
