package discovery

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/pkg/places"
)

// mockPlaces implements places.Client for testing. Detail lookups may run
// concurrently, so the call log is mutex-guarded.
type mockPlaces struct {
	mu          sync.Mutex
	results     map[string][]places.Place
	searchErr   map[string]error
	details     map[string]*places.PlaceDetails
	searchCalls []string
	detailCalls []string
}

func (m *mockPlaces) TextSearch(_ context.Context, query, _ string) ([]places.Place, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, query)
	m.mu.Unlock()
	if err, ok := m.searchErr[query]; ok {
		return nil, err
	}
	return m.results[query], nil
}

func (m *mockPlaces) Details(_ context.Context, placeID string) (*places.PlaceDetails, error) {
	m.mu.Lock()
	m.detailCalls = append(m.detailCalls, placeID)
	m.mu.Unlock()
	if d, ok := m.details[placeID]; ok {
		return d, nil
	}
	return nil, eris.Errorf("places: details status NOT_FOUND")
}

// mockIngestor implements Ingestor with configurable per-business failures
// and a rudimentary duplicate check.
type mockIngestor struct {
	created   []Candidate
	failNames map[string]error
	dedupe    bool
}

func (m *mockIngestor) Create(_ context.Context, c Candidate) error {
	if err, ok := m.failNames[c.BusinessName]; ok {
		return err
	}
	if m.dedupe {
		for _, existing := range m.created {
			if strings.EqualFold(existing.BusinessName, c.BusinessName) &&
				(strings.EqualFold(existing.City, c.City) || existing.WebsiteURL == c.WebsiteURL) {
				return eris.Errorf("lead %q already exists in %s", c.BusinessName, c.City)
			}
		}
	}
	m.created = append(m.created, c)
	return nil
}
