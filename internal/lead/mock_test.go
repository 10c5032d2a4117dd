package lead

import (
	"context"
	"strings"
)

// mockStore implements Store in memory for service tests.
type mockStore struct {
	leads      []Lead
	activities []Activity
	nextActID  int64
	listErr    error
	createErr  error
}

func (m *mockStore) CreateLead(_ context.Context, l *Lead) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.leads = append(m.leads, *l)
	return nil
}

func (m *mockStore) GetLead(_ context.Context, id string) (*Lead, error) {
	for i := range m.leads {
		if m.leads[i].ID == id {
			l := m.leads[i]
			return &l, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockStore) ListLeads(_ context.Context, f Filter) (*Page, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	items := make([]Lead, 0)
	for _, l := range m.leads {
		if f.Search != "" && !strings.Contains(strings.ToLower(l.BusinessName), strings.ToLower(f.Search)) {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		items = append(items, l)
	}
	return &Page{Items: items, Total: len(items), Limit: f.Limit, Offset: f.Offset}, nil
}

func (m *mockStore) UpdateLead(_ context.Context, l *Lead) error {
	for i := range m.leads {
		if m.leads[i].ID == l.ID {
			m.leads[i] = *l
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) DeleteLead(_ context.Context, id string) error {
	for i := range m.leads {
		if m.leads[i].ID == id {
			m.leads = append(m.leads[:i], m.leads[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) AddActivity(_ context.Context, a *Activity) error {
	m.nextActID++
	a.ID = m.nextActID
	m.activities = append(m.activities, *a)
	return nil
}

func (m *mockStore) ListActivities(_ context.Context, leadID string) ([]Activity, error) {
	var out []Activity
	for _, a := range m.activities {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) Stats(_ context.Context) ([]StatusCount, error) {
	byStatus := make(map[Status]*StatusCount)
	for _, l := range m.leads {
		sc, ok := byStatus[l.Status]
		if !ok {
			sc = &StatusCount{Status: l.Status}
			byStatus[l.Status] = sc
		}
		sc.Count++
		if l.EstimatedValue != nil {
			sc.TotalValue += *l.EstimatedValue
		}
	}
	var out []StatusCount
	for _, sc := range byStatus {
		out = append(out, *sc)
	}
	return out, nil
}

func (m *mockStore) Migrate(context.Context) error { return nil }
func (m *mockStore) Close() error                  { return nil }
