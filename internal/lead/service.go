package lead

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// dedupeSearchLimit bounds the candidate set scanned for duplicates.
const dedupeSearchLimit = 10

// Service implements lead ingestion and the CRM operations over the store.
type Service struct {
	store Store
}

// NewService creates a lead service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates, deduplicates, and persists a lead, then logs a creation
// activity. A lead whose case-folded business name matches an existing one
// with either a matching city or a matching website URL is rejected with an
// ErrDuplicate-wrapped error.
func (s *Service) Create(ctx context.Context, l *Lead) (*Lead, error) {
	if l.BusinessName == "" {
		return nil, eris.New("lead: business name is required")
	}
	applyDefaults(l)

	page, err := s.store.ListLeads(ctx, Filter{Search: l.BusinessName, Limit: dedupeSearchLimit})
	if err != nil {
		return nil, eris.Wrap(err, "lead: dedupe search")
	}
	for _, existing := range page.Items {
		if isDuplicate(&existing, l) {
			return nil, eris.Wrapf(ErrDuplicate,
				"lead %q already exists in %s", l.BusinessName, orUnknown(existing.City))
		}
	}

	now := time.Now().UTC()
	l.ID = uuid.New().String()
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.store.CreateLead(ctx, l); err != nil {
		return nil, eris.Wrap(err, "lead: create")
	}

	if err := s.store.AddActivity(ctx, &Activity{
		LeadID:      l.ID,
		Type:        ActivityNote,
		Title:       "Lead created",
		Description: fmt.Sprintf("Lead %q was added via %s", l.BusinessName, l.Source),
	}); err != nil {
		// The lead exists; a missing bookkeeping entry is not worth failing over.
		zap.L().Warn("record creation activity failed", zap.String("lead_id", l.ID), zap.Error(err))
	}

	return l, nil
}

// Get fetches a lead by ID.
func (s *Service) Get(ctx context.Context, id string) (*Lead, error) {
	return s.store.GetLead(ctx, id)
}

// List returns a page of leads matching the filter.
func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	return s.store.ListLeads(ctx, f)
}

// Update persists the given lead record. The ID must be set.
func (s *Service) Update(ctx context.Context, l *Lead) (*Lead, error) {
	if l.ID == "" {
		return nil, eris.New("lead: id is required for update")
	}
	l.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateLead(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateStatus transitions a lead to the given status, stamping ContactedAt
// on the first move to contacted and logging a status_change activity.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	if !status.Valid() {
		return nil, eris.Errorf("lead: invalid status %q", status)
	}

	l, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	if status == StatusContacted && l.ContactedAt == nil {
		now := l.UpdatedAt
		l.ContactedAt = &now
	}

	if err := s.store.UpdateLead(ctx, l); err != nil {
		return nil, err
	}

	if err := s.store.AddActivity(ctx, &Activity{
		LeadID:      id,
		Type:        ActivityStatusChange,
		Title:       fmt.Sprintf("Status changed to %q", status),
		Description: fmt.Sprintf("Lead status was updated to %q", status),
	}); err != nil {
		zap.L().Warn("record status activity failed", zap.String("lead_id", id), zap.Error(err))
	}

	return l, nil
}

// Delete removes a lead.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteLead(ctx, id)
}

// Activities returns a lead's activity log.
func (s *Service) Activities(ctx context.Context, leadID string) ([]Activity, error) {
	if _, err := s.store.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	return s.store.ListActivities(ctx, leadID)
}

// AddActivity appends an activity to a lead's log.
func (s *Service) AddActivity(ctx context.Context, a *Activity) error {
	if a.LeadID == "" {
		return eris.New("lead: activity lead_id is required")
	}
	if a.Title == "" {
		return eris.New("lead: activity title is required")
	}
	if _, err := s.store.GetLead(ctx, a.LeadID); err != nil {
		return err
	}
	return s.store.AddActivity(ctx, a)
}

// Stats assembles dashboard statistics from the per-status aggregates.
func (s *Service) Stats(ctx context.Context) (*DashboardStats, error) {
	counts, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{ByStatus: make(map[Status]StatusCount, len(counts))}
	for _, sc := range counts {
		stats.ByStatus[sc.Status] = sc
		stats.TotalLeads += sc.Count
		stats.TotalPipelineValue += sc.TotalValue
	}
	return stats, nil
}

func applyDefaults(l *Lead) {
	if l.Status == "" {
		l.Status = StatusNew
	}
	if l.Source == "" {
		l.Source = SourceManual
	}
	if l.Country == "" {
		l.Country = "Austria"
	}
}

// isDuplicate applies the dedupe rule: case-folded equal business name
// combined with either an equal city or an equal website URL. Two leads that
// both lack a city (or both lack a URL) compare equal on that field.
func isDuplicate(existing, incoming *Lead) bool {
	if !foldEqual(existing.BusinessName, incoming.BusinessName) {
		return false
	}
	return foldEqual(existing.City, incoming.City) || existing.WebsiteURL == incoming.WebsiteURL
}

// foldEqual compares two strings under Unicode case folding. Business names
// in the Austrian market routinely carry non-ASCII case pairs that ToLower
// misses. The Caser is built per call: cases.Caser documents itself as not
// safe for concurrent use, and Create runs concurrently under the HTTP API.
func foldEqual(a, b string) bool {
	folder := cases.Fold()
	return folder.String(a) == folder.String(b)
}

func orUnknown(city string) string {
	if city == "" {
		return "unknown city"
	}
	return city
}
