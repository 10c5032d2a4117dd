package discovery

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/lead"
)

// LeadIngestor adapts the lead service to the pipeline's Ingestor contract.
type LeadIngestor struct {
	svc *lead.Service
}

// NewLeadIngestor creates an ingestor backed by the lead service.
func NewLeadIngestor(svc *lead.Service) *LeadIngestor {
	return &LeadIngestor{svc: svc}
}

// Create converts the candidate into a lead record and hands it to the
// service, which deduplicates before persisting.
func (li *LeadIngestor) Create(ctx context.Context, c Candidate) error {
	ws := c.WebsiteScore
	_, err := li.svc.Create(ctx, &lead.Lead{
		BusinessName: c.BusinessName,
		Phone:        c.Phone,
		WebsiteURL:   c.WebsiteURL,
		WebsiteScore: &ws,
		Address:      c.Address,
		City:         c.City,
		BusinessType: c.BusinessType,
		Source:       lead.Source(c.Source),
		Status:       lead.Status(c.Status),
		Metadata:     c.Metadata,
	})
	return err
}
