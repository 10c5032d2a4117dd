// Package lead defines the lead record, its activity log, and the ingestion
// service that deduplicates and persists leads.
package lead

import (
	"time"

	"github.com/rotisserie/eris"
)

// Status is a lead's position in the sales funnel.
type Status string

// Lead statuses.
const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusProposal  Status = "proposal"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusWon, StatusLost:
		return true
	}
	return false
}

// Source identifies how a lead entered the system.
type Source string

// Lead sources.
const (
	SourceScraped      Source = "scraped"
	SourceManual       Source = "manual"
	SourceReferral     Source = "referral"
	SourceGooglePlaces Source = "google_places"
	SourceDirectory    Source = "directory"
)

// ActivityType classifies entries in a lead's activity log.
type ActivityType string

// Activity types.
const (
	ActivityNote         ActivityType = "note"
	ActivityEmail        ActivityType = "email"
	ActivityCall         ActivityType = "call"
	ActivityMeeting      ActivityType = "meeting"
	ActivityProposalSent ActivityType = "proposal_sent"
	ActivityStatusChange ActivityType = "status_change"
)

// Lead is a persisted business record.
type Lead struct {
	ID             string         `json:"id" db:"id"`
	BusinessName   string         `json:"business_name" db:"business_name"`
	ContactPerson  string         `json:"contact_person,omitempty" db:"contact_person"`
	Email          string         `json:"email,omitempty" db:"email"`
	Phone          string         `json:"phone,omitempty" db:"phone"`
	WebsiteURL     string         `json:"website_url,omitempty" db:"website_url"`
	WebsiteScore   *int           `json:"website_score,omitempty" db:"website_score"`
	Address        string         `json:"address,omitempty" db:"address"`
	City           string         `json:"city,omitempty" db:"city"`
	PostalCode     string         `json:"postal_code,omitempty" db:"postal_code"`
	Country        string         `json:"country,omitempty" db:"country"`
	BusinessType   string         `json:"business_type,omitempty" db:"business_type"`
	Source         Source         `json:"source" db:"source"`
	Status         Status         `json:"status" db:"status"`
	EstimatedValue *int           `json:"estimated_value,omitempty" db:"estimated_value"`
	Notes          string         `json:"notes,omitempty" db:"notes"`
	Tags           []string       `json:"tags" db:"tags"`
	Metadata       map[string]any `json:"metadata" db:"metadata"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
	ContactedAt    *time.Time     `json:"contacted_at,omitempty" db:"contacted_at"`
}

// Activity is one entry in a lead's activity log.
type Activity struct {
	ID          int64          `json:"id" db:"id"`
	LeadID      string         `json:"lead_id" db:"lead_id"`
	Type        ActivityType   `json:"type" db:"type"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description,omitempty" db:"description"`
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// StatusCount is the per-status aggregate used by dashboard stats.
type StatusCount struct {
	Status     Status `json:"status"`
	Count      int    `json:"count"`
	TotalValue int    `json:"total_value"`
}

// DashboardStats summarizes the pipeline.
type DashboardStats struct {
	TotalLeads         int                    `json:"total_leads"`
	TotalPipelineValue int                    `json:"total_pipeline_value"`
	ByStatus           map[Status]StatusCount `json:"by_status"`
}

// Sentinel errors. Wrap these so callers can distinguish duplicate-conflict
// and not-found outcomes with eris.Is.
var (
	ErrDuplicate = eris.New("lead: duplicate")
	ErrNotFound  = eris.New("lead: not found")
)
