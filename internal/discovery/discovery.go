// Package discovery implements the lead discovery pipeline: batch Google
// Places searches, website quality assessment, and opportunity scoring.
package discovery

import "context"

// SourceGooglePlaces tags candidates produced by this pipeline.
const SourceGooglePlaces = "google_places"

// StatusNew is the initial status assigned to discovered candidates.
const StatusNew = "new"

// Candidate is an in-memory business record produced by discovery, pending
// deduplication and persistence.
type Candidate struct {
	BusinessName     string         `json:"business_name"`
	WebsiteURL       string         `json:"website_url,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	Address          string         `json:"address,omitempty"`
	City             string         `json:"city,omitempty"`
	BusinessType     string         `json:"business_type"`
	Source           string         `json:"source"`
	Status           string         `json:"status"`
	WebsiteScore     int            `json:"website_score"`
	OpportunityScore int            `json:"opportunity_score"`
	Metadata         map[string]any `json:"metadata"`
}

// QueryResult holds the candidates and errors produced by a single query.
type QueryResult struct {
	Query      string      `json:"query"`
	Candidates []Candidate `json:"candidates"`
	Errors     []string    `json:"errors"`
	Source     string      `json:"source"`
}

// Report aggregates the outcome of one discovery batch.
type Report struct {
	TotalFound   int           `json:"total_found"`
	TotalCreated int           `json:"total_created"`
	Results      []QueryResult `json:"results"`
	Errors       []string      `json:"errors"`
}

// Ingestor persists candidate leads. Implementations deduplicate: creating a
// candidate that matches an existing lead returns an error rather than a
// second record.
type Ingestor interface {
	Create(ctx context.Context, c Candidate) error
}
