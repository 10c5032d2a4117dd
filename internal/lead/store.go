package lead

import "context"

// Filter specifies listing criteria for leads.
type Filter struct {
	Search    string `json:"search,omitempty"`
	Status    Status `json:"status,omitempty"`
	Source    Source `json:"source,omitempty"`
	City      string `json:"city,omitempty"`
	MinScore  *int   `json:"min_score,omitempty"`
	MaxScore  *int   `json:"max_score,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Page is one page of listed leads.
type Page struct {
	Items  []Lead `json:"items"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// Store defines the persistence interface for leads and activities.
type Store interface {
	CreateLead(ctx context.Context, l *Lead) error
	GetLead(ctx context.Context, id string) (*Lead, error)
	ListLeads(ctx context.Context, f Filter) (*Page, error)
	UpdateLead(ctx context.Context, l *Lead) error
	DeleteLead(ctx context.Context, id string) error

	AddActivity(ctx context.Context, a *Activity) error
	ListActivities(ctx context.Context, leadID string) ([]Activity, error)

	Stats(ctx context.Context) ([]StatusCount, error)

	Migrate(ctx context.Context) error
	Close() error
}

// sortColumns whitelists sortable fields to their column names.
var sortColumns = map[string]string{
	"created_at":      "created_at",
	"updated_at":      "updated_at",
	"business_name":   "business_name",
	"website_score":   "website_score",
	"estimated_value": "estimated_value",
}
