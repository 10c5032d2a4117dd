package lead

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to the given database URL and returns a store.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              UUID PRIMARY KEY,
	business_name   VARCHAR(255) NOT NULL,
	contact_person  VARCHAR(255) NOT NULL DEFAULT '',
	email           VARCHAR(255) NOT NULL DEFAULT '',
	phone           VARCHAR(50) NOT NULL DEFAULT '',
	website_url     TEXT NOT NULL DEFAULT '',
	website_score   INTEGER,
	address         TEXT NOT NULL DEFAULT '',
	city            VARCHAR(100) NOT NULL DEFAULT '',
	postal_code     VARCHAR(10) NOT NULL DEFAULT '',
	country         VARCHAR(100) NOT NULL DEFAULT 'Austria',
	business_type   VARCHAR(100) NOT NULL DEFAULT '',
	source          VARCHAR(32) NOT NULL DEFAULT 'manual',
	status          VARCHAR(32) NOT NULL DEFAULT 'new',
	estimated_value INTEGER,
	notes           TEXT NOT NULL DEFAULT '',
	tags            JSONB NOT NULL DEFAULT '[]',
	metadata        JSONB NOT NULL DEFAULT '{}',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	contacted_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS activities (
	id          BIGSERIAL PRIMARY KEY,
	lead_id     UUID NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
	type        VARCHAR(32) NOT NULL,
	title       VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	metadata    JSONB NOT NULL DEFAULT '{}',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_city ON leads(city);
CREATE INDEX IF NOT EXISTS idx_leads_business_name ON leads(business_name);
CREATE INDEX IF NOT EXISTS idx_activities_lead_id ON activities(lead_id);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateLead inserts a new lead row.
func (s *PostgresStore) CreateLead(ctx context.Context, l *Lead) error {
	tags, meta, err := marshalJSONFields(l.Tags, l.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (`+leadColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		l.ID, l.BusinessName, l.ContactPerson, l.Email, l.Phone, l.WebsiteURL, l.WebsiteScore,
		l.Address, l.City, l.PostalCode, l.Country, l.BusinessType, string(l.Source), string(l.Status),
		l.EstimatedValue, l.Notes, tags, meta, l.CreatedAt, l.UpdatedAt, l.ContactedAt,
	)
	return eris.Wrap(err, "postgres: insert lead")
}

// GetLead fetches a lead by ID, returning ErrNotFound when absent.
func (s *PostgresStore) GetLead(ctx context.Context, id string) (*Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLeadPg(row)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return l, nil
}

// ListLeads returns a filtered, sorted page of leads plus the total count.
func (s *PostgresStore) ListLeads(ctx context.Context, f Filter) (*Page, error) {
	where := ` WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where += fmt.Sprintf(` AND (business_name ILIKE %[1]s OR contact_person ILIKE %[1]s OR email ILIKE %[1]s OR city ILIKE %[1]s OR business_type ILIKE %[1]s)`, p)
	}
	if f.Status != "" {
		where += ` AND status = ` + arg(string(f.Status))
	}
	if f.Source != "" {
		where += ` AND source = ` + arg(string(f.Source))
	}
	if f.City != "" {
		where += ` AND city ILIKE ` + arg("%"+f.City+"%")
	}
	if f.MinScore != nil {
		where += ` AND website_score >= ` + arg(*f.MinScore)
	}
	if f.MaxScore != nil {
		where += ` AND website_score <= ` + arg(*f.MaxScore)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, eris.Wrap(err, "postgres: count leads")
	}

	sortCol, ok := sortColumns[f.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	order := "DESC"
	if f.SortOrder == "asc" {
		order = "ASC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + leadColumns + ` FROM leads` + where +
		` ORDER BY ` + sortCol + ` ` + order +
		` LIMIT ` + arg(limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLeadPg(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate leads")
	}

	return &Page{Items: items, Total: total, Limit: limit, Offset: f.Offset}, nil
}

// UpdateLead persists all mutable fields of the lead.
func (s *PostgresStore) UpdateLead(ctx context.Context, l *Lead) error {
	tags, meta, err := marshalJSONFields(l.Tags, l.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET business_name = $1, contact_person = $2, email = $3, phone = $4,
			website_url = $5, website_score = $6, address = $7, city = $8, postal_code = $9,
			country = $10, business_type = $11, source = $12, status = $13, estimated_value = $14,
			notes = $15, tags = $16, metadata = $17, updated_at = $18, contacted_at = $19
		 WHERE id = $20`,
		l.BusinessName, l.ContactPerson, l.Email, l.Phone,
		l.WebsiteURL, l.WebsiteScore, l.Address, l.City, l.PostalCode,
		l.Country, l.BusinessType, string(l.Source), string(l.Status), l.EstimatedValue,
		l.Notes, tags, meta, l.UpdatedAt, l.ContactedAt,
		l.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", l.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: lead %s", l.ID)
	}
	return nil
}

// DeleteLead removes a lead and, via cascade, its activities.
func (s *PostgresStore) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	return nil
}

// AddActivity appends an entry to a lead's activity log.
func (s *PostgresStore) AddActivity(ctx context.Context, a *Activity) error {
	meta, err := json.Marshal(orEmptyMap(a.Metadata))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal activity metadata")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO activities (lead_id, type, title, description, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.LeadID, string(a.Type), a.Title, a.Description, string(meta), a.CreatedAt,
	).Scan(&a.ID)
	return eris.Wrapf(err, "postgres: insert activity for %s", a.LeadID)
}

// ListActivities returns a lead's activity log, newest first.
func (s *PostgresStore) ListActivities(ctx context.Context, leadID string) ([]Activity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, lead_id, type, title, description, metadata, created_at
		 FROM activities WHERE lead_id = $1 ORDER BY created_at DESC, id DESC`,
		leadID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list activities for %s", leadID)
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		var (
			a        Activity
			actType  string
			metaJSON []byte
		)
		if err := rows.Scan(&a.ID, &a.LeadID, &actType, &a.Title, &a.Description, &metaJSON, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan activity")
		}
		a.Type = ActivityType(actType)
		if err := json.Unmarshal(metaJSON, &a.Metadata); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal activity metadata")
		}
		activities = append(activities, a)
	}
	return activities, eris.Wrap(rows.Err(), "postgres: iterate activities")
}

// Stats aggregates lead counts and pipeline value by status.
func (s *PostgresStore) Stats(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(estimated_value), 0) FROM leads GROUP BY status`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats")
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var (
			sc     StatusCount
			status string
		)
		if err := rows.Scan(&status, &sc.Count, &sc.TotalValue); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stats")
		}
		sc.Status = Status(status)
		counts = append(counts, sc)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: iterate stats")
}

func scanLeadPg(row pgx.Row) (*Lead, error) {
	var (
		l              Lead
		source, status string
		tagsJSON       []byte
		metaJSON       []byte
	)
	err := row.Scan(
		&l.ID, &l.BusinessName, &l.ContactPerson, &l.Email, &l.Phone, &l.WebsiteURL, &l.WebsiteScore,
		&l.Address, &l.City, &l.PostalCode, &l.Country, &l.BusinessType, &source, &status,
		&l.EstimatedValue, &l.Notes, &tagsJSON, &metaJSON, &l.CreatedAt, &l.UpdatedAt, &l.ContactedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Source = Source(source)
	l.Status = Status(status)
	if err := json.Unmarshal(tagsJSON, &l.Tags); err != nil {
		return nil, eris.Wrap(err, "unmarshal tags")
	}
	if err := json.Unmarshal(metaJSON, &l.Metadata); err != nil {
		return nil, eris.Wrap(err, "unmarshal metadata")
	}
	return &l, nil
}
