package lead

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	business_name   TEXT NOT NULL,
	contact_person  TEXT NOT NULL DEFAULT '',
	email           TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	website_url     TEXT NOT NULL DEFAULT '',
	website_score   INTEGER,
	address         TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL DEFAULT '',
	postal_code     TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL DEFAULT 'Austria',
	business_type   TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT 'manual',
	status          TEXT NOT NULL DEFAULT 'new',
	estimated_value INTEGER,
	notes           TEXT NOT NULL DEFAULT '',
	tags            TEXT NOT NULL DEFAULT '[]',
	metadata        TEXT NOT NULL DEFAULT '{}',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	contacted_at    DATETIME
);

CREATE TABLE IF NOT EXISTS activities (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	lead_id     TEXT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
	type        TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '{}',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_city ON leads(city);
CREATE INDEX IF NOT EXISTS idx_leads_business_name ON leads(business_name);
CREATE INDEX IF NOT EXISTS idx_activities_lead_id ON activities(lead_id);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const leadColumns = `id, business_name, contact_person, email, phone, website_url, website_score,
	address, city, postal_code, country, business_type, source, status,
	estimated_value, notes, tags, metadata, created_at, updated_at, contacted_at`

// CreateLead inserts a new lead row.
func (s *SQLiteStore) CreateLead(ctx context.Context, l *Lead) error {
	tags, meta, err := marshalJSONFields(l.Tags, l.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (`+leadColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.BusinessName, l.ContactPerson, l.Email, l.Phone, l.WebsiteURL, l.WebsiteScore,
		l.Address, l.City, l.PostalCode, l.Country, l.BusinessType, string(l.Source), string(l.Status),
		l.EstimatedValue, l.Notes, tags, meta, l.CreatedAt, l.UpdatedAt, l.ContactedAt,
	)
	return eris.Wrap(err, "sqlite: insert lead")
}

// GetLead fetches a lead by ID, returning ErrNotFound when absent.
func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id,
	)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return l, nil
}

// ListLeads returns a filtered, sorted page of leads plus the total count.
func (s *SQLiteStore) ListLeads(ctx context.Context, f Filter) (*Page, error) {
	where := ` WHERE 1=1`
	var args []any

	if f.Search != "" {
		where += ` AND (business_name LIKE ? OR contact_person LIKE ? OR email LIKE ? OR city LIKE ? OR business_type LIKE ?)`
		term := "%" + f.Search + "%"
		args = append(args, term, term, term, term, term)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.Source != "" {
		where += ` AND source = ?`
		args = append(args, string(f.Source))
	}
	if f.City != "" {
		where += ` AND city LIKE ?`
		args = append(args, "%"+f.City+"%")
	}
	if f.MinScore != nil {
		where += ` AND website_score >= ?`
		args = append(args, *f.MinScore)
	}
	if f.MaxScore != nil {
		where += ` AND website_score <= ?`
		args = append(args, *f.MaxScore)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, eris.Wrap(err, "sqlite: count leads")
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
		` ORDER BY ` + sortCol + ` ` + order + ` LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	items := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate leads")
	}

	return &Page{Items: items, Total: total, Limit: limit, Offset: f.Offset}, nil
}

// UpdateLead persists all mutable fields of the lead.
func (s *SQLiteStore) UpdateLead(ctx context.Context, l *Lead) error {
	tags, meta, err := marshalJSONFields(l.Tags, l.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET business_name = ?, contact_person = ?, email = ?, phone = ?,
			website_url = ?, website_score = ?, address = ?, city = ?, postal_code = ?,
			country = ?, business_type = ?, source = ?, status = ?, estimated_value = ?,
			notes = ?, tags = ?, metadata = ?, updated_at = ?, contacted_at = ?
		 WHERE id = ?`,
		l.BusinessName, l.ContactPerson, l.Email, l.Phone,
		l.WebsiteURL, l.WebsiteScore, l.Address, l.City, l.PostalCode,
		l.Country, l.BusinessType, string(l.Source), string(l.Status), l.EstimatedValue,
		l.Notes, tags, meta, l.UpdatedAt, l.ContactedAt,
		l.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", l.ID)
	}
	return checkRowsAffected(res, l.ID)
}

// DeleteLead removes a lead and, via cascade, its activities.
func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %s", id)
	}
	return checkRowsAffected(res, id)
}

// AddActivity appends an entry to a lead's activity log.
func (s *SQLiteStore) AddActivity(ctx context.Context, a *Activity) error {
	meta, err := json.Marshal(orEmptyMap(a.Metadata))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal activity metadata")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (lead_id, type, title, description, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.LeadID, string(a.Type), a.Title, a.Description, string(meta), a.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert activity for %s", a.LeadID)
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

// ListActivities returns a lead's activity log, newest first.
func (s *SQLiteStore) ListActivities(ctx context.Context, leadID string) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lead_id, type, title, description, metadata, created_at
		 FROM activities WHERE lead_id = ? ORDER BY created_at DESC, id DESC`,
		leadID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list activities for %s", leadID)
	}
	defer rows.Close() //nolint:errcheck

	activities := make([]Activity, 0)
	for rows.Next() {
		var (
			a        Activity
			actType  string
			metaJSON string
		)
		if err := rows.Scan(&a.ID, &a.LeadID, &actType, &a.Title, &a.Description, &metaJSON, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan activity")
		}
		a.Type = ActivityType(actType)
		if err := json.Unmarshal([]byte(metaJSON), &a.Metadata); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal activity metadata")
		}
		activities = append(activities, a)
	}
	return activities, eris.Wrap(rows.Err(), "sqlite: iterate activities")
}

// Stats aggregates lead counts and pipeline value by status.
func (s *SQLiteStore) Stats(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(estimated_value), 0)
		 FROM leads GROUP BY status`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}
	defer rows.Close() //nolint:errcheck

	var counts []StatusCount
	for rows.Next() {
		var (
			sc     StatusCount
			status string
		)
		if err := rows.Scan(&status, &sc.Count, &sc.TotalValue); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stats")
		}
		sc.Status = Status(status)
		counts = append(counts, sc)
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: iterate stats")
}

// scanner abstracts sql.Row and sql.Rows for scanLead.
type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*Lead, error) {
	var (
		l              Lead
		source, status string
		tagsJSON       string
		metaJSON       string
		contactedAt    sql.NullTime
	)
	err := row.Scan(
		&l.ID, &l.BusinessName, &l.ContactPerson, &l.Email, &l.Phone, &l.WebsiteURL, &l.WebsiteScore,
		&l.Address, &l.City, &l.PostalCode, &l.Country, &l.BusinessType, &source, &status,
		&l.EstimatedValue, &l.Notes, &tagsJSON, &metaJSON, &l.CreatedAt, &l.UpdatedAt, &contactedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Source = Source(source)
	l.Status = Status(status)
	if contactedAt.Valid {
		l.ContactedAt = &contactedAt.Time
	}
	if err := json.Unmarshal([]byte(tagsJSON), &l.Tags); err != nil {
		return nil, eris.Wrap(err, "unmarshal tags")
	}
	if err := json.Unmarshal([]byte(metaJSON), &l.Metadata); err != nil {
		return nil, eris.Wrap(err, "unmarshal metadata")
	}
	return &l, nil
}

func marshalJSONFields(tags []string, metadata map[string]any) (string, string, error) {
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", err
	}
	metaJSON, err := json.Marshal(orEmptyMap(metadata))
	if err != nil {
		return "", "", err
	}
	return string(tagsJSON), string(metaJSON), nil
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: lead %s", id)
	}
	return nil
}
