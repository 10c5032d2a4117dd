package lead

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresStore(mock), mock
}

var leadColumnNames = []string{
	"id", "business_name", "contact_person", "email", "phone", "website_url", "website_score",
	"address", "city", "postal_code", "country", "business_type", "source", "status",
	"estimated_value", "notes", "tags", "metadata", "created_at", "updated_at", "contacted_at",
}

func TestPostgresStore_GetLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ws := 4
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnRows(pgxmock.NewRows(leadColumnNames).AddRow(
			"lead-1", "Bäckerei Huber", "", "", "", "https://huber.at", &ws,
			"", "Wien", "1010", "Austria", "Gastronomie", "google_places", "new",
			(*int)(nil), "", []byte(`["hot"]`), []byte(`{"place_id":"p1"}`), now, now, (*time.Time)(nil),
		))

	got, err := s.GetLead(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "Bäckerei Huber", got.BusinessName)
	assert.Equal(t, SourceGooglePlaces, got.Source)
	require.NotNil(t, got.WebsiteScore)
	assert.Equal(t, 4, *got.WebsiteScore)
	assert.Equal(t, []string{"hot"}, got.Tags)
	assert.Equal(t, "p1", got.Metadata["place_id"])
	assert.Nil(t, got.ContactedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM leads WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLead(context.Background(), "nonexistent")
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DeleteLead(context.Background(), "lead-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM leads WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteLead(context.Background(), "nonexistent")
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AddActivity(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`(?s)INSERT INTO activities.+RETURNING id`).
		WithArgs("lead-1", "note", "Lead created", "", `{}`, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	a := &Activity{LeadID: "lead-1", Type: ActivityNote, Title: "Lead created"}
	require.NoError(t, s.AddActivity(context.Background(), a))
	assert.Equal(t, int64(7), a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Stats(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\), COALESCE`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count", "total"}).
			AddRow("new", 3, 0).
			AddRow("won", 1, 15000))

	counts, err := s.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, StatusNew, counts[0].Status)
	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, 15000, counts[1].TotalValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListLeads_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM leads WHERE 1=1 ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows(leadColumnNames))

	page, err := s.ListLeads(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
	assert.Equal(t, 50, page.Limit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
