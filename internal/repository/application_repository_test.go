package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
)

func applicationRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone", "address", "city", "state", "zip", "date_of_birth", "status", "created_at", "updated_at"}).
		AddRow("a-1", "Jordan", "Lee", "jordan@example.org", "555-0100", "9 Oak Ave", "Columbus", "OH", "43004", "1985-09-30", string(models.ApplicationStatusPending), now, now)
}

func TestApplicationFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, last_name, email, phone, address, city, state, zip, date_of_birth, status, created_at, updated_at FROM applications WHERE id = $1 LIMIT 1")).
		WithArgs("a-1").
		WillReturnRows(applicationRows(now))

	app, err := repo.FindByID(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "jordan@example.org", app.Email)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationListWithStatusAndSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, last_name, email, phone, address, city, state, zip, date_of_birth, status, created_at, updated_at FROM applications WHERE 1=1 AND status = $1 AND (LOWER(first_name || ' ' || last_name) LIKE $2 OR LOWER(email) LIKE $2 OR phone LIKE $2) ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.ApplicationStatusPending, "%jordan%").
		WillReturnRows(applicationRows(now))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications WHERE 1=1 AND status = $1")).
		WithArgs(models.ApplicationStatusPending, "%jordan%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	status := models.ApplicationStatusPending
	apps, total, err := repo.List(context.Background(), models.ApplicationFilter{Status: &status, Search: "Jordan"})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	// Unknown sort columns fall back to created_at instead of reaching SQL.
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(applicationRows(time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.ApplicationFilter{SortBy: "email; DROP TABLE applications"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.Application{FirstName: "Jordan", LastName: "Lee", Email: "jordan@example.org"}
	require.NoError(t, repo.Create(context.Background(), app))

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationSetStatusNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("missing", models.ApplicationStatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetStatus(context.Background(), "missing", models.ApplicationStatusApproved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow(string(models.ApplicationStatusPending), 4).
		AddRow(string(models.ApplicationStatusApproved), 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM applications GROUP BY status")).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counts[models.ApplicationStatusPending])
	assert.Equal(t, 2, counts[models.ApplicationStatusApproved])
	assert.NoError(t, mock.ExpectationsWereMet())
}
