package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
)

func TestContentListNews(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "excerpt", "content", "image", "date", "updated_at"}).
		AddRow("n-1", "Annual Gala", "Save the date", "Full text", "", "2026-05-01", now).
		AddRow("n-2", "Food drive", "", "", "", "2026-04-10", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, excerpt, content, image, date, updated_at FROM news ORDER BY date DESC, updated_at DESC")).
		WillReturnRows(rows)

	items, err := repo.ListNews(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Annual Gala", items[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentInsertNewsAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec("INSERT INTO news").WillReturnResult(sqlmock.NewResult(1, 1))

	item := &models.NewsItem{Title: "Annual Gala"}
	require.NoError(t, repo.InsertNews(context.Background(), item))
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentUpdateNewsNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec("UPDATE news SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateNews(context.Background(), &models.NewsItem{ID: "missing", Title: "Renamed"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentListPrograms(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "description", "icon", "link", "updated_at"}).
		AddRow("p-1", "Food pantry", "Weekly groceries", "basket", "/programs/food", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, icon, link, updated_at FROM programs ORDER BY title ASC")).
		WillReturnRows(rows)

	items, err := repo.ListPrograms(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Food pantry", items[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentGetSiteContent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := sqlmock.NewRows([]string{"key", "payload", "updated_at"}).
		AddRow(models.SiteContentKeyMission, []byte(`{"headline":"Housing for all"}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, payload, updated_at FROM site_content WHERE key = $1 LIMIT 1")).
		WithArgs(models.SiteContentKeyMission).
		WillReturnRows(rows)

	content, err := repo.GetSiteContent(context.Background(), models.SiteContentKeyMission)
	require.NoError(t, err)
	assert.JSONEq(t, `{"headline":"Housing for all"}`, string(content.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentGetSiteContentMissingKey(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectQuery("SELECT key, payload, updated_at FROM site_content").
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSiteContent(context.Background(), "unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentUpsertSiteContent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO site_content (key, payload, updated_at) VALUES ($1, $2, $3) ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at")).
		WithArgs(models.SiteContentKeyStatistics, []byte(`{"families_housed":120}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertSiteContent(context.Background(), models.SiteContentKeyStatistics, json.RawMessage(`{"families_housed":120}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
