package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
)

// ContentRepository provides database access for the site content tables
// written by the webhook dispatcher and read by the public site.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new instance of ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListNews returns news rows, newest first.
func (r *ContentRepository) ListNews(ctx context.Context) ([]models.NewsItem, error) {
	const query = `SELECT id, title, excerpt, content, image, date, updated_at FROM news ORDER BY date DESC, updated_at DESC`
	var items []models.NewsItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return items, nil
}

// FindNewsByID returns a single news row.
func (r *ContentRepository) FindNewsByID(ctx context.Context, id string) (*models.NewsItem, error) {
	const query = `SELECT id, title, excerpt, content, image, date, updated_at FROM news WHERE id = $1 LIMIT 1`
	var item models.NewsItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find news by id: %w", err)
	}
	return &item, nil
}

// InsertNews creates a news row.
func (r *ContentRepository) InsertNews(ctx context.Context, item *models.NewsItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO news (id, title, excerpt, content, image, date, updated_at) VALUES (:id, :title, :excerpt, :content, :image, :date, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("insert news: %w", err)
	}
	return nil
}

// UpdateNews updates an existing news row and stamps updated_at.
func (r *ContentRepository) UpdateNews(ctx context.Context, item *models.NewsItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE news SET title = :title, excerpt = :excerpt, content = :content, image = :image, date = :date, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListPrograms returns program rows in title order.
func (r *ContentRepository) ListPrograms(ctx context.Context) ([]models.Program, error) {
	const query = `SELECT id, title, description, icon, link, updated_at FROM programs ORDER BY title ASC`
	var items []models.Program
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return items, nil
}

// InsertProgram creates a program row.
func (r *ContentRepository) InsertProgram(ctx context.Context, item *models.Program) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO programs (id, title, description, icon, link, updated_at) VALUES (:id, :title, :description, :icon, :link, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("insert program: %w", err)
	}
	return nil
}

// UpdateProgram updates an existing program row and stamps updated_at.
func (r *ContentRepository) UpdateProgram(ctx context.Context, item *models.Program) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE programs SET title = :title, description = :description, icon = :icon, link = :link, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetSiteContent returns the payload stored under a fixed key.
func (r *ContentRepository) GetSiteContent(ctx context.Context, key string) (*models.SiteContent, error) {
	const query = `SELECT key, payload, updated_at FROM site_content WHERE key = $1 LIMIT 1`
	var content models.SiteContent
	if err := r.db.GetContext(ctx, &content, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get site content: %w", err)
	}
	return &content, nil
}

// UpsertSiteContent replaces the payload stored under a fixed key wholesale.
func (r *ContentRepository) UpsertSiteContent(ctx context.Context, key string, payload json.RawMessage) error {
	const query = `INSERT INTO site_content (key, payload, updated_at) VALUES ($1, $2, $3) ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert site content: %w", err)
	}
	return nil
}
