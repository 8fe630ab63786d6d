package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/dto"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
)

type contentRepository interface {
	ListNews(ctx context.Context) ([]models.NewsItem, error)
	FindNewsByID(ctx context.Context, id string) (*models.NewsItem, error)
	InsertNews(ctx context.Context, item *models.NewsItem) error
	UpdateNews(ctx context.Context, item *models.NewsItem) error
	ListPrograms(ctx context.Context) ([]models.Program, error)
	InsertProgram(ctx context.Context, item *models.Program) error
	UpdateProgram(ctx context.Context, item *models.Program) error
	GetSiteContent(ctx context.Context, key string) (*models.SiteContent, error)
	UpsertSiteContent(ctx context.Context, key string, payload json.RawMessage) error
}

// notifier relays domain events to the outbound automation webhook.
type notifier interface {
	Notify(event string, payload interface{})
}

// ContentService backs both the public content reads and the webhook
// dispatcher's content writes.
type ContentService struct {
	repo   contentRepository
	audit  auditLogger
	notify notifier
	logger *zap.Logger
}

// NewContentService creates an instance of ContentService.
func NewContentService(repo contentRepository, audit auditLogger, notify notifier, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{repo: repo, audit: audit, notify: notify, logger: logger}
}

// ListNews returns all news items, newest first.
func (s *ContentService) ListNews(ctx context.Context) ([]models.NewsItem, error) {
	items, err := s.repo.ListNews(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list news")
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items, nil
}

// GetNews returns a single news item.
func (s *ContentService) GetNews(ctx context.Context, id string) (*models.NewsItem, error) {
	item, err := s.repo.FindNewsByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "news item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news item")
	}
	return item, nil
}

// ListPrograms returns all programs.
func (s *ContentService) ListPrograms(ctx context.Context) ([]models.Program, error) {
	items, err := s.repo.ListPrograms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	if items == nil {
		items = []models.Program{}
	}
	return items, nil
}

// GetSiteContent returns the wholesale payload stored under a fixed key.
// A missing key yields an empty object rather than a 404 so the public site
// renders before the first webhook push.
func (s *ContentService) GetSiteContent(ctx context.Context, key string) (*models.SiteContent, error) {
	content, err := s.repo.GetSiteContent(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.SiteContent{Key: key, Payload: json.RawMessage("{}")}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site content")
	}
	return content, nil
}

// ApplyWebhookUpdate routes an update_content request to the table matching
// its content type. It returns a short human-readable summary of what was
// written.
func (s *ContentService) ApplyWebhookUpdate(ctx context.Context, req dto.WebhookUpdateRequest) (string, error) {
	contentType := models.ContentType(req.ContentType)
	if !contentType.Valid() {
		return "", appErrors.Clone(appErrors.ErrUnknownContentType, fmt.Sprintf("unknown content type %q", req.ContentType))
	}

	raw, err := json.Marshal(req.Data)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "content data is not serializable")
	}

	var summary string
	switch contentType {
	case models.ContentTypeNews:
		summary, err = s.upsertNews(ctx, raw)
	case models.ContentTypePrograms:
		summary, err = s.upsertProgram(ctx, raw)
	case models.ContentTypeMission:
		err = s.repo.UpsertSiteContent(ctx, models.SiteContentKeyMission, raw)
		summary = "mission statement updated"
	case models.ContentTypeStatistics:
		err = s.repo.UpsertSiteContent(ctx, models.SiteContentKeyStatistics, raw)
		summary = "statistics updated"
	}
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply content update")
	}

	if s.audit != nil {
		if auditErr := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			Action:    models.AuditActionContentUpdate,
			Resource:  req.ContentType,
			NewValues: raw,
		}); auditErr != nil {
			s.logger.Warn("failed to record content update audit log", zap.Error(auditErr))
		}
	}

	if s.notify != nil {
		s.notify.Notify("content.updated", map[string]interface{}{
			"content_type": req.ContentType,
			"updated_at":   time.Now().UTC(),
		})
	}

	return summary, nil
}

func (s *ContentService) upsertNews(ctx context.Context, raw json.RawMessage) (string, error) {
	var item models.NewsItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "news payload is malformed")
	}
	if item.Title == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "news payload requires a title")
	}

	if item.ID != "" {
		if err := s.repo.UpdateNews(ctx, &item); err == nil {
			return fmt.Sprintf("news item %s updated", item.ID), nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
	}
	if err := s.repo.InsertNews(ctx, &item); err != nil {
		return "", err
	}
	return fmt.Sprintf("news item %s created", item.ID), nil
}

func (s *ContentService) upsertProgram(ctx context.Context, raw json.RawMessage) (string, error) {
	var item models.Program
	if err := json.Unmarshal(raw, &item); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "program payload is malformed")
	}
	if item.Title == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "program payload requires a title")
	}

	if item.ID != "" {
		if err := s.repo.UpdateProgram(ctx, &item); err == nil {
			return fmt.Sprintf("program %s updated", item.ID), nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
	}
	if err := s.repo.InsertProgram(ctx, &item); err != nil {
		return "", err
	}
	return fmt.Sprintf("program %s created", item.ID), nil
}
