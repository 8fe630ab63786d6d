package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/dto"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

type applicationCounter interface {
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error)
}

type volunteerCounter interface {
	CountSince(ctx context.Context, cutoff time.Time) (int, error)
}

type documentCounter interface {
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

type userCounter interface {
	CountByStatus(ctx context.Context, status models.UserStatus) (int, error)
}

// statsInvalidator lets mutating services drop cached dashboard counters so
// the next read reflects their change.
type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DashboardService aggregates admin dashboard counters with a short-lived
// Redis cache in front of the database.
type DashboardService struct {
	applications applicationCounter
	volunteers   volunteerCounter
	documents    documentCounter
	users        userCounter
	cache        statsCache
	cacheTTL     time.Duration
	metrics      *MetricsService
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardService creates an instance of DashboardService.
func NewDashboardService(applications applicationCounter, volunteers volunteerCounter, documents documentCounter, users userCounter, cache statsCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		applications: applications,
		volunteers:   volunteers,
		documents:    documents,
		users:        users,
		cache:        cache,
		cacheTTL:     cacheTTL,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Stats returns the dashboard counters, serving from cache when fresh.
// A cache outage degrades to direct database reads.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	if s.cache != nil {
		var cached dto.DashboardStats
		err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		}
		s.metrics.RecordCacheLookup(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}

	return stats, nil
}

// Invalidate drops the cached counters, forcing a recompute on next read.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compute(ctx context.Context) (*dto.DashboardStats, error) {
	byStatus, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	volunteersThisMonth, err := s.volunteers.CountSince(ctx, monthStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count volunteers")
	}

	docCounts, err := s.documents.CountByCategory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count documents")
	}

	activeUsers, err := s.users.CountByStatus(ctx, models.UserStatusActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	return &dto.DashboardStats{
		ApplicationsByStatus: byStatus,
		VolunteersThisMonth:  volunteersThisMonth,
		DocumentsByCategory:  docCounts,
		ActiveUsers:          activeUsers,
		GeneratedAt:          now,
	}, nil
}
