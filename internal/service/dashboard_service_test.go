package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/dto"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
)

type stubCounters struct {
	appCalls  int
	volCutoff time.Time
}

func (s *stubCounters) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error) {
	s.appCalls++
	return map[models.ApplicationStatus]int{
		models.ApplicationStatusPending:  4,
		models.ApplicationStatusApproved: 2,
	}, nil
}

type stubVolunteerCounter struct {
	owner *stubCounters
}

func (s *stubVolunteerCounter) CountSince(_ context.Context, cutoff time.Time) (int, error) {
	s.owner.volCutoff = cutoff
	return 7, nil
}

type stubDocumentCounter struct{}

func (stubDocumentCounter) CountByCategory(context.Context) ([]models.CategoryCount, error) {
	return []models.CategoryCount{{Category: models.DocumentCategoryReport, Count: 3}}, nil
}

type stubUserCounter struct{}

func (stubUserCounter) CountByStatus(_ context.Context, status models.UserStatus) (int, error) {
	if status != models.UserStatusActive {
		return 0, nil
	}
	return 5, nil
}

type memStatsCache struct {
	entries map[string][]byte
	deletes []string
}

func newMemStatsCache() *memStatsCache {
	return &memStatsCache{entries: map[string][]byte{}}
}

func (m *memStatsCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memStatsCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memStatsCache) Delete(_ context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	delete(m.entries, key)
	return nil
}

func newDashboardTestService(counters *stubCounters, cache statsCache) *DashboardService {
	svc := NewDashboardService(counters, &stubVolunteerCounter{owner: counters}, stubDocumentCounter{}, stubUserCounter{}, cache, time.Minute, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
	}
	return svc
}

func TestDashboardStatsComputesOnCacheMiss(t *testing.T) {
	counters := &stubCounters{}
	cache := newMemStatsCache()
	svc := newDashboardTestService(counters, cache)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.ApplicationsByStatus[models.ApplicationStatusPending])
	assert.Equal(t, 7, stats.VolunteersThisMonth)
	assert.Equal(t, 5, stats.ActiveUsers)
	require.Len(t, stats.DocumentsByCategory, 1)

	// Volunteers are counted from the first day of the current month.
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), counters.volCutoff)

	// The computed result is written back to the cache.
	_, ok := cache.entries[dashboardCacheKey]
	assert.True(t, ok)
}

func TestDashboardStatsServesFromCache(t *testing.T) {
	counters := &stubCounters{}
	cache := newMemStatsCache()
	require.NoError(t, cache.Set(context.Background(), dashboardCacheKey, &dto.DashboardStats{ActiveUsers: 99}, time.Minute))
	svc := newDashboardTestService(counters, cache)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 99, stats.ActiveUsers)
	assert.Zero(t, counters.appCalls)
}

func TestDashboardStatsWithoutCache(t *testing.T) {
	counters := &stubCounters{}
	svc := newDashboardTestService(counters, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.VolunteersThisMonth)
	assert.Equal(t, 1, counters.appCalls)
}

func TestDashboardInvalidateDropsCachedStats(t *testing.T) {
	counters := &stubCounters{}
	cache := newMemStatsCache()
	svc := newDashboardTestService(counters, cache)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())
	assert.Equal(t, []string{dashboardCacheKey}, cache.deletes)

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counters.appCalls)
}
