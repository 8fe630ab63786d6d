package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/dto"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
)

type mockContentRepo struct {
	news        []models.NewsItem
	programs    []models.Program
	siteContent map[string]json.RawMessage
}

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{siteContent: map[string]json.RawMessage{}}
}

func (m *mockContentRepo) ListNews(context.Context) ([]models.NewsItem, error) { return m.news, nil }

func (m *mockContentRepo) FindNewsByID(_ context.Context, id string) (*models.NewsItem, error) {
	for i := range m.news {
		if m.news[i].ID == id {
			return &m.news[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockContentRepo) InsertNews(_ context.Context, item *models.NewsItem) error {
	m.news = append(m.news, *item)
	return nil
}

func (m *mockContentRepo) UpdateNews(_ context.Context, item *models.NewsItem) error {
	for i := range m.news {
		if m.news[i].ID == item.ID {
			m.news[i] = *item
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockContentRepo) ListPrograms(context.Context) ([]models.Program, error) {
	return m.programs, nil
}

func (m *mockContentRepo) InsertProgram(_ context.Context, item *models.Program) error {
	m.programs = append(m.programs, *item)
	return nil
}

func (m *mockContentRepo) UpdateProgram(_ context.Context, item *models.Program) error {
	for i := range m.programs {
		if m.programs[i].ID == item.ID {
			m.programs[i] = *item
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockContentRepo) GetSiteContent(_ context.Context, key string) (*models.SiteContent, error) {
	payload, ok := m.siteContent[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.SiteContent{Key: key, Payload: payload}, nil
}

func (m *mockContentRepo) UpsertSiteContent(_ context.Context, key string, payload json.RawMessage) error {
	m.siteContent[key] = payload
	return nil
}

type mockNotifier struct {
	events []string
}

func (m *mockNotifier) Notify(event string, _ interface{}) {
	m.events = append(m.events, event)
}

func TestContentListNewsNeverNil(t *testing.T) {
	svc := NewContentService(newMockContentRepo(), nil, nil, nil)

	items, err := svc.ListNews(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestContentGetNewsNotFound(t *testing.T) {
	svc := NewContentService(newMockContentRepo(), nil, nil, nil)

	_, err := svc.GetNews(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestContentGetSiteContentDefaultsToEmptyObject(t *testing.T) {
	svc := NewContentService(newMockContentRepo(), nil, nil, nil)

	content, err := svc.GetSiteContent(context.Background(), models.SiteContentKeyMission)
	require.NoError(t, err)
	assert.Equal(t, models.SiteContentKeyMission, content.Key)
	assert.JSONEq(t, `{}`, string(content.Payload))
}

func TestContentApplyWebhookUpdateMission(t *testing.T) {
	repo := newMockContentRepo()
	notify := &mockNotifier{}
	svc := NewContentService(repo, nil, notify, nil)

	summary, err := svc.ApplyWebhookUpdate(context.Background(), dto.WebhookUpdateRequest{
		Action:      "update_content",
		ContentType: "mission",
		Data:        map[string]interface{}{"headline": "Housing for all"},
	})
	require.NoError(t, err)

	assert.Equal(t, "mission statement updated", summary)
	assert.JSONEq(t, `{"headline":"Housing for all"}`, string(repo.siteContent[models.SiteContentKeyMission]))
	assert.Equal(t, []string{"content.updated"}, notify.events)
}

func TestContentApplyWebhookUpdateInsertsNews(t *testing.T) {
	repo := newMockContentRepo()
	svc := NewContentService(repo, nil, nil, nil)

	_, err := svc.ApplyWebhookUpdate(context.Background(), dto.WebhookUpdateRequest{
		Action:      "update_content",
		ContentType: "news",
		Data:        map[string]interface{}{"title": "Annual Gala"},
	})
	require.NoError(t, err)

	require.Len(t, repo.news, 1)
	assert.Equal(t, "Annual Gala", repo.news[0].Title)
}

func TestContentApplyWebhookUpdateUpdatesExistingNews(t *testing.T) {
	repo := newMockContentRepo()
	repo.news = []models.NewsItem{{ID: "news-1", Title: "Old title"}}
	svc := NewContentService(repo, nil, nil, nil)

	summary, err := svc.ApplyWebhookUpdate(context.Background(), dto.WebhookUpdateRequest{
		Action:      "update_content",
		ContentType: "news",
		Data:        map[string]interface{}{"id": "news-1", "title": "New title"},
	})
	require.NoError(t, err)

	assert.Equal(t, "news item news-1 updated", summary)
	require.Len(t, repo.news, 1)
	assert.Equal(t, "New title", repo.news[0].Title)
}

func TestContentApplyWebhookUpdateFallsBackToInsert(t *testing.T) {
	// An unknown ID means the row was pushed from a source we have not seen
	// yet, so the update degrades to an insert instead of failing.
	repo := newMockContentRepo()
	svc := NewContentService(repo, nil, nil, nil)

	summary, err := svc.ApplyWebhookUpdate(context.Background(), dto.WebhookUpdateRequest{
		Action:      "update_content",
		ContentType: "programs",
		Data:        map[string]interface{}{"id": "prog-9", "title": "Food pantry"},
	})
	require.NoError(t, err)

	assert.Equal(t, "program prog-9 created", summary)
	require.Len(t, repo.programs, 1)
}

func TestContentApplyWebhookUpdateRequiresTitle(t *testing.T) {
	svc := NewContentService(newMockContentRepo(), nil, nil, nil)

	_, err := svc.ApplyWebhookUpdate(context.Background(), dto.WebhookUpdateRequest{
		Action:      "update_content",
		ContentType: "news",
		Data:        map[string]interface{}{"excerpt": "no title here"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContentApplyWebhookUpdateUnknownContentType(t *testing.T) {
	svc := NewContentService(newMockContentRepo(), nil, nil, nil)

	_, err := svc.ApplyWebhookUpdate(context.Background(), dto.WebhookUpdateRequest{
		Action:      "update_content",
		ContentType: "banners",
		Data:        map[string]interface{}{"title": "x"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownContentType.Code, appErrors.FromError(err).Code)
}

func TestContentApplyWebhookUpdateRecordsAudit(t *testing.T) {
	audit := &mockAuditLogger{}
	svc := NewContentService(newMockContentRepo(), audit, nil, nil)

	_, err := svc.ApplyWebhookUpdate(context.Background(), dto.WebhookUpdateRequest{
		Action:      "update_content",
		ContentType: "statistics",
		Data:        map[string]interface{}{"families_housed": 120},
	})
	require.NoError(t, err)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionContentUpdate, audit.logs[0].Action)
	assert.Equal(t, "statistics", audit.logs[0].Resource)
}
