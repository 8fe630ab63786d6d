package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/service"
)

const testWebhookSecret = "super-secret"

type fakeContentRepo struct {
	news        []models.NewsItem
	programs    []models.Program
	siteContent map[string]json.RawMessage
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{siteContent: map[string]json.RawMessage{}}
}

func (f *fakeContentRepo) ListNews(context.Context) ([]models.NewsItem, error) { return f.news, nil }

func (f *fakeContentRepo) FindNewsByID(_ context.Context, id string) (*models.NewsItem, error) {
	for i := range f.news {
		if f.news[i].ID == id {
			return &f.news[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeContentRepo) InsertNews(_ context.Context, item *models.NewsItem) error {
	f.news = append(f.news, *item)
	return nil
}

func (f *fakeContentRepo) UpdateNews(_ context.Context, item *models.NewsItem) error {
	for i := range f.news {
		if f.news[i].ID == item.ID {
			f.news[i] = *item
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeContentRepo) ListPrograms(context.Context) ([]models.Program, error) {
	return f.programs, nil
}

func (f *fakeContentRepo) InsertProgram(_ context.Context, item *models.Program) error {
	f.programs = append(f.programs, *item)
	return nil
}

func (f *fakeContentRepo) UpdateProgram(_ context.Context, item *models.Program) error {
	for i := range f.programs {
		if f.programs[i].ID == item.ID {
			f.programs[i] = *item
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeContentRepo) GetSiteContent(_ context.Context, key string) (*models.SiteContent, error) {
	payload, ok := f.siteContent[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.SiteContent{Key: key, Payload: payload}, nil
}

func (f *fakeContentRepo) UpsertSiteContent(_ context.Context, key string, payload json.RawMessage) error {
	f.siteContent[key] = payload
	return nil
}

type fakeRelay struct {
	events   []string
	payloads []interface{}
}

func (f *fakeRelay) Notify(event string, payload interface{}) {
	f.events = append(f.events, event)
	f.payloads = append(f.payloads, payload)
}

func newWebhookTestHandler(repo *fakeContentRepo) *WebhookHandler {
	contentSvc := service.NewContentService(repo, nil, nil, nil)
	return NewWebhookHandler(contentSvc, nil, nil, testWebhookSecret, nil)
}

func performWebhook(h *WebhookHandler, method, token string, body []byte) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, "/api/v1/webhook/content", bytes.NewReader(body))
	if token != "" {
		c.Request.Header.Set(WebhookTokenHeader, token)
	}
	h.Dispatch(c)
	c.Writer.WriteHeaderNow()
	return rec
}

func TestWebhookOptionsPreflight(t *testing.T) {
	h := newWebhookTestHandler(newFakeContentRepo())
	rec := performWebhook(h, http.MethodOptions, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWebhookCapabilitiesWithoutToken(t *testing.T) {
	h := newWebhookTestHandler(newFakeContentRepo())
	rec := performWebhook(h, http.MethodGet, "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, WebhookTokenHeader, data["token_header"])
}

func TestWebhookPostRejectsBadToken(t *testing.T) {
	h := newWebhookTestHandler(newFakeContentRepo())

	for _, token := range []string{"", "wrong-secret"} {
		rec := performWebhook(h, http.MethodPost, token, []byte(`{"hello":"world"}`))
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
	}
}

func TestWebhookPostEchoesPayload(t *testing.T) {
	h := newWebhookTestHandler(newFakeContentRepo())
	rec := performWebhook(h, http.MethodPost, testWebhookSecret, []byte(`{"event":"deploy","count":3}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "deploy", data["event"])
	assert.Equal(t, float64(3), data["count"])
}

func TestWebhookPostForwardsPayloadToRelay(t *testing.T) {
	relay := &fakeRelay{}
	contentSvc := service.NewContentService(newFakeContentRepo(), nil, nil, nil)
	h := NewWebhookHandler(contentSvc, nil, relay, testWebhookSecret, nil)

	rec := performWebhook(h, http.MethodPost, testWebhookSecret, []byte(`{"event":"deploy"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, relay.events, 1)
	assert.Equal(t, "webhook.received", relay.events[0])
	payload, ok := relay.payloads[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "deploy", payload["event"])
}

func TestWebhookPostBadTokenDoesNotForward(t *testing.T) {
	relay := &fakeRelay{}
	contentSvc := service.NewContentService(newFakeContentRepo(), nil, nil, nil)
	h := NewWebhookHandler(contentSvc, nil, relay, testWebhookSecret, nil)

	rec := performWebhook(h, http.MethodPost, "wrong-secret", []byte(`{"event":"deploy"}`))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, relay.events)
}

func TestWebhookPostToleratesMalformedJSON(t *testing.T) {
	h := newWebhookTestHandler(newFakeContentRepo())
	rec := performWebhook(h, http.MethodPost, testWebhookSecret, []byte(`{not json`))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{}, body["data"])
}

func TestWebhookPutUpdatesMission(t *testing.T) {
	repo := newFakeContentRepo()
	h := newWebhookTestHandler(repo)

	payload := []byte(`{"action":"update_content","contentType":"mission","data":{"headline":"Housing for all"}}`)
	rec := performWebhook(h, http.MethodPut, testWebhookSecret, payload)

	require.Equal(t, http.StatusOK, rec.Code)
	stored, ok := repo.siteContent[models.SiteContentKeyMission]
	require.True(t, ok)
	assert.JSONEq(t, `{"headline":"Housing for all"}`, string(stored))
}

func TestWebhookPutCreatesNews(t *testing.T) {
	repo := newFakeContentRepo()
	h := newWebhookTestHandler(repo)

	payload := []byte(`{"action":"update_content","contentType":"news","data":{"title":"Annual Gala","excerpt":"Save the date"}}`)
	rec := performWebhook(h, http.MethodPut, testWebhookSecret, payload)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.news, 1)
	assert.Equal(t, "Annual Gala", repo.news[0].Title)
}

func TestWebhookPutRejectsUnknownContentType(t *testing.T) {
	h := newWebhookTestHandler(newFakeContentRepo())

	payload := []byte(`{"action":"update_content","contentType":"banners","data":{"title":"x"}}`)
	rec := performWebhook(h, http.MethodPut, testWebhookSecret, payload)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestWebhookPutRejectsUnknownAction(t *testing.T) {
	h := newWebhookTestHandler(newFakeContentRepo())

	payload := []byte(`{"action":"delete_everything","contentType":"news"}`)
	rec := performWebhook(h, http.MethodPut, testWebhookSecret, payload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRejectsOtherMethods(t *testing.T) {
	h := newWebhookTestHandler(newFakeContentRepo())

	for _, method := range []string{http.MethodDelete, http.MethodPatch} {
		rec := performWebhook(h, method, testWebhookSecret, nil)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Method not allowed", body["error"])
	}
}
