package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/service"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/response"
)

// ContentHandler serves the public site content endpoints.
type ContentHandler struct {
	service *service.ContentService
}

// NewContentHandler creates a new handler.
func NewContentHandler(svc *service.ContentService) *ContentHandler {
	return &ContentHandler{service: svc}
}

// ListNews godoc
// @Summary List news
// @Description Public list of news items, newest first
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/news [get]
func (h *ContentHandler) ListNews(c *gin.Context) {
	items, err := h.service.ListNews(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// GetNews godoc
// @Summary Get news item
// @Tags Content
// @Produce json
// @Param id path string true "News item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content/news/{id} [get]
func (h *ContentHandler) GetNews(c *gin.Context) {
	item, err := h.service.GetNews(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// ListPrograms godoc
// @Summary List programs
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/programs [get]
func (h *ContentHandler) ListPrograms(c *gin.Context) {
	items, err := h.service.ListPrograms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// GetMission godoc
// @Summary Get mission statement
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/mission [get]
func (h *ContentHandler) GetMission(c *gin.Context) {
	content, err := h.service.GetSiteContent(c.Request.Context(), models.SiteContentKeyMission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}

// GetStatistics godoc
// @Summary Get site statistics block
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/statistics [get]
func (h *ContentHandler) GetStatistics(c *gin.Context) {
	content, err := h.service.GetSiteContent(c.Request.Context(), models.SiteContentKeyStatistics)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}
