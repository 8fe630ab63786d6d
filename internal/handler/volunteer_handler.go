package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/service"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/response"
)

// VolunteerHandler wires HTTP endpoints to the volunteer service.
type VolunteerHandler struct {
	service *service.VolunteerService
	metrics *service.MetricsService
}

// NewVolunteerHandler creates a new handler.
func NewVolunteerHandler(svc *service.VolunteerService, metrics *service.MetricsService) *VolunteerHandler {
	return &VolunteerHandler{service: svc, metrics: metrics}
}

func parseVolunteerFilter(c *gin.Context) models.VolunteerFilter {
	filter := models.VolunteerFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if status := c.Query("status"); status != "" && status != "all" {
		s := models.VolunteerStatus(status)
		filter.Status = &s
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return filter
}

// Submit godoc
// @Summary Submit volunteer application
// @Description Public intake endpoint. Accepts a JSON body, or a multipart
// @Description form with the JSON under "payload" and an optional "resume" file.
// @Tags Volunteers
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param payload body service.CreateVolunteerRequest true "Volunteer payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /volunteers [post]
func (h *VolunteerHandler) Submit(c *gin.Context) {
	var req service.CreateVolunteerRequest
	var resume *multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		raw := c.PostForm("payload")
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			h.metrics.RecordIntakeSubmission("volunteer", "rejected")
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid volunteer payload"))
			return
		}
		if file, err := c.FormFile("resume"); err == nil {
			resume = file
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordIntakeSubmission("volunteer", "rejected")
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid volunteer payload"))
		return
	}

	v, err := h.service.Create(c.Request.Context(), req, resume)
	if err != nil {
		h.metrics.RecordIntakeSubmission("volunteer", "rejected")
		response.Error(c, err)
		return
	}

	h.metrics.RecordIntakeSubmission("volunteer", "accepted")
	response.Created(c, v)
}

// List godoc
// @Summary List volunteer applications
// @Tags Volunteers
// @Produce json
// @Param search query string false "Search by name, email or phone"
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /volunteers [get]
func (h *VolunteerHandler) List(c *gin.Context) {
	vols, pagination, err := h.service.List(c.Request.Context(), parseVolunteerFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vols, pagination)
}

// Get godoc
// @Summary Get volunteer application
// @Tags Volunteers
// @Produce json
// @Param id path string true "Volunteer application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /volunteers/{id} [get]
func (h *VolunteerHandler) Get(c *gin.Context) {
	v, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, v, nil)
}

// SetStatus godoc
// @Summary Update volunteer status
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param id path string true "Volunteer application ID"
// @Param payload body service.UpdateVolunteerStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /volunteers/{id}/status [put]
func (h *VolunteerHandler) SetStatus(c *gin.Context) {
	var req service.UpdateVolunteerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	v, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c), requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, v, nil)
}

// AttachResume godoc
// @Summary Attach resume
// @Description Upload a resume for an existing volunteer application
// @Tags Volunteers
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Volunteer application ID"
// @Param resume formData file true "Resume file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /volunteers/{id}/resume [post]
func (h *VolunteerHandler) AttachResume(c *gin.Context) {
	file, err := c.FormFile("resume")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resume file is required"))
		return
	}

	v, err := h.service.AttachResume(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, v, nil)
}

// Export godoc
// @Summary Export volunteers to CSV
// @Tags Volunteers
// @Produce text/csv
// @Param search query string false "Search filter"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Router /volunteers/export [get]
func (h *VolunteerHandler) Export(c *gin.Context) {
	payload, filename, err := h.service.ExportCSV(c.Request.Context(), parseVolunteerFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "text/csv", payload)
}
