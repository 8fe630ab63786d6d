package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/service"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/response"
)

// DocumentHandler wires HTTP endpoints to the document library service.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

func parseDocumentFilter(c *gin.Context) models.DocumentFilter {
	filter := models.DocumentFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if category := c.Query("category"); category != "" && category != "all" {
		cat := models.DocumentCategory(category)
		filter.Category = &cat
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return filter
}

// List godoc
// @Summary List documents
// @Description List library documents with search and category filters,
// @Description including running per-category counts
// @Tags Documents
// @Produce json
// @Param search query string false "Search by title, file name or tags"
// @Param category query string false "Category filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, pagination, counts, err := h.service.List(c.Request.Context(), parseDocumentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination, map[string]interface{}{"category_counts": counts})
}

// Upload godoc
// @Summary Upload document
// @Description Store a new library document with metadata
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param category formData string true "Category"
// @Param tags formData string false "Comma-separated tags"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	req := service.UploadDocumentRequest{
		Title:    c.PostForm("title"),
		Category: models.DocumentCategory(c.PostForm("category")),
		Tags:     c.PostForm("tags"),
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}

	doc, err := h.service.Upload(c.Request.Context(), req, file, claimsFromContext(c), requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// Export godoc
// @Summary Export documents
// @Description Export the filtered document list as CSV
// @Tags Documents
// @Produce text/csv
// @Param search query string false "Search by title, file name or tags"
// @Param category query string false "Category filter"
// @Success 200 {file} file
// @Router /documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	payload, filename, err := h.service.ExportCSV(c.Request.Context(), parseDocumentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "text/csv", payload)
}

// SignDownload godoc
// @Summary Issue signed download link
// @Description Return a short-lived signed token for downloading a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) SignDownload(c *gin.Context) {
	prefix := fmt.Sprintf("%s/documents/file", apiPrefixFromRoute(c))
	download, err := h.service.SignDownload(c.Request.Context(), c.Param("id"), prefix)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, download, nil)
}

// Download godoc
// @Summary Download document
// @Description Stream the file referenced by a valid signed token
// @Tags Documents
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /documents/file [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "download token is required"))
		return
	}

	doc, file, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	c.Header("Content-Type", doc.MimeType)
	http.ServeContent(c.Writer, c.Request, doc.FileName, doc.UploadedAt, file)
}

// Delete godoc
// @Summary Delete document
// @Description Archive a document; the stored file is retained
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// apiPrefixFromRoute derives the mounted API prefix from the current route
// so signed URLs stay correct if the prefix changes.
func apiPrefixFromRoute(c *gin.Context) string {
	full := c.FullPath()
	path := c.Request.URL.Path
	suffix := "/documents/" + c.Param("id") + "/download"
	if len(path) > len(suffix) && full != "" {
		return path[:len(path)-len(suffix)]
	}
	return ""
}
