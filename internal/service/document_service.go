package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/export"
)

type documentRepository interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	ListFiltered(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	SoftDelete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

type documentStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type downloadSigner interface {
	Generate(documentID, relPath string) (string, time.Time, error)
	Parse(token string) (documentID, relPath string, expiresAt time.Time, err error)
}

// UploadDocumentRequest carries the metadata fields of a multipart upload.
type UploadDocumentRequest struct {
	Title    string                  `form:"title" validate:"required"`
	Category models.DocumentCategory `form:"category" validate:"required,oneof=report form policy newsletter other"`
	Tags     string                  `form:"tags"`
}

// DocumentDownload pairs a signed token with its expiry for the client.
type DocumentDownload struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentService handles the admin document library: uploads, listing,
// signed downloads and soft deletion.
type DocumentService struct {
	repo         documentRepository
	audit        auditLogger
	storage      documentStorage
	signer       downloadSigner
	csv          csvRenderer
	stats        statsInvalidator
	allowedMIMEs []string
	maxSizeBytes int64
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewDocumentService creates an instance of DocumentService.
func NewDocumentService(repo documentRepository, audit auditLogger, storage documentStorage, signer downloadSigner, stats statsInvalidator, allowedMIMEs []string, maxSizeBytes int64, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxSizeBytes <= 0 {
		maxSizeBytes = 10 * 1024 * 1024
	}
	return &DocumentService{
		repo:         repo,
		audit:        audit,
		storage:      storage,
		signer:       signer,
		csv:          export.NewCSVExporter(),
		stats:        stats,
		allowedMIMEs: allowedMIMEs,
		maxSizeBytes: maxSizeBytes,
		validator:    validate,
		logger:       logger,
	}
}

// List returns paginated documents, pagination metadata and running
// per-category counts for the library sidebar.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, *models.Pagination, []models.CategoryCount, error) {
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count documents")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return docs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, counts, nil
}

// Get returns a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// Upload validates and stores a new document, recording its metadata.
func (s *DocumentService) Upload(ctx context.Context, req UploadDocumentRequest, header *multipart.FileHeader, actor *models.JWTClaims, meta models.RequestMeta) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	if header == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if header.Size > s.maxSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds the %d byte limit", s.maxSizeBytes))
	}

	contentType := header.Header.Get("Content-Type")
	if !mimeAllowed(contentType, s.allowedMIMEs) {
		return nil, appErrors.Clone(appErrors.ErrFileTypeNotAllowed, "file type is not allowed")
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer file.Close() //nolint:errcheck

	docID := uuid.NewString()
	relPath := filepath.Join("documents", fmt.Sprintf("%s%s", docID, filepath.Ext(header.Filename)))
	if _, err := s.storage.SaveStream(relPath, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	uploadedBy := ""
	if actor != nil {
		uploadedBy = actor.UserID
	}

	doc := &models.Document{
		ID:         docID,
		Title:      req.Title,
		Category:   req.Category,
		FileName:   header.Filename,
		FilePath:   relPath,
		MimeType:   contentType,
		SizeBytes:  header.Size,
		Tags:       req.Tags,
		Status:     models.DocumentStatusActive,
		UploadedBy: uploadedBy,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		if cleanupErr := s.storage.Delete(relPath); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("path", relPath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}

	if s.audit != nil {
		newPayload, _ := json.Marshal(map[string]interface{}{"title": doc.Title, "category": doc.Category, "file_name": doc.FileName})
		var actorID *string
		if actor != nil {
			actorID = &actor.UserID
		}
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     actorID,
			Action:     models.AuditActionDocumentUpload,
			Resource:   "documents",
			ResourceID: &doc.ID,
			NewValues:  newPayload,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record document upload audit log", zap.Error(err))
		}
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	return doc, nil
}

// SignDownload issues a short-lived signed token for downloading a document.
func (s *DocumentService) SignDownload(ctx context.Context, id, urlPrefix string) (*DocumentDownload, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}

	return &DocumentDownload{
		Token:     token,
		URL:       fmt.Sprintf("%s?token=%s", urlPrefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveDownload validates a signed token and opens the referenced file.
// The caller must close the returned file.
func (s *DocumentService) ResolveDownload(ctx context.Context, token string) (*models.Document, *os.File, error) {
	documentID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}

	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if doc.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "download token does not match document")
	}

	file, err := s.storage.Open(doc.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open stored file")
	}
	return doc, file, nil
}

var documentExportHeaders = []string{"Title", "Category", "File Name", "Size (bytes)", "Tags", "Uploaded By", "Uploaded"}

// ExportCSV renders the full filtered document list (not just one page) to CSV.
func (s *DocumentService) ExportCSV(ctx context.Context, filter models.DocumentFilter) ([]byte, string, error) {
	docs, err := s.repo.ListFiltered(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents for export")
	}

	rows := make([]map[string]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, map[string]string{
			"Title":        d.Title,
			"Category":     string(d.Category),
			"File Name":    d.FileName,
			"Size (bytes)": fmt.Sprintf("%d", d.SizeBytes),
			"Tags":         d.Tags,
			"Uploaded By":  d.UploadedBy,
			"Uploaded":     d.UploadedAt.UTC().Format("2006-01-02"),
		})
	}

	payload, err := s.csv.Render(export.Dataset{Headers: documentExportHeaders, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render document export")
	}
	return payload, export.Filename("documents", "csv"), nil
}

// Delete archives a document. The stored file remains on disk so existing
// signed URLs keep working until they expire.
func (s *DocumentService) Delete(ctx context.Context, id string, actor *models.JWTClaims, meta models.RequestMeta) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}

	if s.audit != nil {
		oldPayload, _ := json.Marshal(map[string]interface{}{"title": doc.Title, "status": doc.Status})
		var actorID *string
		if actor != nil {
			actorID = &actor.UserID
		}
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     actorID,
			Action:     models.AuditActionDocumentDelete,
			Resource:   "documents",
			ResourceID: &doc.ID,
			OldValues:  oldPayload,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record document delete audit log", zap.Error(err))
		}
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	return nil
}
