package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/export"
)

type volunteerRepository interface {
	List(ctx context.Context, filter models.VolunteerFilter) ([]models.VolunteerApplication, int, error)
	ListFiltered(ctx context.Context, filter models.VolunteerFilter) ([]models.VolunteerApplication, error)
	FindByID(ctx context.Context, id string) (*models.VolunteerApplication, error)
	FindByEmail(ctx context.Context, email string) (*models.VolunteerApplication, error)
	Create(ctx context.Context, v *models.VolunteerApplication) error
	SetStatus(ctx context.Context, id string, status models.VolunteerStatus) error
	AttachResume(ctx context.Context, id, resumePath string) error
}

type resumeStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
}

// CreateVolunteerRequest is the public volunteer intake payload. All three
// consent acknowledgements must be explicitly true.
type CreateVolunteerRequest struct {
	FirstName        string   `json:"first_name" validate:"required"`
	LastName         string   `json:"last_name" validate:"required"`
	Email            string   `json:"email" validate:"required,email"`
	Phone            string   `json:"phone" validate:"required,min=7"`
	Address          string   `json:"address" validate:"required"`
	City             string   `json:"city" validate:"required"`
	State            string   `json:"state" validate:"required"`
	Zip              string   `json:"zip" validate:"required,min=5"`
	DateOfBirth      string   `json:"date_of_birth" validate:"required"`
	Interests        []string `json:"interests" validate:"required,min=1"`
	Availability     []string `json:"availability" validate:"required,min=1"`
	Experience       string   `json:"experience"`
	EmergencyContact string   `json:"emergency_contact" validate:"required"`
	BackgroundCheck  bool     `json:"consent_background_check" validate:"eq=true"`
	CodeOfConduct    bool     `json:"consent_code_of_conduct" validate:"eq=true"`
	LiabilityWaiver  bool     `json:"consent_liability_waiver" validate:"eq=true"`
}

// UpdateVolunteerStatusRequest changes the intake review status.
type UpdateVolunteerStatusRequest struct {
	Status models.VolunteerStatus `json:"status" validate:"required,oneof=pending approved declined"`
}

// VolunteerService handles volunteer intake workflows.
type VolunteerService struct {
	repo         volunteerRepository
	audit        auditLogger
	csv          csvRenderer
	storage      resumeStorage
	notify       notifier
	stats        statsInvalidator
	allowedMIMEs []string
	maxSizeBytes int64
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewVolunteerService creates an instance of VolunteerService.
func NewVolunteerService(repo volunteerRepository, audit auditLogger, storage resumeStorage, notify notifier, stats statsInvalidator, allowedMIMEs []string, maxSizeBytes int64, validate *validator.Validate, logger *zap.Logger) *VolunteerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxSizeBytes <= 0 {
		maxSizeBytes = 10 * 1024 * 1024
	}
	return &VolunteerService{
		repo:         repo,
		audit:        audit,
		csv:          export.NewCSVExporter(),
		storage:      storage,
		notify:       notify,
		stats:        stats,
		allowedMIMEs: allowedMIMEs,
		maxSizeBytes: maxSizeBytes,
		validator:    validate,
		logger:       logger,
	}
}

// List returns paginated volunteer applications and pagination metadata.
func (s *VolunteerService) List(ctx context.Context, filter models.VolunteerFilter) ([]models.VolunteerApplication, *models.Pagination, error) {
	vols, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list volunteer applications")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return vols, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a volunteer application by ID.
func (s *VolunteerService) Get(ctx context.Context, id string) (*models.VolunteerApplication, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volunteer application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volunteer application")
	}
	return v, nil
}

// Create stores a new volunteer application in pending status, optionally
// attaching an uploaded resume.
func (s *VolunteerService) Create(ctx context.Context, req CreateVolunteerRequest, resume *multipart.FileHeader) (*models.VolunteerApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid volunteer payload")
	}

	// A resolved prior application does not block applying again.
	if existing, err := s.repo.FindByEmail(ctx, strings.ToLower(req.Email)); err == nil {
		if existing.Status == models.VolunteerStatusPending {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a volunteer application for this email is already under review")
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for an existing application")
	}

	v := &models.VolunteerApplication{
		ID:               uuid.NewString(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            strings.ToLower(req.Email),
		Phone:            req.Phone,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		Zip:              req.Zip,
		DateOfBirth:      req.DateOfBirth,
		Interests:        req.Interests,
		Availability:     req.Availability,
		Experience:       req.Experience,
		EmergencyContact: req.EmergencyContact,
		BackgroundCheck:  req.BackgroundCheck,
		CodeOfConduct:    req.CodeOfConduct,
		LiabilityWaiver:  req.LiabilityWaiver,
		Status:           models.VolunteerStatusPending,
	}

	if resume != nil {
		relPath, err := s.storeResume(v.ID, resume)
		if err != nil {
			return nil, err
		}
		v.ResumePath = &relPath
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create volunteer application")
	}

	// Notification failures never roll back a stored submission.
	if s.notify != nil {
		s.notify.Notify("volunteer.submitted", map[string]interface{}{
			"id":    v.ID,
			"email": v.Email,
			"name":  fmt.Sprintf("%s %s", v.FirstName, v.LastName),
		})
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	return v, nil
}

// SetStatus moves a volunteer application to a new review status.
func (s *VolunteerService) SetStatus(ctx context.Context, id string, req UpdateVolunteerStatusRequest, actor *models.JWTClaims, meta models.RequestMeta) (*models.VolunteerApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := v.Status
	if err := s.repo.SetStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volunteer application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update volunteer status")
	}
	v.Status = req.Status

	if s.audit != nil {
		oldPayload, _ := json.Marshal(map[string]interface{}{"status": oldStatus})
		newPayload, _ := json.Marshal(map[string]interface{}{"status": req.Status})
		var actorID *string
		if actor != nil {
			actorID = &actor.UserID
		}
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     actorID,
			Action:     models.AuditActionVolunteerStatus,
			Resource:   "volunteer_applications",
			ResourceID: &v.ID,
			OldValues:  oldPayload,
			NewValues:  newPayload,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record volunteer status audit log", zap.Error(err))
		}
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	return v, nil
}

// AttachResume stores an uploaded resume against an existing application.
func (s *VolunteerService) AttachResume(ctx context.Context, id string, resume *multipart.FileHeader) (*models.VolunteerApplication, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storeResume(v.ID, resume)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AttachResume(ctx, v.ID, relPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volunteer application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach resume")
	}
	v.ResumePath = &relPath
	return v, nil
}

var volunteerExportHeaders = []string{"First Name", "Last Name", "Email", "Phone", "City", "State", "Interests", "Availability", "Status", "Submitted"}

// ExportCSV renders the full filtered volunteer set to CSV.
func (s *VolunteerService) ExportCSV(ctx context.Context, filter models.VolunteerFilter) ([]byte, string, error) {
	vols, err := s.repo.ListFiltered(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volunteers for export")
	}

	rows := make([]map[string]string, 0, len(vols))
	for _, v := range vols {
		rows = append(rows, map[string]string{
			"First Name":   v.FirstName,
			"Last Name":    v.LastName,
			"Email":        v.Email,
			"Phone":        v.Phone,
			"City":         v.City,
			"State":        v.State,
			"Interests":    strings.Join(v.Interests, "; "),
			"Availability": strings.Join(v.Availability, "; "),
			"Status":       string(v.Status),
			"Submitted":    v.CreatedAt.UTC().Format("2006-01-02"),
		})
	}

	payload, err := s.csv.Render(export.Dataset{Headers: volunteerExportHeaders, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render volunteer export")
	}
	return payload, export.Filename("volunteers", "csv"), nil
}

func (s *VolunteerService) storeResume(volunteerID string, header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxSizeBytes {
		return "", appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("resume exceeds the %d byte limit", s.maxSizeBytes))
	}

	contentType := header.Header.Get("Content-Type")
	if !mimeAllowed(contentType, s.allowedMIMEs) {
		return "", appErrors.Clone(appErrors.ErrFileTypeNotAllowed, "resume must be a PDF or Word document")
	}

	file, err := header.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read resume upload")
	}
	defer file.Close() //nolint:errcheck

	ext := filepath.Ext(header.Filename)
	relPath := filepath.Join("resumes", fmt.Sprintf("%s-%d%s", volunteerID, time.Now().UTC().Unix(), ext))
	if _, err := s.storage.SaveStream(relPath, file); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resume")
	}
	return relPath, nil
}

func mimeAllowed(contentType string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(strings.ToLower(base))
	for _, m := range allowed {
		if strings.ToLower(m) == base {
			return true
		}
	}
	return false
}
