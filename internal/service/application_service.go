package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/export"
)

type applicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	ListFiltered(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	Create(ctx context.Context, app *models.Application) error
	SetStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

// CreateApplicationRequest is the public intake payload for assistance
// requests.
type CreateApplicationRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,min=7"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	Zip         string `json:"zip" validate:"required,min=5"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
}

// UpdateApplicationStatusRequest changes the review status.
type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,oneof=pending in-review approved denied"`
}

// ApplicationService handles assistance request workflows.
type ApplicationService struct {
	repo      applicationRepository
	audit     auditLogger
	csv       csvRenderer
	pdf       pdfRenderer
	notify    notifier
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService creates an instance of ApplicationService.
func NewApplicationService(repo applicationRepository, audit auditLogger, notify notifier, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{
		repo:      repo,
		audit:     audit,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		notify:    notify,
		stats:     stats,
		validator: validate,
		logger:    logger,
	}
}

// List returns paginated applications and pagination metadata.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error) {
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return apps, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns an application by ID.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// Create stores a new assistance request in pending status.
func (s *ApplicationService) Create(ctx context.Context, req CreateApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	app := &models.Application{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       strings.ToLower(req.Email),
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		DateOfBirth: req.DateOfBirth,
		Status:      models.ApplicationStatusPending,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	// Notification failures never roll back a stored submission.
	if s.notify != nil {
		s.notify.Notify("application.submitted", map[string]interface{}{
			"id":    app.ID,
			"email": app.Email,
		})
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	return app, nil
}

// SetStatus moves an application to a new review status.
func (s *ApplicationService) SetStatus(ctx context.Context, id string, req UpdateApplicationStatusRequest, actor *models.JWTClaims, meta models.RequestMeta) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := app.Status
	if err := s.repo.SetStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}
	app.Status = req.Status

	oldPayload, _ := json.Marshal(map[string]interface{}{"status": oldStatus})
	newPayload, _ := json.Marshal(map[string]interface{}{"status": req.Status})
	var actorID *string
	if actor != nil {
		actorID = &actor.UserID
	}
	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     actorID,
			Action:     models.AuditActionApplicationStatus,
			Resource:   "applications",
			ResourceID: &app.ID,
			OldValues:  oldPayload,
			NewValues:  newPayload,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record application status audit log", zap.Error(err))
		}
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	return app, nil
}

var applicationExportHeaders = []string{"First Name", "Last Name", "Email", "Phone", "Address", "City", "State", "Zip", "Date of Birth", "Status", "Submitted"}

// Export renders the full filtered application set in the requested format.
// Filtering matches the list view so the export mirrors what the admin sees.
func (s *ApplicationService) Export(ctx context.Context, filter models.ApplicationFilter, format ExportFormat) ([]byte, string, string, error) {
	apps, err := s.repo.ListFiltered(ctx, filter)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications for export")
	}

	rows := make([]map[string]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, map[string]string{
			"First Name":    a.FirstName,
			"Last Name":     a.LastName,
			"Email":         a.Email,
			"Phone":         a.Phone,
			"Address":       a.Address,
			"City":          a.City,
			"State":         a.State,
			"Zip":           a.Zip,
			"Date of Birth": a.DateOfBirth,
			"Status":        string(a.Status),
			"Submitted":     a.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	dataset := export.Dataset{Headers: applicationExportHeaders, Rows: rows}

	switch format {
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Assistance Applications")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render application export")
		}
		return payload, export.Filename("applications", "pdf"), "application/pdf", nil
	case ExportFormatCSV, "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render application export")
		}
		return payload, export.Filename("applications", "csv"), "text/csv", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
