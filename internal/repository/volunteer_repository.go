package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
)

// VolunteerRepository provides database access for volunteer intake.
type VolunteerRepository struct {
	db *sqlx.DB
}

// NewVolunteerRepository creates a new instance of VolunteerRepository.
func NewVolunteerRepository(db *sqlx.DB) *VolunteerRepository {
	return &VolunteerRepository{db: db}
}

const volunteerColumns = `id, first_name, last_name, email, phone, address, city, state, zip, date_of_birth, interests, availability, experience, emergency_contact, consent_background_check, consent_code_of_conduct, consent_liability_waiver, resume_path, status, created_at, updated_at`

// FindByID returns a volunteer application by identifier.
func (r *VolunteerRepository) FindByID(ctx context.Context, id string) (*models.VolunteerApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM volunteer_applications WHERE id = $1 LIMIT 1`, volunteerColumns)
	var v models.VolunteerApplication
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find volunteer by id: %w", err)
	}
	return &v, nil
}

// FindByEmail returns the most recent volunteer application for an email.
func (r *VolunteerRepository) FindByEmail(ctx context.Context, email string) (*models.VolunteerApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM volunteer_applications WHERE LOWER(email) = LOWER($1) ORDER BY created_at DESC LIMIT 1`, volunteerColumns)
	var v models.VolunteerApplication
	if err := r.db.GetContext(ctx, &v, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find volunteer by email: %w", err)
	}
	return &v, nil
}

// List returns volunteer applications matching the filter with total count.
func (r *VolunteerRepository) List(ctx context.Context, filter models.VolunteerFilter) ([]models.VolunteerApplication, int, error) {
	baseQuery := `FROM volunteer_applications WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name || ' ' || last_name) LIKE $%d OR LOWER(email) LIKE $%d OR phone LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"last_name":  true,
		"status":     true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", volunteerColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var vols []models.VolunteerApplication
	if err := r.db.SelectContext(ctx, &vols, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list volunteers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count volunteers: %w", err)
	}

	return vols, total, nil
}

// ListFiltered returns all volunteer applications matching the filter.
func (r *VolunteerRepository) ListFiltered(ctx context.Context, filter models.VolunteerFilter) ([]models.VolunteerApplication, error) {
	filter.Page = 1
	filter.PageSize = 100
	var all []models.VolunteerApplication
	for {
		batch, total, err := r.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(all) >= total || len(batch) == 0 {
			return all, nil
		}
		filter.Page++
	}
}

// Create inserts a new volunteer application.
func (r *VolunteerRepository) Create(ctx context.Context, v *models.VolunteerApplication) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	if v.Status == "" {
		v.Status = models.VolunteerStatusPending
	}

	const query = `INSERT INTO volunteer_applications (id, first_name, last_name, email, phone, address, city, state, zip, date_of_birth, interests, availability, experience, emergency_contact, consent_background_check, consent_code_of_conduct, consent_liability_waiver, resume_path, status, created_at, updated_at) VALUES (:id, :first_name, :last_name, :email, :phone, :address, :city, :state, :zip, :date_of_birth, :interests, :availability, :experience, :emergency_contact, :consent_background_check, :consent_code_of_conduct, :consent_liability_waiver, :resume_path, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, v); err != nil {
		return fmt.Errorf("create volunteer application: %w", err)
	}
	return nil
}

// SetStatus updates the review status of a volunteer application.
func (r *VolunteerRepository) SetStatus(ctx context.Context, id string, status models.VolunteerStatus) error {
	const query = `UPDATE volunteer_applications SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set volunteer status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AttachResume records the stored resume path on an existing application.
func (r *VolunteerRepository) AttachResume(ctx context.Context, id, resumePath string) error {
	const query = `UPDATE volunteer_applications SET resume_path = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, resumePath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("attach resume: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountSince returns the number of applications created at or after the cutoff.
func (r *VolunteerRepository) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM volunteer_applications WHERE created_at >= $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, cutoff); err != nil {
		return 0, fmt.Errorf("count volunteers since: %w", err)
	}
	return total, nil
}
