package models

import "time"

// ApplicationStatus enumerates assistance request review states.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusInReview ApplicationStatus = "in-review"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusDenied   ApplicationStatus = "denied"
)

// Valid reports whether the status is a known review state.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusInReview, ApplicationStatusApproved, ApplicationStatusDenied:
		return true
	}
	return false
}

// Application represents a submitted assistance request.
type Application struct {
	ID          string            `db:"id" json:"id"`
	FirstName   string            `db:"first_name" json:"first_name"`
	LastName    string            `db:"last_name" json:"last_name"`
	Email       string            `db:"email" json:"email"`
	Phone       string            `db:"phone" json:"phone"`
	Address     string            `db:"address" json:"address"`
	City        string            `db:"city" json:"city"`
	State       string            `db:"state" json:"state"`
	Zip         string            `db:"zip" json:"zip"`
	DateOfBirth string            `db:"date_of_birth" json:"date_of_birth"`
	Status      ApplicationStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter encapsulates list query parameters. A nil Status means
// the "all" sentinel was selected and no status filter applies.
type ApplicationFilter struct {
	Search    string
	Status    *ApplicationStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
