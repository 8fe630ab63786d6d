package models

import (
	"time"

	"github.com/lib/pq"
)

// VolunteerStatus tracks a volunteer application through intake review.
type VolunteerStatus string

const (
	VolunteerStatusPending  VolunteerStatus = "pending"
	VolunteerStatusApproved VolunteerStatus = "approved"
	VolunteerStatusDeclined VolunteerStatus = "declined"
)

// VolunteerApplication represents a submitted volunteer intake form,
// including the three legal consent acknowledgements.
type VolunteerApplication struct {
	ID               string          `db:"id" json:"id"`
	FirstName        string          `db:"first_name" json:"first_name"`
	LastName         string          `db:"last_name" json:"last_name"`
	Email            string          `db:"email" json:"email"`
	Phone            string          `db:"phone" json:"phone"`
	Address          string          `db:"address" json:"address"`
	City             string          `db:"city" json:"city"`
	State            string          `db:"state" json:"state"`
	Zip              string          `db:"zip" json:"zip"`
	DateOfBirth      string          `db:"date_of_birth" json:"date_of_birth"`
	Interests        pq.StringArray  `db:"interests" json:"interests"`
	Availability     pq.StringArray  `db:"availability" json:"availability"`
	Experience       string          `db:"experience" json:"experience"`
	EmergencyContact string          `db:"emergency_contact" json:"emergency_contact"`
	BackgroundCheck  bool            `db:"consent_background_check" json:"consent_background_check"`
	CodeOfConduct    bool            `db:"consent_code_of_conduct" json:"consent_code_of_conduct"`
	LiabilityWaiver  bool            `db:"consent_liability_waiver" json:"consent_liability_waiver"`
	ResumePath       *string         `db:"resume_path" json:"resume_path,omitempty"`
	Status           VolunteerStatus `db:"status" json:"status"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// VolunteerFilter encapsulates list query parameters for volunteer intake.
type VolunteerFilter struct {
	Search    string
	Status    *VolunteerStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
