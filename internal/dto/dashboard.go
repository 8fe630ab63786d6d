package dto

import (
	"time"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
)

// DashboardStats aggregates the counters the admin dashboard renders.
type DashboardStats struct {
	ApplicationsByStatus map[models.ApplicationStatus]int `json:"applications_by_status"`
	VolunteersThisMonth  int                              `json:"volunteers_this_month"`
	DocumentsByCategory  []models.CategoryCount           `json:"documents_by_category"`
	ActiveUsers          int                              `json:"active_users"`
	GeneratedAt          time.Time                        `json:"generated_at"`
}
