package models

import (
	"encoding/json"
	"time"
)

// Fixed site_content keys written by the webhook dispatcher.
const (
	SiteContentKeyMission    = "mission_statement"
	SiteContentKeyStatistics = "statistics"
)

// ContentType names the record categories the webhook dispatcher can write.
type ContentType string

const (
	ContentTypeNews       ContentType = "news"
	ContentTypePrograms   ContentType = "programs"
	ContentTypeMission    ContentType = "mission"
	ContentTypeStatistics ContentType = "statistics"
)

// Valid reports whether the content type is dispatchable.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeNews, ContentTypePrograms, ContentTypeMission, ContentTypeStatistics:
		return true
	}
	return false
}

// NewsItem is a row in the news table, surfaced on the public site.
type NewsItem struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Excerpt   string    `db:"excerpt" json:"excerpt"`
	Content   string    `db:"content" json:"content"`
	Image     string    `db:"image" json:"image"`
	Date      string    `db:"date" json:"date"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Program is a row in the programs table.
type Program struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Icon        string    `db:"icon" json:"icon"`
	Link        string    `db:"link" json:"link"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SiteContent is a generic key-value record holding wholesale JSON payloads
// such as the mission statement and statistics blocks.
type SiteContent struct {
	Key       string          `db:"key" json:"key"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
