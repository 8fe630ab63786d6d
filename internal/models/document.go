package models

import "time"

// DocumentCategory is the fixed set of library categories.
type DocumentCategory string

const (
	DocumentCategoryReport     DocumentCategory = "report"
	DocumentCategoryForm       DocumentCategory = "form"
	DocumentCategoryPolicy     DocumentCategory = "policy"
	DocumentCategoryNewsletter DocumentCategory = "newsletter"
	DocumentCategoryOther      DocumentCategory = "other"
)

// Valid reports whether the category is part of the fixed set.
func (c DocumentCategory) Valid() bool {
	switch c {
	case DocumentCategoryReport, DocumentCategoryForm, DocumentCategoryPolicy, DocumentCategoryNewsletter, DocumentCategoryOther:
		return true
	}
	return false
}

// DisplayColor returns the badge color the admin UI renders per category.
func (c DocumentCategory) DisplayColor() string {
	switch c {
	case DocumentCategoryReport:
		return "blue"
	case DocumentCategoryForm:
		return "green"
	case DocumentCategoryPolicy:
		return "red"
	case DocumentCategoryNewsletter:
		return "purple"
	default:
		return "gray"
	}
}

// DocumentStatus is the lifecycle state of a stored document.
type DocumentStatus string

const (
	DocumentStatusActive   DocumentStatus = "active"
	DocumentStatusArchived DocumentStatus = "archived"
)

// Document is the metadata record for an uploaded file.
type Document struct {
	ID         string           `db:"id" json:"id"`
	Title      string           `db:"title" json:"title"`
	Category   DocumentCategory `db:"category" json:"category"`
	FileName   string           `db:"file_name" json:"file_name"`
	FilePath   string           `db:"file_path" json:"-"`
	MimeType   string           `db:"mime_type" json:"mime_type"`
	SizeBytes  int64            `db:"size_bytes" json:"size_bytes"`
	Tags       string           `db:"tags" json:"tags"`
	Status     DocumentStatus   `db:"status" json:"status"`
	UploadedBy string           `db:"uploaded_by" json:"uploaded_by"`
	UploadedAt time.Time        `db:"uploaded_at" json:"uploaded_at"`
}

// DocumentFilter encapsulates list query parameters for the library.
type DocumentFilter struct {
	Search    string
	Category  *DocumentCategory
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CategoryCount pairs a category with its running document count.
type CategoryCount struct {
	Category DocumentCategory `db:"category" json:"category"`
	Color    string           `json:"color"`
	Count    int              `db:"count" json:"count"`
}
