package service

import "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/export"

// Renderer interfaces shared by the admin list services that offer
// file exports of their filtered result sets.

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects the rendered output for an admin export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)
