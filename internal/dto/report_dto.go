package dto

import (
	"time"

	"github.com/AryanPatankar27/NagrikSathi/internal/models"
	"github.com/google/uuid"
)

// SubmitReportRequest is the JSON body shared by the extension and manual
// submission endpoints. Screenshot carries inline base64 data, ScreenshotURL
// a remote reference; at most one is honored (Screenshot wins).
type SubmitReportRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	Notes         string `json:"notes"`
	Source        string `json:"source"`
	Screenshot    string `json:"screenshot"`
	ScreenshotURL string `json:"screenshotUrl"`
	ReporterName  string `json:"reporterName"`
	ContactInfo   string `json:"contactInfo"`
	ImageType     string `json:"imageType"`
	ForceUpload   bool   `json:"forceUpload"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Pagination mirrors the envelope the frontend tables expect.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalReports int64 `json:"totalReports"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
	Limit        int   `json:"limit"`
}

type ListReportsResponse struct {
	Success    bool            `json:"success"`
	Reports    []models.Report `json:"reports"`
	Pagination Pagination      `json:"pagination"`
}

type ReportResponse struct {
	Success bool           `json:"success"`
	Report  *models.Report `json:"report"`
}

type UpdateStatusResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    *models.Report `json:"data"`
}

// CreatedReportSummary is the trimmed view returned on 201.
type CreatedReportSummary struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	DateReported   time.Time `json:"dateReported"`
	ScreenshotURL  *string   `json:"screenshotUrl"`
	ImageProcessed bool      `json:"imageProcessed"`
}

type CreatedReportResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    CreatedReportSummary `json:"data"`
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	DB         string            `json:"db"`
	AssetStore map[string]string `json:"asset_store"`
}
