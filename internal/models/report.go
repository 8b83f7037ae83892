package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report statuses. Status never leaves this set.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Image source kinds persisted on a report.
const (
	ImageTypeBase64       = "base64"
	ImageTypeURL          = "url"
	ImageTypeUploadedFile = "uploaded_file"
)

// ValidStatus reports whether s is an allowed report status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusVerified || s == StatusRejected
}

// Report is one scam report per submission. Immutable after creation except
// for Status (via the status-update operation) and the UpdatedAt bump.
type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"not null;size:500" json:"title"`
	Source      string    `gorm:"size:100;default:'Manual Form';index" json:"source"`
	Category    string    `gorm:"not null;size:100;index" json:"category"`
	Location    string    `gorm:"size:255" json:"location,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	URL         string    `gorm:"type:text" json:"url,omitempty"`

	// ScreenshotURL holds either a Cloudinary URL or, in the degraded
	// fallback when no asset store is configured, the original inline
	// base64 data. ScreenshotPublicID is only set after a real upload.
	ScreenshotURL      *string        `gorm:"type:text" json:"screenshotUrl"`
	ScreenshotPublicID *string        `gorm:"size:255" json:"screenshotPublicId"`
	ImageType          *string        `gorm:"size:20" json:"imageType"`
	ImageMetadata      datatypes.JSON `gorm:"type:jsonb" json:"imageMetadata"`

	ReporterName string `gorm:"size:255" json:"reporterName,omitempty"`
	ContactInfo  string `gorm:"size:255" json:"contactInfo,omitempty"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`
	ReportedBy   string `gorm:"size:255;default:'Anonymous User'" json:"reportedBy"`

	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	// Reserved for future duplicate detection; never computed here.
	Similarity float64 `gorm:"default:0" json:"similarity"`

	DateReported time.Time `gorm:"not null;index:idx_reports_date_reported,sort:desc" json:"dateReported"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

// ImageMetadata is the structured blob stored in Report.ImageMetadata.
type ImageMetadata struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
}
