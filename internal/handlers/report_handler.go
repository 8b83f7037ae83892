package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AryanPatankar27/NagrikSathi/internal/assetstore"
	"github.com/AryanPatankar27/NagrikSathi/internal/dto"
	"github.com/AryanPatankar27/NagrikSathi/internal/imaging"
	"github.com/AryanPatankar27/NagrikSathi/internal/models"
	"github.com/AryanPatankar27/NagrikSathi/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Origin labels stamped on reports per entry point.
const (
	sourceExtension = "Chrome Extension"
	sourceManual    = "Manual Form"

	reportedByExtension = "Extension User"
	reportedByAnonymous = "Anonymous User"
)

// Ingester is the slice of the ingestion service the handlers need.
type Ingester interface {
	Ingest(ctx context.Context, raw, declaredKind string, forceUpload bool) (services.ImageResult, error)
	IngestFile(ctx context.Context, path string) (services.ImageResult, error)
	Cleanup(ctx context.Context, publicID *string)
	DeleteAsset(ctx context.Context, publicID string) error
	StoreHealth(ctx context.Context) assetstore.Health
}

// ReportStore is the persistence contract consumed by the handlers.
type ReportStore interface {
	Create(report *models.Report) (*models.Report, error)
	List(filter services.ReportFilter, page, limit int) ([]models.Report, dto.Pagination, error)
	GetByID(id uuid.UUID) (*models.Report, error)
	UpdateStatus(id uuid.UUID, status string) (*models.Report, error)
	Delete(id uuid.UUID) error
	Stats() (dto.ReportStats, error)
}

type ReportHandler struct {
	reports  ReportStore
	ingester Ingester
}

func NewReportHandler(reports ReportStore, ingester Ingester) *ReportHandler {
	return &ReportHandler{reports: reports, ingester: ingester}
}

// GetAllReports handles GET /api/reports/all.
func (h *ReportHandler) GetAllReports(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	filter := services.ReportFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	reports, pagination, err := h.reports.List(filter, page, limit)
	if err != nil {
		slog.Error("failed to list reports", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(dto.ListReportsResponse{
		Success:    true,
		Reports:    reports,
		Pagination: pagination,
	})
}

// GetReportByID handles GET /api/reports/:id.
func (h *ReportHandler) GetReportByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Invalid report ID",
		})
	}

	report, err := h.reports.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Success: false, Message: "Report not found",
			})
		}
		slog.Error("failed to fetch report", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false, Message: "Failed to fetch report",
		})
	}

	return c.JSON(dto.ReportResponse{Success: true, Report: report})
}

// UpdateReportStatus handles PUT /api/reports/status/:id.
func (h *ReportHandler) UpdateReportStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Invalid report ID",
		})
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Invalid request body",
		})
	}

	report, err := h.reports.UpdateStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Success: false, Message: "Invalid status. Must be pending, verified, or rejected",
			})
		case errors.Is(err, services.ErrReportNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Success: false, Message: "Report not found",
			})
		default:
			slog.Error("failed to update report status", "id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Success: false, Message: "Failed to update report status",
			})
		}
	}

	return c.JSON(dto.UpdateStatusResponse{
		Success: true,
		Message: "Report status updated successfully",
		Data:    report,
	})
}

// SubmitExtensionReport handles POST /api/reports/extension.
func (h *ReportHandler) SubmitExtensionReport(c *fiber.Ctx) error {
	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Invalid request body",
		})
	}

	if req.Title == "" || req.URL == "" || req.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Missing required fields: title, url, and category are required",
		})
	}

	image, err := h.ingestSubmission(c, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Image processing error: " + err.Error(),
		})
	}

	description := req.Description
	if description == "" {
		notes := req.Notes
		if notes == "" {
			notes = "No additional notes."
		}
		description = fmt.Sprintf("URL: %s\n\nNotes: %s", req.URL, notes)
	}

	source := req.Source
	if source == "" {
		source = sourceExtension
	}

	report := &models.Report{
		Title:              req.Title,
		Description:        description,
		URL:                req.URL,
		Category:           req.Category,
		Source:             source,
		ScreenshotURL:      image.URL,
		ScreenshotPublicID: image.PublicID,
		ImageType:          image.Type,
		ImageMetadata:      image.MetadataJSON(),
		Notes:              req.Notes,
		ReportedBy:         reportedByExtension,
		Status:             models.StatusPending,
	}

	return h.persistSubmission(c, report, image)
}

// SubmitManualReport handles POST /api/reports/submit.
func (h *ReportHandler) SubmitManualReport(c *fiber.Ctx) error {
	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Invalid request body",
		})
	}

	if req.Title == "" || req.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Missing required fields: title and category are required",
		})
	}

	image, err := h.ingestSubmission(c, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Image processing error: " + err.Error(),
		})
	}

	source := req.Source
	if source == "" {
		source = sourceManual
	}
	reportedBy := req.ReporterName
	if reportedBy == "" {
		reportedBy = reportedByAnonymous
	}

	report := &models.Report{
		Title:              req.Title,
		Source:             source,
		Category:           req.Category,
		Location:           req.Location,
		Description:        req.Description,
		URL:                req.URL,
		ScreenshotURL:      image.URL,
		ScreenshotPublicID: image.PublicID,
		ImageType:          image.Type,
		ImageMetadata:      image.MetadataJSON(),
		ReporterName:       req.ReporterName,
		ContactInfo:        req.ContactInfo,
		ReportedBy:         reportedBy,
		Status:             models.StatusPending,
	}

	return h.persistSubmission(c, report, image)
}

// SubmitUploadReport handles POST /api/reports/submit-upload (multipart).
// The staged temp file is removed on every exit path, including panics,
// via the deferred cleanup registered right after staging.
func (h *ReportHandler) SubmitUploadReport(c *fiber.Ctx) error {
	file, err := c.FormFile("screenshot")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "No image file provided. Please upload an image file.",
		})
	}

	tempPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, tempPath); err != nil {
		slog.Error("failed to stage uploaded file", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false, Message: "Failed to process uploaded file",
		})
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			slog.Error("failed to remove temp file", "path", tempPath, "error", err)
		}
	}()

	title := c.FormValue("title")
	source := c.FormValue("source")
	category := c.FormValue("category")
	description := c.FormValue("description")

	if title == "" || source == "" || category == "" || description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Missing required fields: title, source, category, and description are required",
		})
	}

	image, err := h.ingester.IngestFile(c.Context(), tempPath)
	if err != nil {
		slog.Error("file upload to asset store failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Image upload failed: " + err.Error(),
		})
	}

	name := c.FormValue("name")
	reportedBy := name
	if reportedBy == "" {
		reportedBy = reportedByAnonymous
	}

	report := &models.Report{
		Title:              title,
		Source:             source,
		Category:           category,
		Location:           c.FormValue("location"),
		Description:        description,
		ScreenshotURL:      image.URL,
		ScreenshotPublicID: image.PublicID,
		ImageType:          image.Type,
		ImageMetadata:      image.MetadataJSON(),
		ReporterName:       name,
		ContactInfo:        c.FormValue("contactInfo"),
		ReportedBy:         reportedBy,
		Status:             models.StatusPending,
	}

	return h.persistSubmission(c, report, image)
}

// DeleteReport handles DELETE /api/reports/:id. The remote asset is removed
// first, best effort: a failed asset delete never blocks the row delete.
func (h *ReportHandler) DeleteReport(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false, Message: "Invalid report ID",
		})
	}

	report, err := h.reports.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Success: false, Message: "Report not found",
			})
		}
		slog.Error("failed to fetch report for deletion", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false, Message: "Failed to delete report",
		})
	}

	if report.ScreenshotPublicID != nil && *report.ScreenshotPublicID != "" {
		if err := h.ingester.DeleteAsset(c.Context(), *report.ScreenshotPublicID); err != nil {
			slog.Error("failed to delete report asset", "id", id, "public_id", *report.ScreenshotPublicID, "error", err)
		}
	}

	if err := h.reports.Delete(id); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Success: false, Message: "Report not found",
			})
		}
		slog.Error("failed to delete report", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false, Message: "Failed to delete report",
		})
	}

	return c.JSON(dto.MessageResponse{
		Success: true,
		Message: "Report deleted successfully",
	})
}

// GetReportsStats handles GET /api/reports/stats.
func (h *ReportHandler) GetReportsStats(c *fiber.Ctx) error {
	stats, err := h.reports.Stats()
	if err != nil {
		slog.Error("failed to compute report stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false, Message: "Failed to fetch statistics",
		})
	}

	health := h.ingester.StoreHealth(c.Context())
	healthMap := map[string]string{
		"enabled": strconv.FormatBool(health.Enabled),
		"status":  health.Status,
	}
	if health.Error != "" {
		healthMap["error"] = health.Error
	}

	return c.JSON(dto.StatsResponse{
		Success:            true,
		Stats:              stats,
		ImageServiceHealth: healthMap,
	})
}

// ingestSubmission picks the image reference out of a JSON submission and
// runs it through the pipeline. An inline screenshot wins over a URL.
func (h *ReportHandler) ingestSubmission(c *fiber.Ctx, req *dto.SubmitReportRequest) (services.ImageResult, error) {
	if req.Screenshot != "" {
		return h.ingester.Ingest(c.Context(), req.Screenshot, imaging.HintBase64, req.ForceUpload)
	}
	if req.ScreenshotURL != "" {
		return h.ingester.Ingest(c.Context(), req.ScreenshotURL, req.ImageType, req.ForceUpload)
	}
	return services.ImageResult{}, nil
}

// persistSubmission saves the report and answers 201. If persistence fails
// after a successful upload, the uploaded asset is compensated exactly once.
func (h *ReportHandler) persistSubmission(c *fiber.Ctx, report *models.Report, image services.ImageResult) error {
	created, err := h.reports.Create(report)
	if err != nil {
		slog.Error("failed to persist report", "error", err)
		h.ingester.Cleanup(c.Context(), image.PublicID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false, Message: "Server error while submitting report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreatedReportResponse{
		Success: true,
		Message: "Report submitted successfully",
		Data: dto.CreatedReportSummary{
			ID:             created.ID,
			Title:          created.Title,
			Category:       created.Category,
			Status:         created.Status,
			DateReported:   created.DateReported,
			ScreenshotURL:  created.ScreenshotURL,
			ImageProcessed: image.Processed,
		},
	})
}
