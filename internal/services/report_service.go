package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AryanPatankar27/NagrikSathi/internal/dto"
	"github.com/AryanPatankar27/NagrikSathi/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrInvalidStatus  = errors.New("invalid status. Must be pending, verified, or rejected")
)

// ReportFilter narrows List results. Zero values mean "no constraint".
type ReportFilter struct {
	Status   string
	Category string
	// Search does a case-insensitive substring match across title,
	// description and location.
	Search string
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Create persists a new report. ID and timestamps are server-assigned;
// status defaults to pending unless the caller set one.
func (s *ReportService) Create(report *models.Report) (*models.Report, error) {
	now := time.Now().UTC()
	report.ID = uuid.New()
	report.DateReported = now
	report.UpdatedAt = now
	if report.Status == "" {
		report.Status = models.StatusPending
	}
	if report.ReportedBy == "" {
		report.ReportedBy = "Anonymous User"
	}
	if report.Source == "" {
		report.Source = "Manual Form"
	}

	if err := s.db.Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return report, nil
}

// List returns one page of reports, newest first, plus the pagination
// envelope. Page is 1-based.
func (s *ReportService) List(filter ReportFilter, page, limit int) ([]models.Report, dto.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := s.db.Model(&models.Report{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where(
			"title ILIKE ? OR description ILIKE ? OR location ILIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dto.Pagination{}, err
	}

	var reports []models.Report
	offset := (page - 1) * limit
	if err := query.Order("date_reported DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, dto.Pagination{}, err
	}

	pagination := dto.Pagination{
		CurrentPage:  page,
		TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
		TotalReports: total,
		HasNextPage:  int64(page*limit) < total,
		HasPrevPage:  page > 1,
		Limit:        limit,
	}
	return reports, pagination, nil
}

func (s *ReportService) GetByID(id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// UpdateStatus transitions a report between pending/verified/rejected and
// bumps updated_at. Invalid values are rejected before touching the row.
func (s *ReportService) UpdateStatus(id uuid.UUID, status string) (*models.Report, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	result := s.db.Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrReportNotFound
	}

	return s.GetByID(id)
}

// Delete removes the report row. Remote asset cleanup is the handler's
// responsibility; the store layer does not know about assets.
func (s *ReportService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.Report{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Stats aggregates counts by status, category and source, plus totals.
func (s *ReportService) Stats() (dto.ReportStats, error) {
	var stats dto.ReportStats

	if err := s.db.Model(&models.Report{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&stats.StatusBreakdown).Error; err != nil {
		return stats, err
	}

	if err := s.db.Model(&models.Report{}).
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&stats.CategoryBreakdown).Error; err != nil {
		return stats, err
	}

	if err := s.db.Model(&models.Report{}).
		Select("source AS key, COUNT(*) AS count").
		Group("source").
		Order("count DESC").
		Scan(&stats.SourceBreakdown).Error; err != nil {
		return stats, err
	}

	if err := s.db.Model(&models.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return stats, err
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	if err := s.db.Model(&models.Report{}).
		Where("date_reported >= ?", weekAgo).
		Count(&stats.RecentReports).Error; err != nil {
		return stats, err
	}

	if err := s.db.Model(&models.Report{}).
		Where("screenshot_url IS NOT NULL").
		Count(&stats.ReportsWithImages).Error; err != nil {
		return stats, err
	}

	return stats, nil
}
