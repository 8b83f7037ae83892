package services

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/AryanPatankar27/NagrikSathi/internal/models"
	"github.com/gocarina/gocsv"
)

// JobService serves the government job listings catalogue. The CSV is
// decoded once at construction; lookups never touch the filesystem again.
type JobService struct {
	jobs []models.JobListing
}

// NewJobService loads the catalogue from the CSV at path. A missing file is
// not fatal: the service starts with an empty catalogue so the rest of the
// platform stays up.
func NewJobService(path string) (*JobService, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("jobs csv not found, catalogue is empty", "path", path)
			return &JobService{}, nil
		}
		return nil, fmt.Errorf("failed to open jobs csv: %w", err)
	}
	defer f.Close()

	var jobs []models.JobListing
	if err := gocsv.UnmarshalFile(f, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse jobs csv: %w", err)
	}

	slog.Info("jobs catalogue loaded", "path", path, "count", len(jobs))
	return &JobService{jobs: jobs}, nil
}

// List filters by exact category and a case-insensitive substring search
// across title, department and location.
func (s *JobService) List(category, search string) []models.JobListing {
	results := make([]models.JobListing, 0, len(s.jobs))
	needle := strings.ToLower(search)

	for _, job := range s.jobs {
		if category != "" && !strings.EqualFold(job.Category, category) {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(job.Title + " " + job.Department + " " + job.Location)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		results = append(results, job)
	}
	return results
}

// Categories returns the distinct category values, preserving CSV order.
func (s *JobService) Categories() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, job := range s.jobs {
		if job.Category == "" {
			continue
		}
		if _, ok := seen[job.Category]; ok {
			continue
		}
		seen[job.Category] = struct{}{}
		categories = append(categories, job.Category)
	}
	return categories
}
