package handlers

import (
	"github.com/AryanPatankar27/NagrikSathi/internal/services"
	"github.com/gofiber/fiber/v2"
)

type JobHandler struct {
	jobs *services.JobService
}

func NewJobHandler(jobs *services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GetJobs handles GET /api/jobs?category=&search=.
func (h *JobHandler) GetJobs(c *fiber.Ctx) error {
	jobs := h.jobs.List(c.Query("category"), c.Query("search"))
	return c.JSON(fiber.Map{
		"success": true,
		"jobs":    jobs,
		"total":   len(jobs),
	})
}

// GetJobCategories handles GET /api/jobs/categories.
func (h *JobHandler) GetJobCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"categories": h.jobs.Categories(),
	})
}
