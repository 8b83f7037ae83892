package routes

import (
	"time"

	"github.com/AryanPatankar27/NagrikSathi/internal/config"
	"github.com/AryanPatankar27/NagrikSathi/internal/handlers"
	"github.com/AryanPatankar27/NagrikSathi/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	reportHandler *handlers.ReportHandler,
	jobHandler *handlers.JobHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Jobs catalogue (public, read-only)
	api.Get("/jobs", jobHandler.GetJobs)
	api.Get("/jobs/categories", jobHandler.GetJobCategories)

	// Reports — public read and submit
	reports := api.Group("/reports")
	reports.Get("/all", reportHandler.GetAllReports)
	reports.Get("/stats", reportHandler.GetReportsStats)

	// Submission endpoints get a stricter limit: image uploads are costly.
	submit := limiter.New(limiter.Config{
		Max:               20,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	reports.Post("/extension", submit, reportHandler.SubmitExtensionReport)
	reports.Post("/submit", submit, reportHandler.SubmitManualReport)
	reports.Post("/submit-upload", submit, reportHandler.SubmitUploadReport)

	// Admin moderation
	admin := middleware.AdminRequired(cfg)
	reports.Put("/status/:id", admin, reportHandler.UpdateReportStatus)
	reports.Delete("/:id", admin, reportHandler.DeleteReport)

	// Registered last so /all, /stats and the POST paths keep precedence.
	reports.Get("/:id", reportHandler.GetReportByID)
}
