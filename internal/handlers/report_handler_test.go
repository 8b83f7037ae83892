package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/AryanPatankar27/NagrikSathi/internal/assetstore"
	"github.com/AryanPatankar27/NagrikSathi/internal/dto"
	"github.com/AryanPatankar27/NagrikSathi/internal/imaging"
	"github.com/AryanPatankar27/NagrikSathi/internal/models"
	"github.com/AryanPatankar27/NagrikSathi/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore scripts the persistence layer.
type stubStore struct {
	created   []*models.Report
	createErr error
	reports   map[uuid.UUID]*models.Report
	updateErr error
	deleteErr error
	stats     dto.ReportStats
}

func newStubStore() *stubStore {
	return &stubStore{reports: map[uuid.UUID]*models.Report{}}
}

func (s *stubStore) Create(report *models.Report) (*models.Report, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	report.ID = uuid.New()
	report.Status = models.StatusPending
	s.created = append(s.created, report)
	s.reports[report.ID] = report
	return report, nil
}

func (s *stubStore) List(filter services.ReportFilter, page, limit int) ([]models.Report, dto.Pagination, error) {
	var out []models.Report
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out, dto.Pagination{CurrentPage: page, Limit: limit, TotalReports: int64(len(out)), TotalPages: 1}, nil
}

func (s *stubStore) GetByID(id uuid.UUID) (*models.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, services.ErrReportNotFound
	}
	return r, nil
}

func (s *stubStore) UpdateStatus(id uuid.UUID, status string) (*models.Report, error) {
	if !models.ValidStatus(status) {
		return nil, services.ErrInvalidStatus
	}
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	r, ok := s.reports[id]
	if !ok {
		return nil, services.ErrReportNotFound
	}
	r.Status = status
	return r, nil
}

func (s *stubStore) Delete(id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.reports[id]; !ok {
		return services.ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *stubStore) Stats() (dto.ReportStats, error) {
	return s.stats, nil
}

// stubIngester scripts the ingestion pipeline and records compensation.
type stubIngester struct {
	result        services.ImageResult
	ingestErr     error
	fileErr       error
	filePaths     []string
	cleanupCalls  []string
	deletedAssets []string
	deleteErr     error
}

func (s *stubIngester) Ingest(_ context.Context, raw, kind string, force bool) (services.ImageResult, error) {
	if s.ingestErr != nil {
		return services.ImageResult{}, s.ingestErr
	}
	return s.result, nil
}

func (s *stubIngester) IngestFile(_ context.Context, path string) (services.ImageResult, error) {
	s.filePaths = append(s.filePaths, path)
	if s.fileErr != nil {
		return services.ImageResult{}, s.fileErr
	}
	return s.result, nil
}

func (s *stubIngester) Cleanup(_ context.Context, publicID *string) {
	if publicID != nil {
		s.cleanupCalls = append(s.cleanupCalls, *publicID)
	}
}

func (s *stubIngester) DeleteAsset(_ context.Context, publicID string) error {
	s.deletedAssets = append(s.deletedAssets, publicID)
	return s.deleteErr
}

func (s *stubIngester) StoreHealth(_ context.Context) assetstore.Health {
	return assetstore.Health{Enabled: true, Status: "connected"}
}

func newTestApp(store ReportStore, ingester Ingester) *fiber.App {
	app := fiber.New()
	h := NewReportHandler(store, ingester)
	app.Get("/api/reports/all", h.GetAllReports)
	app.Get("/api/reports/stats", h.GetReportsStats)
	app.Get("/api/reports/:id", h.GetReportByID)
	app.Post("/api/reports/extension", h.SubmitExtensionReport)
	app.Post("/api/reports/submit", h.SubmitManualReport)
	app.Post("/api/reports/submit-upload", h.SubmitUploadReport)
	app.Put("/api/reports/status/:id", h.UpdateReportStatus)
	app.Delete("/api/reports/:id", h.DeleteReport)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
}

func TestSubmitExtensionReportNoImage(t *testing.T) {
	store := newStubStore()
	ing := &stubIngester{}
	app := newTestApp(store, ing)

	resp := postJSON(t, app, "/api/reports/extension", map[string]any{
		"title":    "T",
		"url":      "http://x",
		"category": "c",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Nil(t, created.ScreenshotURL)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, sourceExtension, created.Source)
	assert.Equal(t, reportedByExtension, created.ReportedBy)
	assert.Equal(t, "URL: http://x\n\nNotes: No additional notes.", created.Description)

	var body dto.CreatedReportResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Success)
	assert.False(t, body.Data.ImageProcessed)
}

func TestSubmitExtensionReportMissingFields(t *testing.T) {
	app := newTestApp(newStubStore(), &stubIngester{})

	for _, body := range []map[string]any{
		{"url": "http://x", "category": "c"},
		{"title": "T", "category": "c"},
		{"title": "T", "url": "http://x"},
	} {
		resp := postJSON(t, app, "/api/reports/extension", body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestSubmitManualReportValidationErrorIs400(t *testing.T) {
	ing := &stubIngester{ingestErr: imaging.ErrInvalidImageFormat}
	app := newTestApp(newStubStore(), ing)

	resp := postJSON(t, app, "/api/reports/submit", map[string]any{
		"title":      "T",
		"category":   "c",
		"screenshot": "data:image/tiff;base64,AAAA",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Message, "Image processing error")
}

func TestSubmitCompensatesWhenPersistenceFails(t *testing.T) {
	publicID := "scam-reports/abc"
	url := "https://res.cloudinary.com/demo/abc.jpg"
	imageType := models.ImageTypeBase64
	ing := &stubIngester{result: services.ImageResult{
		URL:       &url,
		PublicID:  &publicID,
		Type:      &imageType,
		Processed: true,
	}}
	store := newStubStore()
	store.createErr = errors.New("db down")
	app := newTestApp(store, ing)

	resp := postJSON(t, app, "/api/reports/submit", map[string]any{
		"title":      "T",
		"category":   "c",
		"screenshot": "data:image/png;base64,AAAA",
	})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, []string{publicID}, ing.cleanupCalls, "exactly one compensating delete")

	var body dto.ErrorResponse
	decodeBody(t, resp, &body)
	assert.NotContains(t, body.Message, "db down", "internal details must not leak")
}

func TestUpdateReportStatus(t *testing.T) {
	store := newStubStore()
	report, err := store.Create(&models.Report{Title: "T", Category: "c"})
	require.NoError(t, err)
	app := newTestApp(store, &stubIngester{})

	t.Run("invalid status is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/reports/status/"+report.ID.String(),
			strings.NewReader(`{"status":"approved"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.StatusPending, store.reports[report.ID].Status)
	})

	t.Run("valid status is applied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/reports/status/"+report.ID.String(),
			strings.NewReader(`{"status":"verified"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, models.StatusVerified, store.reports[report.ID].Status)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/reports/status/"+uuid.NewString(),
			strings.NewReader(`{"status":"verified"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteReportCleansUpAsset(t *testing.T) {
	store := newStubStore()
	publicID := "scam-reports/xyz"
	url := "https://res.cloudinary.com/demo/xyz.jpg"
	report, err := store.Create(&models.Report{
		Title:              "T",
		Category:           "c",
		ScreenshotURL:      &url,
		ScreenshotPublicID: &publicID,
	})
	require.NoError(t, err)

	t.Run("asset delete failure does not block the row delete", func(t *testing.T) {
		ing := &stubIngester{deleteErr: errors.New("cloud down")}
		app := newTestApp(store, ing)

		req := httptest.NewRequest(http.MethodDelete, "/api/reports/"+report.ID.String(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{publicID}, ing.deletedAssets)
		_, ok := store.reports[report.ID]
		assert.False(t, ok, "row must be gone despite the failed asset delete")
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		app := newTestApp(store, &stubIngester{})
		req := httptest.NewRequest(http.MethodDelete, "/api/reports/"+uuid.NewString(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func multipartBody(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if withFile {
		fw, err := w.CreateFormFile("screenshot", "evidence.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSubmitUploadReport(t *testing.T) {
	allFields := map[string]string{
		"title":       "T",
		"source":      "Manual Form",
		"category":    "c",
		"description": "d",
	}

	t.Run("missing file is 400", func(t *testing.T) {
		app := newTestApp(newStubStore(), &stubIngester{})
		body, contentType := multipartBody(t, allFields, false)
		req := httptest.NewRequest(http.MethodPost, "/api/reports/submit-upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing required field is 400", func(t *testing.T) {
		app := newTestApp(newStubStore(), &stubIngester{})
		body, contentType := multipartBody(t, map[string]string{"title": "T"}, true)
		req := httptest.NewRequest(http.MethodPost, "/api/reports/submit-upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("upload failure is 400 and the temp file is removed", func(t *testing.T) {
		ing := &stubIngester{fileErr: errors.New("store down")}
		app := newTestApp(newStubStore(), ing)
		body, contentType := multipartBody(t, allFields, true)
		req := httptest.NewRequest(http.MethodPost, "/api/reports/submit-upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		require.Len(t, ing.filePaths, 1)
		_, statErr := os.Stat(ing.filePaths[0])
		assert.True(t, os.IsNotExist(statErr), "temp file must be removed on upload failure")
	})

	t.Run("success removes the temp file and persists the report", func(t *testing.T) {
		publicID := "scam-reports/up"
		url := "https://res.cloudinary.com/demo/up.jpg"
		imageType := models.ImageTypeUploadedFile
		ing := &stubIngester{result: services.ImageResult{
			URL: &url, PublicID: &publicID, Type: &imageType, Processed: true,
		}}
		store := newStubStore()
		app := newTestApp(store, ing)

		fields := map[string]string{
			"title": "T", "source": "Manual Form", "category": "c",
			"description": "d", "name": "Asha", "location": "Pune",
		}
		body, contentType := multipartBody(t, fields, true)
		req := httptest.NewRequest(http.MethodPost, "/api/reports/submit-upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		require.Len(t, store.created, 1)
		created := store.created[0]
		require.NotNil(t, created.ImageType)
		assert.Equal(t, models.ImageTypeUploadedFile, *created.ImageType)
		assert.Equal(t, "Asha", created.ReportedBy)

		require.Len(t, ing.filePaths, 1)
		_, statErr := os.Stat(ing.filePaths[0])
		assert.True(t, os.IsNotExist(statErr), "temp file must be removed after success")
	})

	t.Run("persistence failure compensates and removes the temp file", func(t *testing.T) {
		publicID := "scam-reports/up"
		url := "https://res.cloudinary.com/demo/up.jpg"
		imageType := models.ImageTypeUploadedFile
		ing := &stubIngester{result: services.ImageResult{
			URL: &url, PublicID: &publicID, Type: &imageType, Processed: true,
		}}
		store := newStubStore()
		store.createErr = errors.New("db down")
		app := newTestApp(store, ing)

		body, contentType := multipartBody(t, allFields, true)
		req := httptest.NewRequest(http.MethodPost, "/api/reports/submit-upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, []string{publicID}, ing.cleanupCalls)
		require.Len(t, ing.filePaths, 1)
		_, statErr := os.Stat(ing.filePaths[0])
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestGetReportByID(t *testing.T) {
	store := newStubStore()
	report, err := store.Create(&models.Report{Title: "T", Category: "c"})
	require.NoError(t, err)
	app := newTestApp(store, &stubIngester{})

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/"+report.ID.String(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.ReportResponse
		decodeBody(t, resp, &body)
		assert.True(t, body.Success)
		assert.Equal(t, report.ID, body.Report.ID)
	})

	t.Run("bad id is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/not-a-uuid", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/"+uuid.NewString(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestGetReportsStatsIncludesStoreHealth(t *testing.T) {
	store := newStubStore()
	store.stats = dto.ReportStats{TotalReports: 5}
	app := newTestApp(store, &stubIngester{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/stats", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.StatsResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Success)
	assert.EqualValues(t, 5, body.Stats.TotalReports)
	assert.Equal(t, "connected", body.ImageServiceHealth["status"])
	assert.Equal(t, "true", body.ImageServiceHealth["enabled"])
}
