// Package assetstore wraps the Cloudinary media store behind a small
// interface so the ingestion pipeline can run with the store disabled and
// tests can substitute a fake.
package assetstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AryanPatankar27/NagrikSathi/internal/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrNotConfigured is returned by upload operations when the credential
// triple is absent. Callers decide whether that degrades or fails.
var ErrNotConfigured = errors.New("asset store is not configured")

const (
	uploadFolder  = "scam-reports"
	uploadTimeout = 30 * time.Second

	// Server-side cap: fit within 1200x800, auto quality.
	uploadTransformation = "c_limit,w_1200,h_800/q_auto:good"
)

// UploadResult is the stable reference returned by a successful upload.
// PublicID is the deletion handle.
type UploadResult struct {
	URL      string
	PublicID string
	Format   string
	Width    int
	Height   int
	Bytes    int
}

// Health is a point-in-time store status. Probing never returns an error;
// failures are folded into the status fields.
type Health struct {
	Enabled bool
	Status  string
	Error   string
}

// Store is the remote asset store contract consumed by the ingestion
// pipeline and the handlers.
type Store interface {
	Enabled() bool
	// UploadBase64 uploads an inline data-URI image.
	UploadBase64(ctx context.Context, data string) (*UploadResult, error)
	// UploadURL uploads a remotely hosted image by its URL.
	UploadURL(ctx context.Context, url string) (*UploadResult, error)
	// UploadFile uploads a locally staged file by path.
	UploadFile(ctx context.Context, path string) (*UploadResult, error)
	// Delete removes an asset by public ID. Empty ID is a no-op success.
	Delete(ctx context.Context, publicID string) error
	// IsOwnURL reports whether url already points at this store.
	IsOwnURL(url string) bool
	HealthCheck(ctx context.Context) Health
}

// CloudinaryStore implements Store against the Cloudinary API. When the
// credential triple is missing the store is constructed disabled and every
// upload returns ErrNotConfigured.
type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	enabled bool
}

func NewCloudinaryStore(cfg *config.Config) (*CloudinaryStore, error) {
	if !cfg.CloudinaryConfigured() {
		slog.Warn("cloudinary not configured, image uploads will be limited")
		return &CloudinaryStore{enabled: false}, nil
	}

	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	slog.Info("cloudinary configured", "cloud", cfg.CloudinaryCloudName)
	return &CloudinaryStore{cld: cld, enabled: true}, nil
}

func (s *CloudinaryStore) Enabled() bool {
	return s.enabled
}

func (s *CloudinaryStore) UploadBase64(ctx context.Context, data string) (*UploadResult, error) {
	res, err := s.upload(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload base64 image: %w", err)
	}
	return res, nil
}

func (s *CloudinaryStore) UploadURL(ctx context.Context, url string) (*UploadResult, error) {
	res, err := s.upload(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image from URL: %w", err)
	}
	return res, nil
}

func (s *CloudinaryStore) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	res, err := s.upload(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image file: %w", err)
	}
	return res, nil
}

// upload runs one Cloudinary upload under the 30s deadline. The context
// deadline aborts the in-flight call instead of racing a timer against it.
func (s *CloudinaryStore) upload(ctx context.Context, file interface{}) (*UploadResult, error) {
	if !s.enabled {
		return nil, ErrNotConfigured
	}

	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	result, err := s.cld.Upload.Upload(uploadCtx, file, uploader.UploadParams{
		Folder:         uploadFolder,
		ResourceType:   "image",
		Transformation: uploadTransformation,
	})
	if err != nil {
		return nil, err
	}
	if result.Error.Message != "" {
		return nil, errors.New(result.Error.Message)
	}

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Format:   result.Format,
		Width:    result.Width,
		Height:   result.Height,
		Bytes:    result.Bytes,
	}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if !s.enabled || publicID == "" {
		return nil
	}

	deleteCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := s.cld.Upload.Destroy(deleteCtx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", publicID, err)
	}

	slog.Info("asset deleted from cloudinary", "public_id", publicID)
	return nil
}

func (s *CloudinaryStore) IsOwnURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "cloudinary.com")
}

func (s *CloudinaryStore) HealthCheck(ctx context.Context) Health {
	h := Health{Enabled: s.enabled}
	if !s.enabled {
		h.Status = "disabled"
		return h
	}

	pingCtx, cancel := context.WithTimeout(ctx, probePingTimeout)
	defer cancel()

	if _, err := s.cld.Admin.Ping(pingCtx); err != nil {
		h.Status = "error"
		h.Error = err.Error()
		return h
	}

	h.Status = "connected"
	return h
}

const probePingTimeout = 5 * time.Second
