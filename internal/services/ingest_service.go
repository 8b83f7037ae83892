package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/AryanPatankar27/NagrikSathi/internal/assetstore"
	"github.com/AryanPatankar27/NagrikSathi/internal/imaging"
	"github.com/AryanPatankar27/NagrikSathi/internal/models"
	"gorm.io/datatypes"
)

// ImageResult is the outcome of ingesting one image reference. All fields
// are nil/false when no image was supplied. Processed is true only when the
// image actually landed in the remote store.
type ImageResult struct {
	URL       *string
	PublicID  *string
	Type      *string
	Metadata  *models.ImageMetadata
	Processed bool
}

// MetadataJSON renders the metadata blob for persistence, nil when absent.
func (r ImageResult) MetadataJSON() datatypes.JSON {
	if r.Metadata == nil {
		return nil
	}
	b, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// IngestService drives classification, validation, conditional upload and
// result assembly for report image evidence.
type IngestService struct {
	store     assetstore.Store
	validator *imaging.Validator
}

func NewIngestService(store assetstore.Store, validator *imaging.Validator) *IngestService {
	return &IngestService{store: store, validator: validator}
}

// Ingest processes an inline or URL image reference.
//
// Failure semantics, in order:
//   - absent image: zero result, nil error, the store is never touched;
//   - classification/validation failure: error propagates (client fault);
//   - base64 upload failure with the store enabled: error propagates;
//   - base64 with the store disabled: degrades to keeping the inline data
//     as the URL field, Processed=false;
//   - URL upload failure: swallowed, the original URL is kept (best effort).
func (s *IngestService) Ingest(ctx context.Context, raw, declaredKind string, forceUpload bool) (ImageResult, error) {
	var result ImageResult

	if declaredKind == "" {
		declaredKind = imaging.HintAuto
	}

	switch kind := imaging.Classify(raw, declaredKind); kind {
	case imaging.KindAbsent:
		return result, nil

	case imaging.KindBase64:
		if err := s.validator.ValidateBase64(raw); err != nil {
			return result, err
		}
		result.Type = strPtr(models.ImageTypeBase64)

		if !s.store.Enabled() {
			// Degraded mode: the caller gets the raw inline data back as
			// the "url". Large, not deletable, but the submission survives.
			result.URL = strPtr(raw)
			return result, nil
		}

		upload, err := s.store.UploadBase64(ctx, raw)
		if err != nil {
			return ImageResult{}, err
		}
		s.applyUpload(&result, upload)
		return result, nil

	default: // imaging.KindURL
		if err := s.validator.ValidateURL(ctx, raw); err != nil {
			return result, err
		}
		result.Type = strPtr(models.ImageTypeURL)

		shouldUpload := forceUpload || (!s.store.IsOwnURL(raw) && s.store.Enabled())
		if shouldUpload && s.store.Enabled() {
			upload, err := s.store.UploadURL(ctx, raw)
			if err != nil {
				// Best effort past validation: keep the third-party URL.
				slog.Warn("url upload failed, keeping original", "error", err)
				result.URL = strPtr(raw)
				return result, nil
			}
			s.applyUpload(&result, upload)
			return result, nil
		}

		result.URL = strPtr(raw)
		return result, nil
	}
}

// IngestFile uploads a locally staged multipart file. Unlike the URL path
// this is mandatory: any failure, including a disabled store, propagates.
func (s *IngestService) IngestFile(ctx context.Context, path string) (ImageResult, error) {
	upload, err := s.store.UploadFile(ctx, path)
	if err != nil {
		return ImageResult{}, err
	}

	var result ImageResult
	result.Type = strPtr(models.ImageTypeUploadedFile)
	s.applyUpload(&result, upload)
	return result, nil
}

// Cleanup is the compensating delete after a failed persistence step.
// Errors are logged and swallowed; the primary failure stands.
func (s *IngestService) Cleanup(ctx context.Context, publicID *string) {
	if publicID == nil || *publicID == "" {
		return
	}
	if err := s.store.Delete(ctx, *publicID); err != nil {
		slog.Error("failed to clean up uploaded asset", "public_id", *publicID, "error", err)
	}
}

// DeleteAsset removes a stored asset, used by the report delete flow.
func (s *IngestService) DeleteAsset(ctx context.Context, publicID string) error {
	return s.store.Delete(ctx, publicID)
}

// StoreHealth reports asset store status for /stats and /health.
func (s *IngestService) StoreHealth(ctx context.Context) assetstore.Health {
	return s.store.HealthCheck(ctx)
}

func (s *IngestService) applyUpload(result *ImageResult, upload *assetstore.UploadResult) {
	result.URL = strPtr(upload.URL)
	result.PublicID = strPtr(upload.PublicID)
	result.Metadata = &models.ImageMetadata{
		Format: upload.Format,
		Width:  upload.Width,
		Height: upload.Height,
		Bytes:  upload.Bytes,
	}
	result.Processed = true
}

func strPtr(s string) *string {
	return &s
}
