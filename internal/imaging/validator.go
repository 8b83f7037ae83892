package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrInvalidImageFormat carries the supported-format list so handlers
	// can echo it to the client verbatim.
	ErrInvalidImageFormat = errors.New("invalid base64 image format. Supported formats: PNG, JPG, JPEG, GIF, WebP, BMP, SVG under 10MB")
	ErrInvalidImageURL    = errors.New("invalid image URL format or URL is not accessible")
)

// MaxImageBytes bounds the decoded size of an inline image.
const MaxImageBytes = 10_000_000

const probeTimeout = 5 * time.Second

var (
	base64Pattern   = regexp.MustCompile(`(?i)^data:image/(png|jpg|jpeg|gif|webp|bmp|svg\+xml);base64,`)
	urlPattern      = regexp.MustCompile(`(?i)^https?://.+`)
	imageExtPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|bmp|svg)(\?.*)?$`)
)

// Hosts accepted without an image file extension.
var trustedHosts = []string{
	"unsplash.com",
	"imgur.com",
	"cloudinary.com",
	"images.unsplash.com",
}

// Validator enforces the per-kind image constraints. The probe client is
// injectable so tests never hit the network.
type Validator struct {
	client *http.Client
}

func NewValidator() *Validator {
	return &Validator{client: &http.Client{}}
}

// NewValidatorWithClient is for tests.
func NewValidatorWithClient(client *http.Client) *Validator {
	return &Validator{client: client}
}

// ValidateBase64 checks the data-URI prefix and that the decoded payload is
// non-empty and under MaxImageBytes. No network involved.
func (v *Validator) ValidateBase64(data string) error {
	loc := base64Pattern.FindStringIndex(data)
	if loc == nil {
		return ErrInvalidImageFormat
	}
	payload := data[loc[1]:]
	if payload == "" {
		return ErrInvalidImageFormat
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalidImageFormat
	}
	if len(decoded) == 0 || len(decoded) >= MaxImageBytes {
		return ErrInvalidImageFormat
	}
	return nil
}

// ValidateURL accepts http(s) URLs that either carry a known image file
// extension or belong to a trusted host, then confirms reachability with a
// bounded HEAD probe. The probe is cancelled when its deadline passes.
func (v *Validator) ValidateURL(ctx context.Context, rawURL string) error {
	if !urlPattern.MatchString(rawURL) {
		return ErrInvalidImageURL
	}

	trusted := false
	for _, host := range trustedHosts {
		if strings.Contains(rawURL, host) {
			trusted = true
			break
		}
	}
	if !imageExtPattern.MatchString(rawURL) && !trusted {
		return ErrInvalidImageURL
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return ErrInvalidImageURL
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return ErrInvalidImageURL
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return ErrInvalidImageURL
	}
	return nil
}
