package imaging

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inlinePNG(t *testing.T, size int) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, size))
}

func TestValidateBase64(t *testing.T) {
	v := NewValidator()

	t.Run("accepts a small png", func(t *testing.T) {
		assert.NoError(t, v.ValidateBase64(inlinePNG(t, 128)))
	})

	t.Run("accepts every supported format prefix", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte{0x01})
		for _, format := range []string{"png", "jpg", "jpeg", "gif", "webp", "bmp", "svg+xml"} {
			assert.NoError(t, v.ValidateBase64("data:image/"+format+";base64,"+payload), format)
		}
	})

	t.Run("rejects a non-image data uri", func(t *testing.T) {
		err := v.ValidateBase64("data:application/pdf;base64,AAAA")
		assert.ErrorIs(t, err, ErrInvalidImageFormat)
	})

	t.Run("rejects a bare string", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidateBase64("hello"), ErrInvalidImageFormat)
	})

	t.Run("rejects an empty payload", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidateBase64("data:image/png;base64,"), ErrInvalidImageFormat)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidateBase64("data:image/png;base64,!!!not-base64!!!"), ErrInvalidImageFormat)
	})

	t.Run("rejects a payload at the 10MB bound", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidateBase64(inlinePNG(t, MaxImageBytes)), ErrInvalidImageFormat)
	})

	t.Run("accepts a payload just under the bound", func(t *testing.T) {
		assert.NoError(t, v.ValidateBase64(inlinePNG(t, MaxImageBytes-1)))
	})
}

func TestValidateURLPatternChecks(t *testing.T) {
	// None of these should ever reach the probe.
	v := NewValidatorWithClient(&http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			t.Fatalf("unexpected probe to %s", r.URL)
			return nil, nil
		}),
	})
	ctx := context.Background()

	assert.ErrorIs(t, v.ValidateURL(ctx, "ftp://example.com/a.png"), ErrInvalidImageURL)
	assert.ErrorIs(t, v.ValidateURL(ctx, "example.com/a.png"), ErrInvalidImageURL)
	assert.ErrorIs(t, v.ValidateURL(ctx, ""), ErrInvalidImageURL)
	// http but neither an image extension nor a trusted host
	assert.ErrorIs(t, v.ValidateURL(ctx, "https://example.com/page.html"), ErrInvalidImageURL)
}

func TestValidateURLProbe(t *testing.T) {
	t.Run("accepts 2xx for an image extension url", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		v := NewValidator()
		assert.NoError(t, v.ValidateURL(context.Background(), ts.URL+"/shot.png"))
	})

	t.Run("accepts redirect-range status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotModified)
		}))
		defer ts.Close()

		v := NewValidator()
		assert.NoError(t, v.ValidateURL(context.Background(), ts.URL+"/shot.jpg"))
	})

	t.Run("rejects 4xx", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		v := NewValidator()
		assert.ErrorIs(t, v.ValidateURL(context.Background(), ts.URL+"/gone.png"), ErrInvalidImageURL)
	})

	t.Run("rejects an unreachable host", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := ts.URL + "/shot.png"
		ts.Close()

		v := NewValidator()
		assert.ErrorIs(t, v.ValidateURL(context.Background(), url), ErrInvalidImageURL)
	})

	t.Run("trusted host skips the extension requirement", func(t *testing.T) {
		probed := false
		v := NewValidatorWithClient(&http.Client{
			Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				probed = true
				rec := httptest.NewRecorder()
				rec.WriteHeader(http.StatusOK)
				return rec.Result(), nil
			}),
		})

		err := v.ValidateURL(context.Background(), "https://images.unsplash.com/photo-123")
		require.NoError(t, err)
		assert.True(t, probed)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
