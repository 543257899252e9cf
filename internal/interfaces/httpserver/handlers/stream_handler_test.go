package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/infrastructure/auth"
	"vidvault/internal/utils/platformerrors"
)

const testSecret = "stream-test-secret"

type stubRepository struct {
	assets map[string]*asset.MediaAsset
}

func (s *stubRepository) Create(ctx context.Context, a *asset.MediaAsset) error { return nil }

func (s *stubRepository) GetByID(ctx context.Context, id string) (*asset.MediaAsset, error) {
	return s.GetScoped(ctx, id, asset.Scope{All: true})
}

func (s *stubRepository) GetScoped(ctx context.Context, id string, scope asset.Scope) (*asset.MediaAsset, error) {
	a, ok := s.assets[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"video not found", nil, "test-not-found")
	}
	if !scope.All {
		if scope.TenantID == nil || a.TenantID == nil || *scope.TenantID != *a.TenantID {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"video not found", nil, "test-not-found")
		}
	}
	return a, nil
}

func (s *stubRepository) ListScoped(ctx context.Context, scope asset.Scope) ([]asset.MediaAsset, error) {
	var out []asset.MediaAsset
	for _, a := range s.assets {
		if !scope.All {
			if scope.TenantID == nil || a.TenantID == nil || *scope.TenantID != *a.TenantID {
				continue
			}
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *stubRepository) Delete(ctx context.Context, id string) error {
	delete(s.assets, id)
	return nil
}

type stubStorage struct{}

func (stubStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return nil
}

func (stubStorage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return nil, "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
		"no artifact", nil, "test-no-artifact")
}

func (stubStorage) Remove(ctx context.Context, key string) error { return nil }

type stubProber struct{}

func (stubProber) Probe(ctx context.Context, path string) (asset.ProbeResult, error) {
	return asset.ProbeResult{DurationSeconds: 30, Resolution: "640x360", Codec: "h264"}, nil
}

type stubRunner struct{}

func (stubRunner) Run(ctx context.Context, a *asset.MediaAsset) {}

func signToken(t *testing.T, role string, tenantID *string) string {
	t.Helper()
	claims := auth.Claims{
		Role:     role,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newStreamTestRouter(t *testing.T, chunkBytes int64, videoBody []byte) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	videoPath := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(videoPath, videoBody, 0o644))

	tenant := "tenant-a"
	stored := &asset.MediaAsset{
		ID:       "vid_01STREAMTEST000000000000000",
		Path:     videoPath,
		Size:     int64(len(videoBody)),
		MimeType: "video/mp4",
		State:    asset.StateCompleted,
		TenantID: &tenant,
	}

	cfg := &config.Config{
		StreamChunkBytes: chunkBytes,
		JWTSecret:        testSecret,
	}
	repo := &stubRepository{assets: map[string]*asset.MediaAsset{stored.ID: stored}}
	service := asset.NewService(cfg, repo, stubStorage{}, stubProber{}, stubRunner{}, zerolog.Nop())
	handler := NewStreamHandler(cfg, service, zerolog.Nop())
	validator := auth.NewValidator(cfg, zerolog.Nop())

	engine := gin.New()
	engine.GET("/v1/videos/:id/stream", validator.Middleware(), handler.Stream)
	return engine, stored.ID
}

func doStream(t *testing.T, engine *gin.Engine, id, rangeHeader, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+id+"/stream", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestStreamServesRequestedRange(t *testing.T) {
	body := make([]byte, 1000)
	for i := range body {
		body[i] = byte(i % 251)
	}
	engine, id := newStreamTestRouter(t, 1_000_000, body)
	tenant := "tenant-a"
	token := signToken(t, "Editor", &tenant)

	rec := doStream(t, engine, id, "bytes=0-99", token)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 0-99/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "100", rec.Header().Get("Content-Length"))
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, body[:100], rec.Body.Bytes())
}

func TestStreamRequiresRangeHeader(t *testing.T) {
	engine, id := newStreamTestRouter(t, 1_000_000, make([]byte, 100))
	tenant := "tenant-a"
	token := signToken(t, "Editor", &tenant)

	rec := doStream(t, engine, id, "", token)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamOpenEndedRangeIsChunkCapped(t *testing.T) {
	body := make([]byte, 5000)
	engine, id := newStreamTestRouter(t, 1024, body)
	tenant := "tenant-a"
	token := signToken(t, "Editor", &tenant)

	rec := doStream(t, engine, id, "bytes=100-", token)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 100-1123/5000", rec.Header().Get("Content-Range"))
	assert.Equal(t, 1024, rec.Body.Len())
}

func TestStreamClampsEndPastFile(t *testing.T) {
	engine, id := newStreamTestRouter(t, 1_000_000, make([]byte, 500))
	tenant := "tenant-a"
	token := signToken(t, "Editor", &tenant)

	rec := doStream(t, engine, id, "bytes=400-9999", token)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 400-499/500", rec.Header().Get("Content-Range"))
	assert.Equal(t, 100, rec.Body.Len())
}

func TestStreamStartPastFileIsUnsatisfiable(t *testing.T) {
	engine, id := newStreamTestRouter(t, 1_000_000, make([]byte, 500))
	tenant := "tenant-a"
	token := signToken(t, "Editor", &tenant)

	rec := doStream(t, engine, id, "bytes=500-600", token)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */500", rec.Header().Get("Content-Range"))
}

func TestStreamOtherTenantSeesNotFound(t *testing.T) {
	engine, id := newStreamTestRouter(t, 1_000_000, make([]byte, 500))
	other := "tenant-b"
	token := signToken(t, "Editor", &other)

	rec := doStream(t, engine, id, "bytes=0-99", token)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamRejectsMissingToken(t *testing.T) {
	engine, id := newStreamTestRouter(t, 1_000_000, make([]byte, 500))

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+id+"/stream", nil)
	req.Header.Set("Range", "bytes=0-99")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		name      string
		header    string
		size      int64
		chunk     int64
		wantStart int64
		wantEnd   int64
		wantErr   platformerrors.ErrorType
	}{
		{name: "explicit range", header: "bytes=0-9", size: 100, chunk: 50, wantStart: 0, wantEnd: 9},
		{name: "open ended capped", header: "bytes=10-", size: 1000, chunk: 100, wantStart: 10, wantEnd: 109},
		{name: "open ended near eof", header: "bytes=950-", size: 1000, chunk: 100, wantStart: 950, wantEnd: 999},
		{name: "end clamped", header: "bytes=0-5000", size: 100, chunk: 50, wantStart: 0, wantEnd: 99},
		{name: "missing header", header: "", size: 100, chunk: 50, wantErr: platformerrors.ErrorTypeValidation},
		{name: "not bytes", header: "chapters=1-2", size: 100, chunk: 50, wantErr: platformerrors.ErrorTypeValidation},
		{name: "garbage start", header: "bytes=abc-10", size: 100, chunk: 50, wantErr: platformerrors.ErrorTypeValidation},
		{name: "end before start", header: "bytes=50-10", size: 100, chunk: 50, wantErr: platformerrors.ErrorTypeValidation},
		{name: "start at eof", header: "bytes=100-", size: 100, chunk: 50, wantErr: platformerrors.ErrorTypeRangeNotSatisfiable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng, err := parseRange(tc.header, tc.size, tc.chunk)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.True(t, platformerrors.IsErrorType(err, tc.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStart, rng.start)
			assert.Equal(t, tc.wantEnd, rng.end)
			assert.Equal(t, tc.wantEnd-tc.wantStart+1, rng.length)
		})
	}
}
