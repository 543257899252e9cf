package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/infrastructure/auth"
	"vidvault/internal/interfaces/ws"
)

// mp4Bytes returns a minimal buffer the mime sniffer accepts as video/mp4.
func mp4Bytes() []byte {
	header := []byte{0x00, 0x00, 0x00, 0x18}
	header = append(header, []byte("ftypisom")...)
	header = append(header, []byte{0x00, 0x00, 0x02, 0x00}...)
	header = append(header, []byte("isomiso2avc1mp41")...)
	return append(header, make([]byte, 64)...)
}

func newVideoTestRouter(t *testing.T, repo *stubRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		UploadDir:        filepath.Join(t.TempDir(), "uploads"),
		ScratchDir:       t.TempDir(),
		MaxUploadBytes:   10 << 20,
		StreamChunkBytes: 1_000_000,
		JWTSecret:        testSecret,
	}
	service := asset.NewService(cfg, repo, stubStorage{}, stubProber{}, stubRunner{}, zerolog.Nop())
	validator := auth.NewValidator(cfg, zerolog.Nop())
	provider := NewProvider(cfg, service, ws.NewHub(zerolog.Nop()), zerolog.Nop())

	engine := gin.New()
	group := engine.Group("/v1", validator.Middleware())
	mutate := auth.RequireRoles(asset.RoleAdmin, asset.RoleEditor)
	group.POST("/videos", mutate, provider.Video.Upload)
	group.GET("/videos", provider.Video.List)
	group.GET("/videos/:id", provider.Video.Get)
	group.DELETE("/videos/:id", mutate, provider.Video.Delete)
	return engine
}

func multipartUpload(t *testing.T, fileBody []byte, title string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("video", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write(fileBody)
	require.NoError(t, err)
	if title != "" {
		require.NoError(t, writer.WriteField("title", title))
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestUploadCreatesPendingAsset(t *testing.T) {
	repo := &stubRepository{assets: map[string]*asset.MediaAsset{}}
	engine := newVideoTestRouter(t, repo)
	tenant := "tenant-a"
	token := signToken(t, "Editor", &tenant)

	body, contentType := multipartUpload(t, mp4Bytes(), "My clip")
	req := httptest.NewRequest(http.MethodPost, "/v1/videos", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["id"], "vid_")
	assert.Equal(t, "My clip", resp["title"])
	assert.Equal(t, "Pending", resp["status"])
	assert.Equal(t, "Pending", resp["sensitivity_status"])
	assert.Equal(t, float64(0), resp["analysis_progress"])
	assert.Equal(t, "tenant-a", resp["tenant_id"])
}

func TestUploadRejectsViewerRole(t *testing.T) {
	repo := &stubRepository{assets: map[string]*asset.MediaAsset{}}
	engine := newVideoTestRouter(t, repo)
	tenant := "tenant-a"
	token := signToken(t, "Viewer", &tenant)

	body, contentType := multipartUpload(t, mp4Bytes(), "")
	req := httptest.NewRequest(http.MethodPost, "/v1/videos", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.assets)
}

func TestUploadRejectsNonVideoFile(t *testing.T) {
	repo := &stubRepository{assets: map[string]*asset.MediaAsset{}}
	engine := newVideoTestRouter(t, repo)
	tenant := "tenant-a"
	token := signToken(t, "Editor", &tenant)

	body, contentType := multipartUpload(t, []byte("plain text, not a video"), "")
	req := httptest.NewRequest(http.MethodPost, "/v1/videos", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.assets)
}

func TestListScopesByTenant(t *testing.T) {
	tenantA, tenantB := "tenant-a", "tenant-b"
	repo := &stubRepository{assets: map[string]*asset.MediaAsset{
		"vid_a": {ID: "vid_a", TenantID: &tenantA},
		"vid_b": {ID: "vid_b", TenantID: &tenantB},
	}}
	engine := newVideoTestRouter(t, repo)
	token := signToken(t, "Editor", &tenantA)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Videos []struct {
			ID string `json:"id"`
		} `json:"videos"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "vid_a", resp.Videos[0].ID)
}

func TestListAdminSeesAllTenants(t *testing.T) {
	tenantA, tenantB := "tenant-a", "tenant-b"
	repo := &stubRepository{assets: map[string]*asset.MediaAsset{
		"vid_a": {ID: "vid_a", TenantID: &tenantA},
		"vid_b": {ID: "vid_b", TenantID: &tenantB},
	}}
	engine := newVideoTestRouter(t, repo)
	token := signToken(t, "Admin", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestDeleteRemovesAsset(t *testing.T) {
	tenant := "tenant-a"
	repo := &stubRepository{assets: map[string]*asset.MediaAsset{
		"vid_x": {ID: "vid_x", TenantID: &tenant, Path: filepath.Join(t.TempDir(), "gone.mp4")},
	}}
	engine := newVideoTestRouter(t, repo)
	token := signToken(t, "Editor", &tenant)

	req := httptest.NewRequest(http.MethodDelete, "/v1/videos/vid_x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.assets)
}

func TestGetOtherTenantIsNotFound(t *testing.T) {
	tenantA, tenantB := "tenant-a", "tenant-b"
	repo := &stubRepository{assets: map[string]*asset.MediaAsset{
		"vid_a": {ID: "vid_a", TenantID: &tenantA},
	}}
	engine := newVideoTestRouter(t, repo)
	token := signToken(t, "Editor", &tenantB)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/vid_a", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
