package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrine-app/vitrine-backend/internal/audit"
	"github.com/vitrine-app/vitrine-backend/internal/auth"
	"github.com/vitrine-app/vitrine-backend/internal/config"
	"github.com/vitrine-app/vitrine-backend/internal/storage/local"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires a full router over temp-dir storage and audit trail.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.Audit.LogFailedRequests = true
	cfg.Uploads.MaxMultipartMemory = 8 << 20
	cfg.Security.RateLimiting.Enabled = false

	auditDir := t.TempDir()
	writer, err := audit.NewWriter(auditDir, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	store, err := local.New(&config.LocalStorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	router, bg := NewRouter(cfg, writer, audit.NewLogger(writer), audit.NewReader(auditDir), store)
	t.Cleanup(bg.Shutdown)
	return router
}

func bearerFor(t *testing.T, role string) string {
	t.Helper()
	t.Setenv("VTR_JWT_SECRET", strings.Repeat("r", 32))
	token, err := auth.GenerateJWT("u-1", "user@example.fr", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRouter_ReadyChecksDependencies(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready":true`)
}

func TestRouter_UploadsRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/image", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs", nil)
	req.Header.Set("Authorization", bearerFor(t, auth.RoleSeller))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_AdminCanQueryAuditLogs(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs", nil)
	req.Header.Set("Authorization", bearerFor(t, auth.RoleAdmin))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"records"`)
}

func TestRouter_ResponsesCarrySecurityHeaders(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_UnknownRouteReturns404(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
