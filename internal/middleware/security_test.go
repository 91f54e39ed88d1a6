package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func serveWithSecurity(cfg SecurityHeadersConfig) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_APIDefaults(t *testing.T) {
	w := serveWithSecurity(APISecurityHeadersConfig())

	checks := map[string]string{
		"Strict-Transport-Security":          "max-age=31536000; includeSubDomains",
		"X-Frame-Options":                    "DENY",
		"X-Content-Type-Options":             "nosniff",
		"Content-Security-Policy":            "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":                    "no-referrer",
		"X-Permitted-Cross-Domain-Policies":  "none",
		"Cross-Origin-Opener-Policy":         "same-origin",
		"Cross-Origin-Resource-Policy":       "same-origin",
	}
	for header, want := range checks {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestSecurityHeaders_HSTSDisabled(t *testing.T) {
	cfg := APISecurityHeadersConfig()
	cfg.EnableHSTS = false
	w := serveWithSecurity(cfg)

	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q, want unset", got)
	}
}

func TestSecurityHeaders_HSTSWithoutSubdomains(t *testing.T) {
	cfg := APISecurityHeadersConfig()
	cfg.HSTSIncludeSubdomains = false
	w := serveWithSecurity(cfg)

	got := w.Header().Get("Strict-Transport-Security")
	if strings.Contains(got, "includeSubDomains") {
		t.Errorf("Strict-Transport-Security = %q, want no includeSubDomains", got)
	}
}

func TestSecurityHeaders_EmptyOptionalValuesOmitted(t *testing.T) {
	w := serveWithSecurity(SecurityHeadersConfig{})

	for _, header := range []string{
		"Strict-Transport-Security",
		"X-Frame-Options",
		"X-Content-Type-Options",
		"Content-Security-Policy",
		"Referrer-Policy",
		"Permissions-Policy",
	} {
		if got := w.Header().Get(header); got != "" {
			t.Errorf("%s = %q, want unset for zero config", header, got)
		}
	}
}
