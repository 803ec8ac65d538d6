package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		configured []string
		origin     string
	}{
		{nil, "http://localhost:5173"},
		{nil, "http://127.0.0.1:3000"},
		{[]string{"https://dashboard.example.edu"}, "https://dashboard.example.edu"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tc.configured))
			r.OPTIONS("/api/risk/scan", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/risk/scan", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.origin {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, tc.origin)
			}
		})
	}
}

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id: want=%q got=%q", "req-123", got)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace id header missing")
	}
}

func TestTraceContextReplacesUnsafeRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "bad id\twith spaces")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-Id")
	if got == "" || strings.Contains(got, " ") {
		t.Fatalf("request id: want generated id got=%q", got)
	}
	if trace := rec.Header().Get("X-Trace-Id"); trace != got {
		t.Fatalf("trace id without span: want=%q got=%q", got, trace)
	}
}

func TestSanitizeID(t *testing.T) {
	if sanitizeID(strings.Repeat("a", maxRequestIDLen+1)) != "" {
		t.Fatalf("sanitizeID: overlong id kept")
	}
	if got := sanitizeID("  abc-123 "); got != "abc-123" {
		t.Fatalf("sanitizeID: want=abc-123 got=%q", got)
	}
}
