package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)}) })
	r.POST("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDGeneratesAndReuses(t *testing.T) {
	r := newEngine(RequestID())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Contains(t, w.Body.String(), generated)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "client-abc-123")
	w = serve(r, req)
	assert.Equal(t, "client-abc-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "has space")
	w = serve(r, req)
	assert.NotEqual(t, "has space", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, metrics.NewMetrics(), quietLogger())
	defer rl.Stop()
	r := newEngine(rl.Middleware())

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Too many requests. Please try again later.", body["message"])
	assert.Equal(t, 60.0, body["retry_after"])
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, metrics.NewMetrics(), quietLogger())
	defer rl.Stop()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allowRequest("1.2.3.4"))
	assert.False(t, rl.allowRequest("1.2.3.4"))
	assert.True(t, rl.allowRequest("5.6.7.8"), "limits are per client")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.allowRequest("1.2.3.4"))

	now = now.Add(3 * time.Minute)
	rl.evictIdle()
	assert.Equal(t, 0, rl.GetStats()["total_clients"])
}

func TestRecoveryReturnsJSONAndNotifies(t *testing.T) {
	var notified interface{}
	r := newEngine(RequestID(), Recovery(quietLogger(), func(c *gin.Context, err interface{}) { notified = err }))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Equal(t, "boom", notified)
}

func TestRecoveryWithoutNotifier(t *testing.T) {
	r := newEngine(Recovery(quietLogger(), nil))
	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		header  string
		want    int
		message string
	}{
		{"disabled without token", "", "Bearer anything", http.StatusServiceUnavailable, "Admin API is disabled"},
		{"missing header", "s3cret", "", http.StatusUnauthorized, "Unauthorized"},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized, "Unauthorized"},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized, "Unauthorized"},
		{"valid token", "s3cret", "Bearer s3cret", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(AdminAuth(tt.token, quietLogger()))
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.message != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.message, body["message"])
			}
		})
	}
}

func TestCORSPreflightAndActual(t *testing.T) {
	r := newEngine(CORS([]string{"https://ucethacks.example"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://ucethacks.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ucethacks.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Origin", "https://ucethacks.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://ucethacks.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	w := serve(newEngine(Security(false), NoStore()), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	w = serve(newEngine(Security(true)), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestLoggerAndMetricsPassThrough(t *testing.T) {
	r := newEngine(RequestID(), StructuredLogger(quietLogger()), Metrics(metrics.NewMetrics()))
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil)).Code)
}
