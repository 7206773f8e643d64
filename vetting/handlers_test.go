package vetting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestHealth(t *testing.T) {
	router := NewRouter(nil, HandlerOptions{}, zap.NewNop())

	w := serve(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
}

func TestPreviewStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		detail string
	}{
		{"missing url", `{}`, nil, http.StatusBadRequest, "URL is required"},
		{"malformed body", `not json`, nil, http.StatusBadRequest, "URL is required"},
		{"invalid url", `{"url": "ftp://x"}`, fmt.Errorf("%w: unsupported scheme", ErrInvalidURL), http.StatusBadRequest, "invalid url: unsupported scheme"},
		{"navigation failure", `{"url": "down.test"}`, &NavigationError{URL: "https://down.test", Err: errors.New("timeout")}, http.StatusBadGateway, "Failed to load the URL"},
		{"unexpected", `{"url": "x.test"}`, errors.New("boom"), http.StatusInternalServerError, "Agent error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyze := func(context.Context, string) (*Report, error) { return nil, tt.err }
			router := NewRouter(analyze, HandlerOptions{}, zap.NewNop())

			w := serve(t, router, http.MethodPost, "/api/preview", tt.body, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.detail, detail(t, w))
		})
	}
}

func TestPreviewReturnsReport(t *testing.T) {
	var got string
	analyze := func(_ context.Context, raw string) (*Report, error) {
		got = raw
		return &Report{OK: true, FinalURL: "https://example.com/", Risk: FinalVerdict{Score: 5, Tier: TierLow, Reasons: []string{}}}, nil
	}
	router := NewRouter(analyze, HandlerOptions{}, zap.NewNop())

	w := serve(t, router, http.MethodPost, "/api/preview", `{"url": "example.com"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "example.com", got)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "https://example.com/", body["finalUrl"])
}

func TestCORS(t *testing.T) {
	router := NewRouter(nil, HandlerOptions{AllowedOrigins: []string{"http://localhost:5173"}}, zap.NewNop())

	w := serve(t, router, http.MethodOptions, "/api/preview", "", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(t, router, http.MethodPost, "/api/preview", `{"url": ""}`, map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(t, router, http.MethodGet, "/health", "", map[string]string{"Origin": "http://evil.test"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSAnyOrigin(t *testing.T) {
	router := NewRouter(nil, HandlerOptions{AllowedOrigins: []string{"*"}}, zap.NewNop())

	w := serve(t, router, http.MethodGet, "/health", "", map[string]string{"Origin": "http://anywhere.test"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSInvalidOriginsDisableCrossOrigin(t *testing.T) {
	router := NewRouter(nil, HandlerOptions{AllowedOrigins: []string{"localhost:5173"}}, zap.NewNop())

	w := serve(t, router, http.MethodGet, "/health", "", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	analyze := func(context.Context, string) (*Report, error) { return &Report{OK: true}, nil }
	router := NewRouter(analyze, HandlerOptions{RateLimit: 0.001, RateBurst: 1}, zap.NewNop())

	first := serve(t, router, http.MethodPost, "/api/preview", `{"url": "a.test"}`, nil)
	second := serve(t, router, http.MethodPost, "/api/preview", `{"url": "a.test"}`, nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// health is not limited
	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/health", "", nil).Code)
}
