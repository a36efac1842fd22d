package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"challengebot/api/handlers"
	"challengebot/api/middleware"
	"challengebot/internal/challenge"
	"challengebot/internal/database"
	"challengebot/internal/metrics"
	"challengebot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubStats struct{}

func (stubStats) GetStats(ctx context.Context) (*challenge.Stats, error) {
	return &challenge.Stats{TotalUsers: 1, ActiveUsers: 1, PendingToday: 1}, nil
}

const webhookSecret = "route-secret"

type stubWebhook struct{ calls int }

func (s *stubWebhook) HandleWebhook(ctx context.Context, webhookData []byte) error {
	s.calls++
	return nil
}

func createTestRouter(t *testing.T, webhook *stubWebhook) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	registry := prometheus.NewRegistry()
	deps := Dependencies{
		DB:       db,
		Logger:   &logger.Logger{SugaredLogger: zaptest.NewLogger(t).Sugar()},
		Stats:    stubStats{},
		Metrics:  metrics.New(registry),
		Gatherer: registry,
	}
	if webhook != nil {
		deps.Webhook = webhook
		deps.WebhookSecret = webhookSecret
	}

	router := gin.New()
	SetupRoutes(router, deps)
	return router, registry
}

func TestSetupRoutes_Endpoints(t *testing.T) {
	router, _ := createTestRouter(t, &stubWebhook{})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/stats", http.StatusOK},
		{http.MethodPost, "/api/v1/telegram/webhook", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"update_id":1}`))
			req.Header.Set(handlers.SecretTokenHeader, webhookSecret)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSetupRoutes_WebhookOnlyWhenConfigured(t *testing.T) {
	router, _ := createTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/telegram/webhook", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRoutes_WebhookDispatch(t *testing.T) {
	webhook := &stubWebhook{}
	router, _ := createTestRouter(t, webhook)

	send := func(secret string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/telegram/webhook", strings.NewReader(`{"update_id":1}`))
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set(handlers.SecretTokenHeader, secret)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send(webhookSecret))
	assert.Equal(t, 1, webhook.calls)

	assert.Equal(t, http.StatusUnauthorized, send(""))
	assert.Equal(t, http.StatusUnauthorized, send("guessed"))
	assert.Equal(t, 1, webhook.calls, "unauthenticated updates are not dispatched")
}

func TestSetupRoutes_RequestID(t *testing.T) {
	router, _ := createTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestSetupRoutes_MetricsExposition(t *testing.T) {
	router, registry := createTestRouter(t, nil)

	for _, path := range []string{"/health", "/api/v1/stats", "/nonexistent"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	count, err := testutil.GatherAndCount(registry, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="GET",path="/api/v1/stats",status="OK"} 1
http_requests_total{method="GET",path="/health",status="OK"} 1
http_requests_total{method="GET",path="unmatched",status="Not Found"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "http_requests_total"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "challengebot_reminders_sent_total")
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}
