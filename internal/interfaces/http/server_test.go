package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func healthRequest(t *testing.T, healthFn HealthFunc) *httptest.ResponseRecorder {
	t.Helper()

	server := NewServer(DefaultServerConfig(), Services{}, nil, healthFn, nopLogger{})

	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck_ReportsComponentHealth(t *testing.T) {
	rec := healthRequest(t, func() (bool, interface{}) {
		return true, map[string]string{"database": "ok"}
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "database")
}

func TestHealthCheck_UnhealthyReturns503(t *testing.T) {
	rec := healthRequest(t, func() (bool, interface{}) {
		return false, map[string]string{"database": "ping failed"}
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthCheck_NoHealthFuncFallsBackToStatic(t *testing.T) {
	rec := healthRequest(t, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
