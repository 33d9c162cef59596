package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"PlacementPortal/pkg/apperrors"
)

func runError(t *testing.T, logger *zap.Logger, development bool, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(logger, development)(func(c echo.Context) error {
		return Error(c, err)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestErrorRedactsCauseInProduction(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	cause := errors.New("dial tcp 10.0.0.1:27017: connection refused")

	rec := runError(t, zap.New(core), false, apperrors.Dependency(cause))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "connection refused")

	// The cause still lands in the log.
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "/users", entry.ContextMap()["path"])
	logged, _ := entry.ContextMap()["error"].(string)
	assert.Contains(t, logged, "connection refused")
}

func TestErrorDetailInDevelopment(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	cause := errors.New("dial tcp 10.0.0.1:27017: connection refused")

	rec := runError(t, zap.New(core), true, apperrors.Dependency(cause))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
	assert.Equal(t, 1, logs.Len())
}

func TestErrorWithoutMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, Error(c, apperrors.Dependency(errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestErrorDomainFailuresNotLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	rec := runError(t, zap.New(core), true, apperrors.NotFound("user not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
	assert.Zero(t, logs.Len())
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{-3, -1, 1, 20},
		{2, 50, 2, 50},
		{1, 101, 1, 20},
		{1, 100, 1, 100},
	}
	for _, tc := range cases {
		page, limit := NormalizePage(tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, page)
		assert.Equal(t, tc.wantLimit, limit)
	}
}
