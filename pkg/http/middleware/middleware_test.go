package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "RentPredict/pkg/logger"
)

func do(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRecoverAnswersStandardBody(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	e.Use(Recover(applogger.NewWriter(&logs, "info")))
	e.GET("/boom", func(echo.Context) error { panic("nil map write") })

	rec := do(e, http.MethodGet, "/boom")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "nil map write")
}

func TestRecoverWithRouteMessageWins(t *testing.T) {
	e := echo.New()
	e.Use(Recover(applogger.Nop()))
	e.POST("/api/predict", func(echo.Context) error {
		panic(errors.New("index out of range"))
	}, RecoverWith(applogger.Nop(), "Failed to fetch prediction"))

	rec := do(e, http.MethodPost, "/api/predict")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch prediction"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "index out of range")
}

func TestRequestLoggingRecordsFinalStatus(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	e.Use(RequestLogging(applogger.NewWriter(&logs, "info")))
	e.GET("/missing", func(echo.Context) error { return echo.ErrNotFound })

	rec := do(e, http.MethodGet, "/missing?x=1")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, logs.String(), "http request")
	assert.Contains(t, logs.String(), `"status":404`)
	assert.Contains(t, logs.String(), "/missing?x=1")
}

func TestMetricsCountsByRouteTemplate(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	e.Use(Metrics(applogger.NewWriter(&logs, "info"), time.Hour))
	e.GET("/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/fail", func(c echo.Context) error { return c.NoContent(http.StatusBadGateway) })

	ok := httpRequestsTotal.WithLabelValues("/items/:id", http.MethodGet, "204")
	failed := httpRequestsTotal.WithLabelValues("/fail", http.MethodGet, "502")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	do(e, http.MethodGet, "/items/1")
	do(e, http.MethodGet, "/items/2")
	do(e, http.MethodGet, "/fail")

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight.WithLabelValues("/items/:id", http.MethodGet)))
	assert.Contains(t, logs.String(), "http request failed")
}

func TestMetricsWarnsOnSlowRequests(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	e.Use(Metrics(applogger.NewWriter(&logs, "info"), time.Nanosecond))
	e.GET("/slow", func(c echo.Context) error {
		time.Sleep(time.Millisecond)
		return c.NoContent(http.StatusOK)
	})

	do(e, http.MethodGet, "/slow")
	assert.Contains(t, logs.String(), "http request slow")
}

func TestStatusClass(t *testing.T) {
	for code, want := range map[int]string{101: "1xx", 200: "2xx", 302: "3xx", 429: "4xx", 500: "5xx"} {
		assert.Equal(t, want, statusClass(code), "code %d", code)
	}
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowOrigins: []string{"https://rent.example"}, AllowMethods: []string{"GET", "POST"}}))
	e.POST("/api/predict", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set(echo.HeaderOrigin, "https://rent.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "https://rent.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET, POST", rec.Header().Get(echo.HeaderAccessControlAllowMethods))

	req = httptest.NewRequest(http.MethodPost, "/api/predict", nil)
	req.Header.Set(echo.HeaderOrigin, "https://other.example")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
