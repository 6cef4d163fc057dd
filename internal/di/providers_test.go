package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RentPredict/internal/domain/models"
	internalrepo "RentPredict/internal/repository"
	"RentPredict/internal/services/gradio"
	"RentPredict/internal/usecase"
	"RentPredict/pkg/config"
	xlogger "RentPredict/pkg/logger"
	"RentPredict/pkg/metrics"
)

type countingModel struct {
	calls atomic.Int32
}

func (m *countingModel) Predict(context.Context, string, models.ModelParams, string) ([]json.RawMessage, error) {
	m.calls.Add(1)
	return []json.RawMessage{
		json.RawMessage(`"Studio in AL"`), json.RawMessage(`"980"`), json.RawMessage(`"42"`), json.RawMessage(`"Hold"`),
	}, nil
}

const apiBody = `{"propertySubject":"AL","unitType":"Studio","unitStatus":"Vacant","occupiedUnits":0,
"vacantUnits":4,"clientBaseRent":950,"clientRentOfCare":40,"marketBaseRent":1000,"marketRentOfCare":45,"desiredOccupancy":95}`

func pageForm() url.Values {
	return url.Values{
		"propertySubject": {"AL"}, "unitType": {"Studio"}, "unitStatus": {"Vacant"},
		"occupiedUnits": {"0"}, "vacantUnits": {"4"}, "clientBaseRent": {"950"}, "clientRentOfCare": {"40"},
		"marketBaseRent": {"1000"}, "marketRentOfCare": {"45"}, "desiredOccupancy": {"95"},
	}
}

func TestRateLimitCoversEveryPredictionEntryPoint(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Backend = config.LimiterMemory
	cfg.RateLimit.Capacity = 1
	cfg.RateLimit.RefillPerSec = 0

	l := xlogger.Nop()
	model := &countingModel{}
	predictor := usecase.NewRentPredictor(cfg, model, gradio.NewEnvToken(cfg), internalrepo.NewNoopAuditSink(),
		metrics.NewWithRegistry(prometheus.NewRegistry()), l)
	t.Cleanup(predictor.Close)

	limiter := ProvideRateLimit(cfg, nil)
	require.NotNil(t, limiter)
	page, err := ProvideFormHandler(l, predictor, limiter)
	require.NoError(t, err)

	e := echo.New()
	ProvidePredictHandler(l, predictor, limiter).RegisterRoutes(e)
	page.RegisterRoutes(e)

	send := func(ip, path, contentType, body string) int {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, contentType)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1", "/api/predict", echo.MIMEApplicationJSON, apiBody))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1", "/", echo.MIMEApplicationForm, pageForm().Encode()))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1", "/api/predict", echo.MIMEApplicationJSON, apiBody))

	assert.Equal(t, http.StatusOK, send("10.0.0.2", "/", echo.MIMEApplicationForm, pageForm().Encode()))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.2", "/", echo.MIMEApplicationForm, pageForm().Encode()))

	assert.EqualValues(t, 2, model.calls.Load())
}

func TestRateLimitDisabledReturnsNoLimiter(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	assert.Nil(t, ProvideRateLimit(cfg, nil))
}

func TestInitializeAppWithDefaults(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Logging.Output = "stderr"

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)
	cleanup()
}
