package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RentPredict/internal/domain/models"
	"RentPredict/internal/usecase"
	xlogger "RentPredict/pkg/logger"
)

type stubPredictor struct {
	calls int
	got   *models.RentPredictionRequest
	res   models.RentPrediction
	err   error
}

func (s *stubPredictor) Predict(_ context.Context, req *models.RentPredictionRequest) (models.RentPrediction, error) {
	s.calls++
	s.got = req
	return s.res, s.err
}

const validBody = `{
	"propertySubject": "AL",
	"unitType": "Studio",
	"unitStatus": "Vacant",
	"occupiedUnits": 0,
	"vacantUnits": 4,
	"clientBaseRent": 950,
	"clientRentOfCare": 40,
	"marketBaseRent": 1000,
	"marketRentOfCare": 45,
	"desiredOccupancy": 95
}`

func serve(t *testing.T, h *PredictEchoHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPredictSuccessReturnsDataTuple(t *testing.T) {
	p := &stubPredictor{res: models.RentPrediction{
		Info: "Studio in AL", SuggestedBaseRent: "980", SuggestedRentOfCare: "42", Recommendation: "Hold",
	}}
	rec := serve(t, NewPredictEchoHandler(xlogger.Nop(), p), validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":["Studio in AL","980","42","Hold"]}`, rec.Body.String())
	require.Equal(t, 1, p.calls)
	assert.Equal(t, 4.0, *p.got.VacantUnits)
	assert.Equal(t, "Vacant", p.got.UnitStatus)
}

func TestPredictFailureHidesUnderlyingError(t *testing.T) {
	var logs bytes.Buffer
	p := &stubPredictor{err: fmt.Errorf("%w: upstream 503 token hf_secret", usecase.ErrPredictionFailed)}
	rec := serve(t, NewPredictEchoHandler(xlogger.NewWriter(&logs, "info"), p), validBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch prediction"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "503")
	assert.Contains(t, logs.String(), "Prediction API error")
}

func TestPredictInvalidBodyAnswersFixedFailure(t *testing.T) {
	cases := map[string]string{
		"not json":        `not json`,
		"malformed json":  `{"propertySubject":`,
		"missing fields":  `{"propertySubject":"AL"}`,
		"bad enum":        strings.Replace(validBody, `"Studio"`, `"Loft"`, 1),
		"negative number": strings.Replace(validBody, `"vacantUnits": 4`, `"vacantUnits": -1`, 1),
		"occupancy > 100": strings.Replace(validBody, `"desiredOccupancy": 95`, `"desiredOccupancy": 101`, 1),
		"string number":   strings.Replace(validBody, `"vacantUnits": 4`, `"vacantUnits": "4"`, 1),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			p := &stubPredictor{}
			rec := serve(t, NewPredictEchoHandler(xlogger.NewWriter(&logs, "info"), p), body)

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Failed to fetch prediction"}`, rec.Body.String())
			assert.Zero(t, p.calls)
			assert.Contains(t, logs.String(), "Prediction API error")
		})
	}
}

func TestPredictRequestErrorFromUsecase(t *testing.T) {
	p := &stubPredictor{err: fmt.Errorf("%w: field vacantUnits is missing", usecase.ErrInvalidRequest)}
	rec := serve(t, NewPredictEchoHandler(xlogger.Nop(), p), validBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch prediction"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "vacantUnits")
}

type panicPredictor struct{}

func (panicPredictor) Predict(context.Context, *models.RentPredictionRequest) (models.RentPrediction, error) {
	panic("index out of range [3] with length 2")
}

func TestPredictPanicAnswersFixedFailure(t *testing.T) {
	rec := serve(t, NewPredictEchoHandler(xlogger.Nop(), panicPredictor{}), validBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch prediction"}`, rec.Body.String())
}

func TestPredictRouteMiddlewareRuns(t *testing.T) {
	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "slow down"})
		}
	}
	p := &stubPredictor{err: errors.New("unused")}
	rec := serve(t, NewPredictEchoHandler(xlogger.Nop(), p, deny), validBody)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Zero(t, p.calls)
}
