package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"RentPredict/internal/domain/models"
	"RentPredict/internal/usecase"
	xhttp "RentPredict/pkg/http"
	"RentPredict/pkg/http/middleware"
	xlogger "RentPredict/pkg/logger"
)

// MsgPredictionFailed is the only failure text a caller ever sees.
const MsgPredictionFailed = "Failed to fetch prediction"

// Predictor runs one rent prediction.
type Predictor interface {
	Predict(ctx context.Context, req *models.RentPredictionRequest) (models.RentPrediction, error)
}

// PredictEchoHandler serves the prediction bridge endpoint.
type PredictEchoHandler struct {
	logger     *xlogger.Logger
	predictor  Predictor
	middleware []echo.MiddlewareFunc
}

func NewPredictEchoHandler(logger *xlogger.Logger, predictor Predictor, mw ...echo.MiddlewareFunc) *PredictEchoHandler {
	return &PredictEchoHandler{logger: logger, predictor: predictor, middleware: mw}
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	mw := append([]echo.MiddlewareFunc{middleware.RecoverWith(h.logger, MsgPredictionFailed)}, h.middleware...)
	g.POST("/predict", h.Predict, mw...)
}

// Predict handles POST /api/predict. Every failure, including a body that
// does not decode or validate, answers 500 with MsgPredictionFailed.
func (h *PredictEchoHandler) Predict(c echo.Context) error {
	req := &models.RentPredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.logger.Warn("Prediction API error",
			xlogger.String("reason", "invalid request"),
			xlogger.Any("fields", xhttp.FieldMessages(verr)),
		)
		return h.fail(c)
	}

	res, err := h.predictor.Predict(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRequest) {
			h.logger.Warn("Prediction API error", xlogger.Error(err))
		} else {
			h.logger.Error("Prediction API error", xlogger.Error(err))
		}
		return h.fail(c)
	}
	return xhttp.SuccessResponse(c, res.Tuple())
}

func (h *PredictEchoHandler) fail(c echo.Context) error {
	return xhttp.ErrorResponse(c, http.StatusInternalServerError, MsgPredictionFailed)
}
