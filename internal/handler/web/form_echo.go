package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"

	"RentPredict/internal/domain/models"
	"RentPredict/internal/form"
	xlogger "RentPredict/pkg/logger"
)

const (
	pageTemplate = "index.tpl"
	pageTitle    = "Rental Price Prediction Tool"
	apiEndpoint  = "/api/predict"

	MsgTooManyRequests = "Too many requests. Please try again shortly."
)

type fieldView struct {
	Name    string
	Label   string
	IsEnum  bool
	Options []string
	Value   string
	Error   string
}

// FormEchoHandler serves the form page and its no-script fallback.
type FormEchoHandler struct {
	logger     *xlogger.Logger
	renderer   *Renderer
	submitter  form.Submitter
	messages   string
	middleware []echo.MiddlewareFunc
}

func NewFormEchoHandler(logger *xlogger.Logger, renderer *Renderer, submitter form.Submitter) *FormEchoHandler {
	b, _ := json.Marshal(map[string]string{
		"required":     form.MsgRequired,
		"notANumber":   form.MsgNotANumber,
		"negative":     form.MsgNegative,
		"outOfPercent": form.MsgOutOfPercent,
		"failed":       form.MsgPredictionFailed,
	})
	return &FormEchoHandler{logger: logger, renderer: renderer, submitter: submitter, messages: string(b)}
}

// Use adds middleware to the submit route. Call it before RegisterRoutes.
func (h *FormEchoHandler) Use(mw ...echo.MiddlewareFunc) {
	h.middleware = append(h.middleware, mw...)
}

func (h *FormEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Page)
	e.POST("/", h.Submit, h.middleware...)
	e.StaticFS("/static", Static())
}

// Page renders the form with defaults.
func (h *FormEchoHandler) Page(c echo.Context) error {
	return h.render(c, http.StatusOK, form.NewValues(), nil, nil, "")
}

// Submit handles a form-encoded post from a browser without scripts.
func (h *FormEchoHandler) Submit(c echo.Context) error {
	values := postedValues(c)
	ctl := form.NewController(h.submitter)
	errs, err := ctl.Submit(c.Request().Context(), values)
	switch {
	case errors.Is(err, form.ErrInvalid):
		return h.render(c, http.StatusBadRequest, values, errs, nil, "")
	case err != nil:
		h.logger.Error("Prediction API error", xlogger.Error(err))
		msg, _ := ctl.Failure()
		return h.render(c, http.StatusInternalServerError, values, nil, nil, msg)
	}

	res, _ := ctl.Result()
	return h.render(c, http.StatusOK, values, nil, &res, "")
}

// Rejected re-renders the posted form with a failure panel and 429. It is
// the reject handler of the submit route's rate limiter.
func (h *FormEchoHandler) Rejected(c echo.Context) error {
	return h.render(c, http.StatusTooManyRequests, postedValues(c), nil, nil, MsgTooManyRequests)
}

func postedValues(c echo.Context) form.Values {
	values := form.Values{}
	for _, f := range models.Fields {
		values[f.Name] = c.FormValue(f.Name)
	}
	return values
}

func (h *FormEchoHandler) render(c echo.Context, status int, values form.Values, errs form.Errors, res *models.RentPrediction, failure string) error {
	fields := make([]fieldView, 0, len(models.Fields))
	for _, f := range models.Fields {
		fields = append(fields, fieldView{
			Name:    f.Name,
			Label:   f.Label,
			IsEnum:  f.Kind == models.KindEnum,
			Options: f.Options,
			Value:   values[f.Name],
			Error:   errs[f.Name],
		})
	}

	var result models.RentPrediction
	if res != nil {
		result = *res
	}

	body, err := h.renderer.Render(pageTemplate, pongo2.Context{
		"title":          pageTitle,
		"endpoint":       apiEndpoint,
		"fields":         fields,
		"occupancyField": models.FieldDesiredOccupancy,
		"result":         result,
		"showResult":     res != nil,
		"failure":        failure,
		"showFailure":    failure != "",
		"messages":       h.messages,
	})
	if err != nil {
		h.logger.Error("render page failed", xlogger.Error(err))
		return err
	}
	return c.HTMLBlob(status, body)
}
