package ratelimit

import (
	"github.com/labstack/echo/v4"

	xhttp "RentPredict/pkg/http"
	xlogger "RentPredict/pkg/logger"
)

const MsgTooManyRequests = "Too many requests"

// Option customises Middleware.
type Option func(*options)

type options struct {
	reject echo.HandlerFunc
}

// WithRejectHandler replaces the JSON 429 body, e.g. to re-render a page.
// The handler is expected to answer 429 itself.
func WithRejectHandler(h echo.HandlerFunc) Option {
	return func(o *options) { o.reject = h }
}

func rejectJSON(c echo.Context) error {
	return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(MsgTooManyRequests))
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
// Limiter errors let the request through. Routes built from the same Limiter
// share one budget per client.
func Middleware(l Limiter, logger *xlogger.Logger, opts ...Option) echo.MiddlewareFunc {
	o := options{reject: rejectJSON}
	for _, opt := range opts {
		opt(&o)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := l.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				logger.Warn("rate limiter unavailable", xlogger.Error(err))
				return next(c)
			}
			if !ok {
				return o.reject(c)
			}
			return next(c)
		}
	}
}
