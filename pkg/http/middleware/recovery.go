package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "RentPredict/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns handler panics into a 500 with the standard error body.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return RecoverWith(l, http.StatusText(http.StatusInternalServerError))
}

// RecoverWith turns handler panics into a 500 answering {"error": message}.
// Routes with a fixed failure payload install it ahead of the global Recover.
func RecoverWith(l *applogger.Logger, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					l.Error("panic recovered",
						applogger.Error(perr),
						applogger.String("path", c.Request().URL.Path),
						applogger.String("stack", string(debug.Stack())),
					)
					err = c.JSON(http.StatusInternalServerError, map[string]string{"error": message})
				}
			}()
			return next(c)
		}
	}
}
