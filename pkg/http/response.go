package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes {"data": data} with the given status.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, DataBody{Data: data})
}

// SuccessResponse writes a 200 data response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// ErrorResponse writes {"error": message} with the given status.
func ErrorResponse(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, ErrorBody{Error: message})
}

// ValidationResponse writes a 400 with field-scoped messages.
func ValidationResponse(c echo.Context, message string, errs []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ErrorBody{
		Error:  message,
		Fields: FieldMessages(errs),
	})
}

// AppErrorResponse writes application error response. Anything that is not an
// *AppError becomes a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.JSON(appErr.Status, ErrorBody{Error: appErr.Message, Fields: appErr.Fields})
	}
	return ErrorResponse(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
