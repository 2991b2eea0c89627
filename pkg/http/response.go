package http

import (
	"errors"
	"fmt"
	"net/http"

	applogger "VolScan/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every /api response.
type Envelope struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// Page wraps list results.
type Page struct {
	Rows  interface{} `json:"rows"`
	Total int         `json:"total"`
}

// FieldError describes one rejected request parameter.
type FieldError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_LTE"`
	Field   string                 `json:"field,omitempty" example:"limit"`
	Message string                 `json:"message,omitempty" example:"limit must be less than or equal to 1000"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// InvalidField builds a single-entry error list for a parameter the validator cannot check.
func InvalidField(field, format string, a ...interface{}) []FieldError {
	return []FieldError{{Code: "ERR_FORMAT", Field: field, Message: fmt.Sprintf(format, a...)}}
}

func Respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Status: status, Message: http.StatusText(status), Data: data})
}

func OK(c echo.Context, data interface{}) error {
	return Respond(c, http.StatusOK, data)
}

// List writes rows with their count.
func List(c echo.Context, rows interface{}, total int) error {
	return OK(c, Page{Rows: rows, Total: total})
}

func Invalid(c echo.Context, errs []FieldError) error {
	return Respond(c, http.StatusBadRequest, errs)
}

// ErrorHandler renders router and handler errors in the envelope.
// Errors that are not *echo.HTTPError become a logged 500.
func ErrorHandler(l *applogger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		} else {
			l.Error("unhandled api error", applogger.String("path", c.Path()), applogger.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = Respond(c, status, nil)
		}
		if err != nil {
			l.Warn("write error response", applogger.Error(err))
		}
	}
}
