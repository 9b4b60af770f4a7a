package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryapi/internal/errors"
	"libraryapi/internal/metrics"
)

// ErrorHandler renders every failure as an errors.ErrorResponse. Domain errors are
// mapped by kind; echo errors keep their status.
func ErrorHandler(m *metrics.Metrics) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body, kind := render(err)
		m.Failure(kind)
		if status >= http.StatusInternalServerError {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			c.Logger().Error(err)
		}
	}
}

func render(err error) (int, errors.ErrorResponse, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		body := errors.ErrorResponse{Code: statusCode(he.Code)}
		switch msg := he.Message.(type) {
		case errors.ErrorResponse:
			body = msg
		case string:
			body.Error = msg
		default:
			body.Error = fmt.Sprint(msg)
		}
		body.Success = false
		return he.Code, body, statusKind(he.Code)
	}

	httpErr := errors.MapErrorToHTTP(err)
	return httpErr.StatusCode, httpErr.ToErrorResponse(), errors.KindOf(err).String()
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "HTTP_ERROR"
	}
}

func statusKind(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "auth"
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return "routing"
	default:
		if status >= http.StatusInternalServerError {
			return "storage"
		}
		return "request"
	}
}
