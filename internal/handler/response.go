package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"libraryapi/internal/errors"
)

// Response is the success envelope of every API endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
	Count   *int        `json:"count,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondList[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return c.JSON(http.StatusOK, Response{Success: true, Data: items, Count: &n})
}

// paramID parses a positive integer path parameter.
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Validation("Invalid " + name + ".")
	}
	return uint(id), nil
}

// bind decodes the request body into dest.
func bind(c echo.Context, dest interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dest); err != nil {
		return errors.Validation("Invalid request body.")
	}
	return nil
}
