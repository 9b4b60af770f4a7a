package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryapi/internal/service"
)

// GenreHandler handles genre endpoints.
type GenreHandler struct {
	svc service.GenreService
}

// NewGenreHandler creates a new genre handler.
func NewGenreHandler(svc service.GenreService) *GenreHandler {
	return &GenreHandler{svc: svc}
}

// ListGenres godoc
// @Summary List genres
// @Tags genres
// @Produce json
// @Success 200 {object} Response{data=[]model.Genre}
// @Router /genres [get]
func (h *GenreHandler) ListGenres(c echo.Context) error {
	genres, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, genres)
}

// GetGenre godoc
// @Summary Get genre by id
// @Tags genres
// @Produce json
// @Param id path int true "Genre ID"
// @Success 200 {object} Response{data=model.Genre}
// @Failure 404 {object} errors.ErrorResponse
// @Router /genres/{id} [get]
func (h *GenreHandler) GetGenre(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	genre, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", genre)
}

// CreateGenre godoc
// @Summary Create genre
// @Description Names are unique ignoring case and stored with a capital first letter.
// @Tags genres
// @Accept json
// @Produce json
// @Param genre body service.GenreInput true "Genre payload"
// @Success 201 {object} Response{data=model.Genre}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /genres [post]
func (h *GenreHandler) CreateGenre(c echo.Context) error {
	var in service.GenreInput
	if err := bind(c, &in); err != nil {
		return err
	}
	genre, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Genre created successfully", genre)
}

// UpdateGenre godoc
// @Summary Update genre
// @Tags genres
// @Accept json
// @Produce json
// @Param id path int true "Genre ID"
// @Param genre body service.GenreInput true "Fields to change"
// @Success 200 {object} Response{data=model.Genre}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /genres/{id} [put]
func (h *GenreHandler) UpdateGenre(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in service.GenreInput
	if err := bind(c, &in); err != nil {
		return err
	}
	genre, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Genre updated successfully", genre)
}

// DeleteGenre godoc
// @Summary Delete genre
// @Tags genres
// @Produce json
// @Param id path int true "Genre ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /genres/{id} [delete]
func (h *GenreHandler) DeleteGenre(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Genre deleted successfully", nil)
}
