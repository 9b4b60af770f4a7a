package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryapi/internal/service"
)

// AuthorHandler handles author endpoints.
type AuthorHandler struct {
	svc service.AuthorService
}

// NewAuthorHandler creates a new author handler.
func NewAuthorHandler(svc service.AuthorService) *AuthorHandler {
	return &AuthorHandler{svc: svc}
}

// ListAuthors godoc
// @Summary List authors
// @Tags authors
// @Produce json
// @Success 200 {object} Response{data=[]model.Author}
// @Failure 500 {object} errors.ErrorResponse
// @Router /authors [get]
func (h *AuthorHandler) ListAuthors(c echo.Context) error {
	authors, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, authors)
}

// GetAuthor godoc
// @Summary Get author by id
// @Tags authors
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} Response{data=model.Author}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /authors/{id} [get]
func (h *AuthorHandler) GetAuthor(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	author, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", author)
}

// ListAuthorsByCountry godoc
// @Summary List authors from a country
// @Tags authors
// @Produce json
// @Param country path string true "Country, matched ignoring case"
// @Success 200 {object} Response{data=[]model.Author}
// @Router /authors/country/{country} [get]
func (h *AuthorHandler) ListAuthorsByCountry(c echo.Context) error {
	authors, err := h.svc.GetByCountry(c.Request().Context(), c.Param("country"))
	if err != nil {
		return err
	}
	return respondList(c, authors)
}

// CreateAuthor godoc
// @Summary Create author
// @Tags authors
// @Accept json
// @Produce json
// @Param author body service.AuthorInput true "Author payload"
// @Success 201 {object} Response{data=model.Author}
// @Failure 400 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /authors [post]
func (h *AuthorHandler) CreateAuthor(c echo.Context) error {
	var in service.AuthorInput
	if err := bind(c, &in); err != nil {
		return err
	}
	author, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Author created successfully", author)
}

// UpdateAuthor godoc
// @Summary Update author
// @Tags authors
// @Accept json
// @Produce json
// @Param id path int true "Author ID"
// @Param author body service.AuthorInput true "Fields to change"
// @Success 200 {object} Response{data=model.Author}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /authors/{id} [put]
func (h *AuthorHandler) UpdateAuthor(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in service.AuthorInput
	if err := bind(c, &in); err != nil {
		return err
	}
	author, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Author updated successfully", author)
}

// DeleteAuthor godoc
// @Summary Delete author
// @Tags authors
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /authors/{id} [delete]
func (h *AuthorHandler) DeleteAuthor(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Author deleted successfully", nil)
}
