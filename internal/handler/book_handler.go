package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"libraryapi/internal/errors"
	"libraryapi/internal/service"
)

// BookHandler handles book endpoints.
type BookHandler struct {
	svc service.BookService
}

// NewBookHandler creates a new book handler.
func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

// BookRequest is the book payload. Year accepts a number or a numeric string.
type BookRequest struct {
	Title    *string     `json:"title" example:"Harry Potter and the Philosopher's Stone"`
	AuthorID *uint       `json:"author_id" example:"1"`
	GenreID  *uint       `json:"genre_id" example:"1"`
	Year     interface{} `json:"year" swaggertype:"integer" example:"1997"`
	ISBN     *string     `json:"isbn" example:"0-7475-3269-9"`
}

func (r BookRequest) toInput() (service.BookInput, error) {
	in := service.BookInput{
		Title:    r.Title,
		AuthorID: r.AuthorID,
		GenreID:  r.GenreID,
		ISBN:     r.ISBN,
	}
	if r.Year == nil {
		return in, nil
	}
	year, ok := parseYear(r.Year)
	if !ok {
		return in, errors.Validation("Year must be a valid number.")
	}
	in.Year = &year
	return in, nil
}

func parseYear(v interface{}) (int, bool) {
	switch y := v.(type) {
	case float64:
		if y != math.Trunc(y) || math.Abs(y) > math.MaxInt32 {
			return 0, false
		}
		return int(y), true
	case json.Number:
		n, err := y.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(y))
		return n, err == nil
	default:
		return 0, false
	}
}

func (h *BookHandler) bindInput(c echo.Context) (service.BookInput, error) {
	var req BookRequest
	if err := bind(c, &req); err != nil {
		return service.BookInput{}, err
	}
	return req.toInput()
}

// ListBooks godoc
// @Summary List books
// @Tags books
// @Produce json
// @Success 200 {object} Response{data=[]model.Book}
// @Router /books [get]
func (h *BookHandler) ListBooks(c echo.Context) error {
	books, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, books)
}

// GetBook godoc
// @Summary Get book by id
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} Response{data=model.Book}
// @Failure 404 {object} errors.ErrorResponse
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	book, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", book)
}

// ListBooksByAuthor godoc
// @Summary List books of an author
// @Tags books
// @Produce json
// @Param authorId path int true "Author ID"
// @Success 200 {object} Response{data=[]model.Book}
// @Router /books/author/{authorId} [get]
func (h *BookHandler) ListBooksByAuthor(c echo.Context) error {
	id, err := paramID(c, "authorId")
	if err != nil {
		return err
	}
	books, err := h.svc.GetByAuthor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondList(c, books)
}

// ListBooksByGenre godoc
// @Summary List books of a genre
// @Tags books
// @Produce json
// @Param genreId path int true "Genre ID"
// @Success 200 {object} Response{data=[]model.Book}
// @Router /books/genre/{genreId} [get]
func (h *BookHandler) ListBooksByGenre(c echo.Context) error {
	id, err := paramID(c, "genreId")
	if err != nil {
		return err
	}
	books, err := h.svc.GetByGenre(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondList(c, books)
}

// CreateBook godoc
// @Summary Create book
// @Description The ISBN is stored normalized to its digits and X.
// @Tags books
// @Accept json
// @Produce json
// @Param book body BookRequest true "Book payload"
// @Success 201 {object} Response{data=model.Book}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /books [post]
func (h *BookHandler) CreateBook(c echo.Context) error {
	in, err := h.bindInput(c)
	if err != nil {
		return err
	}
	book, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Book created successfully", book)
}

// UpdateBook godoc
// @Summary Update book
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param book body BookRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Book}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	in, err := h.bindInput(c)
	if err != nil {
		return err
	}
	book, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Book updated successfully", book)
}

// DeleteBook godoc
// @Summary Delete book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /books/{id} [delete]
func (h *BookHandler) DeleteBook(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Book deleted successfully", nil)
}
