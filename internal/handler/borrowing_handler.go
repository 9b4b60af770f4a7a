package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryapi/internal/service"
)

// BorrowingHandler handles the borrowing lifecycle endpoints.
type BorrowingHandler struct {
	svc service.BorrowingService
}

// NewBorrowingHandler creates a new borrowing handler.
func NewBorrowingHandler(svc service.BorrowingService) *BorrowingHandler {
	return &BorrowingHandler{svc: svc}
}

// ListBorrowings godoc
// @Summary List borrowings
// @Tags borrowings
// @Produce json
// @Success 200 {object} Response{data=[]model.Borrowing}
// @Router /borrowings [get]
func (h *BorrowingHandler) ListBorrowings(c echo.Context) error {
	borrowings, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, borrowings)
}

// ListActiveBorrowings godoc
// @Summary List borrowings not yet returned
// @Tags borrowings
// @Produce json
// @Success 200 {object} Response{data=[]model.Borrowing}
// @Router /borrowings/active [get]
func (h *BorrowingHandler) ListActiveBorrowings(c echo.Context) error {
	borrowings, err := h.svc.GetActive(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, borrowings)
}

// ListBorrowingsByUser godoc
// @Summary List borrowings of a user
// @Tags borrowings
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} Response{data=[]model.Borrowing}
// @Router /borrowings/user/{userId} [get]
func (h *BorrowingHandler) ListBorrowingsByUser(c echo.Context) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	borrowings, err := h.svc.GetByUserID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondList(c, borrowings)
}

// ListBorrowingsByBook godoc
// @Summary List borrowings of a book
// @Tags borrowings
// @Produce json
// @Param bookId path int true "Book ID"
// @Success 200 {object} Response{data=[]model.Borrowing}
// @Router /borrowings/book/{bookId} [get]
func (h *BorrowingHandler) ListBorrowingsByBook(c echo.Context) error {
	id, err := paramID(c, "bookId")
	if err != nil {
		return err
	}
	borrowings, err := h.svc.GetByBookID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondList(c, borrowings)
}

// GetBorrowing godoc
// @Summary Get borrowing by id
// @Tags borrowings
// @Produce json
// @Param id path int true "Borrowing ID"
// @Success 200 {object} Response{data=model.Borrowing}
// @Failure 404 {object} errors.ErrorResponse
// @Router /borrowings/{id} [get]
func (h *BorrowingHandler) GetBorrowing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	borrowing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", borrowing)
}

// CreateBorrowing godoc
// @Summary Borrow a book
// @Description A book can have at most one active borrowing. return_date is ignored.
// @Tags borrowings
// @Accept json
// @Produce json
// @Param borrowing body service.BorrowingInput true "Borrowing payload"
// @Success 201 {object} Response{data=model.Borrowing}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /borrowings [post]
func (h *BorrowingHandler) CreateBorrowing(c echo.Context) error {
	var in service.BorrowingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	borrowing, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Borrowing created successfully", borrowing)
}

// UpdateBorrowing godoc
// @Summary Update borrowing
// @Tags borrowings
// @Accept json
// @Produce json
// @Param id path int true "Borrowing ID"
// @Param borrowing body service.BorrowingInput true "Fields to change"
// @Success 200 {object} Response{data=model.Borrowing}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /borrowings/{id} [put]
func (h *BorrowingHandler) UpdateBorrowing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in service.BorrowingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	borrowing, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Borrowing updated successfully", borrowing)
}

// ReturnBorrowing godoc
// @Summary Return a borrowed book
// @Description Sets return_date to today. Returning twice fails.
// @Tags borrowings
// @Produce json
// @Param id path int true "Borrowing ID"
// @Success 200 {object} Response{data=model.Borrowing}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /borrowings/{id}/return [post]
func (h *BorrowingHandler) ReturnBorrowing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	borrowing, err := h.svc.Return(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Book returned successfully", borrowing)
}

// DeleteBorrowing godoc
// @Summary Delete borrowing
// @Tags borrowings
// @Produce json
// @Param id path int true "Borrowing ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /borrowings/{id} [delete]
func (h *BorrowingHandler) DeleteBorrowing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Borrowing deleted successfully", nil)
}
