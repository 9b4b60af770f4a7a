package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryapi/internal/auth"
	"libraryapi/internal/errors"
	"libraryapi/internal/service"
)

const msgAdminOnly = "Only administrators can change is_admin."

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// checkAdminFlag rejects is_admin changes from an authenticated caller who is
// not an administrator. Unauthenticated routes carry no claims and are not checked.
func checkAdminFlag(c echo.Context, in service.UserInput) error {
	if in.IsAdmin == nil {
		return nil
	}
	claims, ok := c.Get("user").(*auth.Claims)
	if !ok || claims.IsAdmin {
		return nil
	}
	return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
		Error: msgAdminOnly,
		Code:  "FORBIDDEN",
	})
}

// CreateUser godoc
// @Summary Create user
// @Description The password is stored as a bcrypt hash and never returned.
// @Tags users
// @Accept json
// @Produce json
// @Param user body service.UserInput true "User payload"
// @Success 201 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var in service.UserInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := checkAdminFlag(c, in); err != nil {
		return err
	}
	created, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User created successfully", created)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", user)
}

// GetUserByEmail godoc
// @Summary Get user by email
// @Tags users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} Response{data=model.User}
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/email/{email} [get]
func (h *UserHandler) GetUserByEmail(c echo.Context) error {
	user, err := h.svc.GetByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} Response{data=[]model.User}
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, users)
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body service.UserInput true "Fields to change"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in service.UserInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := checkAdminFlag(c, in); err != nil {
		return err
	}
	user, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}
