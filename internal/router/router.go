package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"libraryapi/internal/auth"
	"libraryapi/internal/config"
	"libraryapi/internal/handler"
	"libraryapi/internal/metrics"
)

var errRevokedToken = errors.New("token has been revoked")

// Handlers groups the HTTP handlers served under /api.
type Handlers struct {
	Users      *handler.UserHandler
	Authors    *handler.AuthorHandler
	Genres     *handler.GenreHandler
	Books      *handler.BookHandler
	Borrowings *handler.BorrowingHandler
	Auth       *handler.AuthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	h Handlers,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	m *metrics.Metrics,
) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.JSONSerializer = JSONSerializer{}
	e.HTTPErrorHandler = handler.ErrorHandler(m)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireJWT := echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			if revoked, _ := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID); revoked {
				return nil, errRevokedToken
			}
			return claims, nil
		},
	})

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	api.GET("/users", h.Users.ListUsers)
	api.GET("/users/:id", h.Users.GetUser)
	api.GET("/users/email/:email", h.Users.GetUserByEmail)
	api.GET("/authors", h.Authors.ListAuthors)
	api.GET("/authors/:id", h.Authors.GetAuthor)
	api.GET("/authors/country/:country", h.Authors.ListAuthorsByCountry)
	api.GET("/genres", h.Genres.ListGenres)
	api.GET("/genres/:id", h.Genres.GetGenre)
	api.GET("/books", h.Books.ListBooks)
	api.GET("/books/:id", h.Books.GetBook)
	api.GET("/books/author/:authorId", h.Books.ListBooksByAuthor)
	api.GET("/books/genre/:genreId", h.Books.ListBooksByGenre)
	api.GET("/borrowings", h.Borrowings.ListBorrowings)
	api.GET("/borrowings/active", h.Borrowings.ListActiveBorrowings)
	api.GET("/borrowings/:id", h.Borrowings.GetBorrowing)
	api.GET("/borrowings/user/:userId", h.Borrowings.ListBorrowingsByUser)
	api.GET("/borrowings/book/:bookId", h.Borrowings.ListBorrowingsByBook)

	// Mutating routes, secured when REQUIRE_AUTH is set
	write := api
	if cfg.RequireAuth {
		write = api.Group("", requireJWT)
	}

	write.POST("/users", h.Users.CreateUser)
	write.PUT("/users/:id", h.Users.UpdateUser)
	write.DELETE("/users/:id", h.Users.DeleteUser)
	write.POST("/authors", h.Authors.CreateAuthor)
	write.PUT("/authors/:id", h.Authors.UpdateAuthor)
	write.DELETE("/authors/:id", h.Authors.DeleteAuthor)
	write.POST("/genres", h.Genres.CreateGenre)
	write.PUT("/genres/:id", h.Genres.UpdateGenre)
	write.DELETE("/genres/:id", h.Genres.DeleteGenre)
	write.POST("/books", h.Books.CreateBook)
	write.PUT("/books/:id", h.Books.UpdateBook)
	write.DELETE("/books/:id", h.Books.DeleteBook)
	write.POST("/borrowings", h.Borrowings.CreateBorrowing)
	write.PUT("/borrowings/:id", h.Borrowings.UpdateBorrowing)
	write.POST("/borrowings/:id/return", h.Borrowings.ReturnBorrowing)
	write.DELETE("/borrowings/:id", h.Borrowings.DeleteBorrowing)

	// Secured routes (always require JWT authentication)
	api.GET("/me", h.Auth.Me, requireJWT)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
