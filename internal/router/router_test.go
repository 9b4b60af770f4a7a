package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/auth"
	"libraryapi/internal/config"
	"libraryapi/internal/db/dbtest"
	"libraryapi/internal/handler"
	"libraryapi/internal/metrics"
	"libraryapi/internal/repository"
	"libraryapi/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testServer struct {
	e     *echo.Echo
	users service.UserService
}

func newTestServer(t *testing.T, requireAuth bool) testServer {
	t.Helper()
	store := repository.NewStore(dbtest.Open(t))
	m := metrics.New()
	jwtService := auth.NewJWTService("test-secret")
	tokenStore := auth.NewTokenStore(nil)

	users := service.NewUserService(store.Users(), store.Borrowings(), nil)
	authService := service.NewAuthService(store.Users(), jwtService, tokenStore)

	e := echo.New()
	Register(e, &config.Config{RequireAuth: requireAuth}, Handlers{
		Users:      handler.NewUserHandler(users),
		Authors:    handler.NewAuthorHandler(service.NewAuthorService(store.Authors(), store.Books(), nil)),
		Genres:     handler.NewGenreHandler(service.NewGenreService(store.Genres(), store.Books(), nil)),
		Books:      handler.NewBookHandler(service.NewBookService(store, nil)),
		Borrowings: handler.NewBorrowingHandler(service.NewBorrowingService(store, m)),
		Auth:       handler.NewAuthHandler(authService, users),
	}, jwtService, tokenStore, m)
	return testServer{e: e, users: users}
}

func (s testServer) do(t *testing.T, method, path string, body interface{}, token string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func idOf(t *testing.T, env envelope) uint {
	t.Helper()
	var v struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.NotZero(t, v.ID)
	return v.ID
}

func TestLendingScenario(t *testing.T) {
	s := newTestServer(t, false)

	code, env := s.do(t, http.MethodPost, "/api/users", map[string]string{
		"name": "Jane Reader", "phone": "0612345678", "email": "jane@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, code, env.Error)
	userID := idOf(t, env)
	assert.NotContains(t, string(env.Data), "password")

	code, env = s.do(t, http.MethodPost, "/api/authors", map[string]string{"name": "J.K. Rowling", "country": "UK"}, "")
	require.Equal(t, http.StatusCreated, code, env.Error)
	authorID := idOf(t, env)

	code, env = s.do(t, http.MethodPost, "/api/genres", map[string]string{"name": "fantasy"}, "")
	require.Equal(t, http.StatusCreated, code, env.Error)
	genreID := idOf(t, env)
	assert.Contains(t, string(env.Data), `"Fantasy"`)

	code, env = s.do(t, http.MethodPost, "/api/genres", map[string]string{"name": "FANTASY"}, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Genre name already exists.", env.Error)

	code, env = s.do(t, http.MethodPost, "/api/books", map[string]interface{}{
		"title": "Book1", "author_id": authorID, "genre_id": genreID, "year": "1997", "isbn": "0-7475-3269-9",
	}, "")
	require.Equal(t, http.StatusCreated, code, env.Error)
	bookID := idOf(t, env)
	assert.Contains(t, string(env.Data), `"0747532699"`)

	code, env = s.do(t, http.MethodPost, "/api/books", map[string]interface{}{
		"title": "Book2", "author_id": authorID, "genre_id": genreID, "year": "abc", "isbn": "9780743273565",
	}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Year must be a valid number.", env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	borrow := map[string]interface{}{"user_id": userID, "book_id": bookID, "borrow_date": "2024-01-15"}
	code, env = s.do(t, http.MethodPost, "/api/borrowings", borrow, "")
	require.Equal(t, http.StatusCreated, code, env.Error)
	borrowingID := idOf(t, env)
	assert.Contains(t, string(env.Data), `"status":"active"`)

	code, env = s.do(t, http.MethodPost, "/api/borrowings", borrow, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Book is already borrowed and not yet returned.", env.Error)

	code, env = s.do(t, http.MethodGet, "/api/borrowings/active", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	returnPath := fmt.Sprintf("/api/borrowings/%d/return", borrowingID)
	code, env = s.do(t, http.MethodPost, returnPath, nil, "")
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"status":"returned"`)

	code, env = s.do(t, http.MethodPost, returnPath, nil, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Book has already been returned.", env.Error)

	code, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/books/%d", bookID), nil, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Code)

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/borrowings/user/%d", userID), nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, *env.Count)

	code, env = s.do(t, http.MethodGet, "/api/books/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestNotFoundEnvelope(t *testing.T) {
	s := newTestServer(t, false)

	code, env := s.do(t, http.MethodGet, "/api/authors/42", nil, "")

	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Author not found.", env.Error)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t, true)
	ctx := context.Background()

	code, env := s.do(t, http.MethodPost, "/api/authors", map[string]string{"name": "Tolkien", "country": "UK"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/api/authors", nil, "")
	assert.Equal(t, http.StatusOK, code)

	password := "librarian1"
	_, err := s.users.Create(ctx, service.UserInput{
		Name:     strPtr("Librarian"),
		Phone:    strPtr("0612345678"),
		Email:    strPtr("librarian@example.com"),
		Password: &password,
	})
	require.NoError(t, err)

	code, env = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "librarian@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)

	token := s.login(t, "librarian@example.com", password)

	code, env = s.do(t, http.MethodPost, "/api/authors", map[string]string{"name": "Tolkien", "country": "UK"}, token)
	assert.Equal(t, http.StatusCreated, code, env.Error)

	code, env = s.do(t, http.MethodGet, "/api/me", nil, token)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), "librarian@example.com")
}

func TestRequireAuth_AdminFlag(t *testing.T) {
	s := newTestServer(t, true)
	ctx := context.Background()

	password := "secret123"
	reader, err := s.users.Create(ctx, service.UserInput{
		Name:     strPtr("Reader"),
		Phone:    strPtr("0612345678"),
		Email:    strPtr("reader@example.com"),
		Password: &password,
	})
	require.NoError(t, err)
	isAdmin := true
	_, err = s.users.Create(ctx, service.UserInput{
		Name:     strPtr("Head Librarian"),
		Phone:    strPtr("0612345679"),
		Email:    strPtr("head@example.com"),
		Password: &password,
		IsAdmin:  &isAdmin,
	})
	require.NoError(t, err)

	newUser := map[string]interface{}{
		"name":     "Mallory",
		"phone":    "0612345670",
		"email":    "mallory@example.com",
		"password": "secret123",
		"is_admin": true,
	}

	readerToken := s.login(t, "reader@example.com", password)
	code, env := s.do(t, http.MethodPost, "/api/users", newUser, readerToken)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Code)
	assert.Equal(t, "Only administrators can change is_admin.", env.Error)

	code, env = s.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", reader.ID), map[string]bool{"is_admin": true}, readerToken)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Code)

	_, err = s.users.GetByEmail(ctx, "mallory@example.com")
	assert.Error(t, err)
	stored, err := s.users.Get(ctx, reader.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsAdmin)

	// Fields other than is_admin stay open to any authenticated caller.
	code, env = s.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", reader.ID), map[string]string{"name": "Avid Reader"}, readerToken)
	assert.Equal(t, http.StatusOK, code, env.Error)

	adminToken := s.login(t, "head@example.com", password)
	code, env = s.do(t, http.MethodPost, "/api/users", newUser, adminToken)
	require.Equal(t, http.StatusCreated, code, env.Error)
	assert.Contains(t, string(env.Data), `"is_admin":true`)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, false)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(t, http.MethodGet, "/api/genres/7", nil, "")

	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `library_request_failures_total{kind="not_found"} 1`)
}

func (s testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, code, env.Error)
	var tokens handler.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	return tokens.AccessToken
}

func strPtr(s string) *string { return &s }
