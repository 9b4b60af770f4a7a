package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"libraryapi/internal/cache"
	"libraryapi/internal/errors"
	"libraryapi/internal/model"
	"libraryapi/internal/repository"
)

const (
	msgBookTitle     = "Book title is required."
	msgBookAuthorID  = "Author ID is required."
	msgBookGenreID   = "Genre ID is required."
	msgBookYear      = "Year must be a valid number."
	msgBookISBN      = "ISBN is required."
	msgBookISBNLen   = "ISBN must be 10 or 13 digits."
	msgBookISBNTaken = "ISBN already exists."
	msgBookNotFound  = "Book not found."
	msgBookHasLoans  = "Book has borrowing records and cannot be deleted."
	msgBookReference = "Author or genre no longer exists."
)

// BookInput carries book fields. Nil fields are absent from the request.
type BookInput struct {
	Title    *string `json:"title" example:"Harry Potter and the Philosopher's Stone"`
	AuthorID *uint   `json:"author_id" example:"1"`
	GenreID  *uint   `json:"genre_id" example:"1"`
	Year     *int    `json:"year" example:"1997"`
	ISBN     *string `json:"isbn" example:"0-7475-3269-9"`
}

// BookService handles book operations.
type BookService interface {
	Create(ctx context.Context, in BookInput) (*model.Book, error)
	Update(ctx context.Context, id uint, in BookInput) (*model.Book, error)
	Get(ctx context.Context, id uint) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	GetByAuthor(ctx context.Context, authorID uint) ([]model.Book, error)
	GetByGenre(ctx context.Context, genreID uint) ([]model.Book, error)
	Delete(ctx context.Context, id uint) error
}

type bookService struct {
	store repository.Store
	cache *cache.Client
	now   func() time.Time
}

// NewBookService creates a new book service.
func NewBookService(store repository.Store, cache *cache.Client) BookService {
	return &bookService{store: store, cache: cache, now: time.Now}
}

// Create validates fields and references, then stores the book with a normalized ISBN.
func (s *bookService) Create(ctx context.Context, in BookInput) (*model.Book, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, errors.Validation(msgBookTitle)
	}
	if !present(in.AuthorID) {
		return nil, errors.Validation(msgBookAuthorID)
	}
	if err := s.ensureAuthor(ctx, *in.AuthorID); err != nil {
		return nil, err
	}
	if !present(in.GenreID) {
		return nil, errors.Validation(msgBookGenreID)
	}
	if err := s.ensureGenre(ctx, *in.GenreID); err != nil {
		return nil, err
	}
	if in.Year == nil {
		return nil, errors.Validation(msgBookYear)
	}
	if err := s.checkYear(*in.Year); err != nil {
		return nil, err
	}
	if in.ISBN == nil || strings.TrimSpace(*in.ISBN) == "" {
		return nil, errors.Validation(msgBookISBN)
	}
	isbn, err := s.checkISBN(ctx, *in.ISBN, 0)
	if err != nil {
		return nil, err
	}

	book := &model.Book{
		Title:    strings.TrimSpace(*in.Title),
		AuthorID: *in.AuthorID,
		GenreID:  *in.GenreID,
		Year:     *in.Year,
		ISBN:     isbn,
	}
	if err := s.store.Books().Create(ctx, book); err != nil {
		return nil, writeError(err, msgBookISBNTaken, msgBookReference)
	}
	return book, nil
}

// Update applies the checks of Create to the fields present in the patch.
func (s *bookService) Update(ctx context.Context, id uint, in BookInput) (*model.Book, error) {
	book, err := s.store.Books().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgBookNotFound)
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, errors.Validation(msgBookTitle)
		}
		book.Title = strings.TrimSpace(*in.Title)
	}
	if in.AuthorID != nil {
		if err := s.ensureAuthor(ctx, *in.AuthorID); err != nil {
			return nil, err
		}
		book.AuthorID = *in.AuthorID
	}
	if in.GenreID != nil {
		if err := s.ensureGenre(ctx, *in.GenreID); err != nil {
			return nil, err
		}
		book.GenreID = *in.GenreID
	}
	if in.Year != nil {
		if err := s.checkYear(*in.Year); err != nil {
			return nil, err
		}
		book.Year = *in.Year
	}
	if in.ISBN != nil {
		isbn, err := s.checkISBN(ctx, *in.ISBN, id)
		if err != nil {
			return nil, err
		}
		book.ISBN = isbn
	}

	if err := s.store.Books().Update(ctx, book); err != nil {
		return nil, writeError(err, msgBookISBNTaken, msgBookReference)
	}
	_ = s.cache.Delete(ctx, cache.Key("book", id))
	return book, nil
}

func (s *bookService) ensureAuthor(ctx context.Context, id uint) error {
	if _, err := s.store.Authors().FindByID(ctx, id); err != nil {
		return lookupError(err, msgAuthorNotFound)
	}
	return nil
}

func (s *bookService) ensureGenre(ctx context.Context, id uint) error {
	if _, err := s.store.Genres().FindByID(ctx, id); err != nil {
		return lookupError(err, msgGenreNotFound)
	}
	return nil
}

// checkYear accepts years from 0 through next year.
func (s *bookService) checkYear(year int) error {
	maxYear := s.now().Year() + 1
	if year < 0 || year > maxYear {
		return errors.Validation(fmt.Sprintf("Year must be between 0 and %d.", maxYear))
	}
	return nil
}

// checkISBN normalizes raw and verifies no other book holds the same normalized ISBN.
func (s *bookService) checkISBN(ctx context.Context, raw string, self uint) (string, error) {
	isbn := NormalizeISBN(raw)
	if !validISBNLength(isbn) {
		return "", errors.Validation(msgBookISBNLen)
	}

	existing, err := s.store.Books().FindByISBN(ctx, isbn)
	if err != nil {
		if isNotFound(err) {
			return isbn, nil
		}
		return "", errors.Storage(err)
	}
	if existing.ID != self {
		return "", errors.Conflict(msgBookISBNTaken)
	}
	return isbn, nil
}

// Get retrieves a book by ID with caching.
func (s *bookService) Get(ctx context.Context, id uint) (*model.Book, error) {
	var cached model.Book
	if s.cache.GetJSON(ctx, cache.Key("book", id), &cached) {
		return &cached, nil
	}

	book, err := s.store.Books().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgBookNotFound)
	}
	s.cache.SetJSON(ctx, cache.Key("book", id), book, entityCacheTTL)
	return book, nil
}

func (s *bookService) List(ctx context.Context) ([]model.Book, error) {
	books, err := s.store.Books().List(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return books, nil
}

func (s *bookService) GetByAuthor(ctx context.Context, authorID uint) ([]model.Book, error) {
	books, err := s.store.Books().ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return books, nil
}

func (s *bookService) GetByGenre(ctx context.Context, genreID uint) ([]model.Book, error) {
	books, err := s.store.Books().ListByGenre(ctx, genreID)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return books, nil
}

// Delete refuses to remove a book with borrowing history.
func (s *bookService) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.Books().FindByID(ctx, id); err != nil {
		return lookupError(err, msgBookNotFound)
	}
	n, err := s.store.Borrowings().CountByBook(ctx, id)
	if err != nil {
		return errors.Storage(err)
	}
	if n > 0 {
		return errors.Conflict(msgBookHasLoans)
	}

	if err := s.store.Books().Delete(ctx, id); err != nil {
		return deleteError(err, msgBookNotFound, msgBookHasLoans)
	}
	_ = s.cache.Delete(ctx, cache.Key("book", id))
	return nil
}
