package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/db/dbtest"
	"libraryapi/internal/errors"
	"libraryapi/internal/model"
	"libraryapi/internal/repository"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"978-0-7432-7356-5", "9780743273565", true},
		{"0-7475-3269-9", "0747532699", true},
		{"0-8044-2957-x", "080442957X", true},
		{"080442957x ", "080442957X", true},
		{"x0747532699", "0747532699", true},
		{"0-7475-x3269-9", "0747532699", true},
		{"123456789", "123456789", false},
		{"ISBN 12345678901234", "12345678901234", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := NormalizeISBN(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, validISBNLength(got))
		})
	}
}

type catalog struct {
	store  repository.Store
	author *model.Author
	genre  *model.Genre
}

func newCatalog(t *testing.T) catalog {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	author := &model.Author{Name: "J.K. Rowling", Country: "UK"}
	require.NoError(t, store.Authors().Create(ctx, author))
	genre := &model.Genre{Name: "Fantasy"}
	require.NoError(t, store.Genres().Create(ctx, genre))
	return catalog{store: store, author: author, genre: genre}
}

func newBookService(store repository.Store) *bookService {
	svc := NewBookService(store, nil).(*bookService)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func (c catalog) bookInput(isbn string) BookInput {
	return BookInput{
		Title:    strPtr("Harry Potter"),
		AuthorID: uintPtr(c.author.ID),
		GenreID:  uintPtr(c.genre.ID),
		Year:     intPtr(1997),
		ISBN:     strPtr(isbn),
	}
}

func TestBookService_Create(t *testing.T) {
	c := newCatalog(t)
	svc := newBookService(c.store)
	ctx := context.Background()

	book, err := svc.Create(ctx, c.bookInput("978-0-7432-7356-5"))
	require.NoError(t, err)
	assert.Equal(t, "9780743273565", book.ISBN)

	_, err = svc.Create(ctx, c.bookInput("9780743273565"))
	assert.EqualError(t, err, "ISBN already exists.")
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))
}

func TestBookService_CreateValidation(t *testing.T) {
	c := newCatalog(t)
	svc := newBookService(c.store)

	tests := []struct {
		name          string
		mutate        func(*BookInput)
		expectedError string
		kind          errors.Kind
	}{
		{"missing title", func(in *BookInput) { in.Title = strPtr("  ") }, "Book title is required.", errors.KindValidation},
		{"missing author", func(in *BookInput) { in.AuthorID = nil }, "Author ID is required.", errors.KindValidation},
		{"unknown author", func(in *BookInput) { in.AuthorID = uintPtr(99) }, "Author not found.", errors.KindNotFound},
		{"missing genre", func(in *BookInput) { in.GenreID = nil }, "Genre ID is required.", errors.KindValidation},
		{"unknown genre", func(in *BookInput) { in.GenreID = uintPtr(99) }, "Genre not found.", errors.KindNotFound},
		{"missing year", func(in *BookInput) { in.Year = nil }, "Year must be a valid number.", errors.KindValidation},
		{"future year", func(in *BookInput) { in.Year = intPtr(2026) }, "Year must be between 0 and 2025.", errors.KindValidation},
		{"negative year", func(in *BookInput) { in.Year = intPtr(-1) }, "Year must be between 0 and 2025.", errors.KindValidation},
		{"missing isbn", func(in *BookInput) { in.ISBN = nil }, "ISBN is required.", errors.KindValidation},
		{"nine digit isbn", func(in *BookInput) { in.ISBN = strPtr("123456789") }, "ISBN must be 10 or 13 digits.", errors.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := c.bookInput("0-7475-3269-9")
			tt.mutate(&in)

			book, err := svc.Create(context.Background(), in)

			assert.EqualError(t, err, tt.expectedError)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Nil(t, book)
		})
	}
}

func TestBookService_UpdateAndFilters(t *testing.T) {
	c := newCatalog(t)
	svc := newBookService(c.store)
	ctx := context.Background()

	first, err := svc.Create(ctx, c.bookInput("0747532699"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, c.bookInput("9780743273565"))
	require.NoError(t, err)

	// Re-submitting its own ISBN is not a conflict.
	updated, err := svc.Update(ctx, first.ID, BookInput{ISBN: strPtr("0-7475-3269-9"), Year: intPtr(1998)})
	require.NoError(t, err)
	assert.Equal(t, 1998, updated.Year)

	_, err = svc.Update(ctx, second.ID, BookInput{ISBN: strPtr("0747532699")})
	assert.EqualError(t, err, "ISBN already exists.")

	byAuthor, err := svc.GetByAuthor(ctx, c.author.ID)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	byGenre, err := svc.GetByGenre(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, byGenre)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1998, got.Year)
}

func TestBookService_DeleteRestrictedByBorrowings(t *testing.T) {
	c := newCatalog(t)
	svc := newBookService(c.store)
	ctx := context.Background()

	book, err := svc.Create(ctx, c.bookInput("0747532699"))
	require.NoError(t, err)
	user := &model.User{Name: "Reader", Phone: "0612345678", Email: "reader@example.com", PasswordHash: "x"}
	require.NoError(t, c.store.Users().Create(ctx, user))
	require.NoError(t, c.store.Borrowings().Create(ctx, &model.Borrowing{
		UserID:     user.ID,
		BookID:     book.ID,
		BorrowDate: model.NewDate(time.Now()),
	}))

	err = svc.Delete(ctx, book.ID)
	assert.EqualError(t, err, "Book has borrowing records and cannot be deleted.")

	err = svc.Delete(ctx, 404)
	assert.EqualError(t, err, "Book not found.")
}
