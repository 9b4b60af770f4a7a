package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/errors"
	"libraryapi/internal/metrics"
	"libraryapi/internal/model"
)

type lending struct {
	catalog
	svc   *borrowingService
	m     *metrics.Metrics
	user  *model.User
	book  *model.Book
	other *model.Book
}

func newLending(t *testing.T, today string) lending {
	t.Helper()
	c := newCatalog(t)
	ctx := context.Background()

	user := &model.User{Name: "Reader", Phone: "0612345678", Email: "reader@example.com", PasswordHash: "x"}
	require.NoError(t, c.store.Users().Create(ctx, user))
	books := newBookService(c.store)
	book, err := books.Create(ctx, c.bookInput("0747532699"))
	require.NoError(t, err)
	other, err := books.Create(ctx, c.bookInput("9780743273565"))
	require.NoError(t, err)

	m := metrics.New()
	svc := NewBorrowingService(c.store, m).(*borrowingService)
	now, err := time.Parse(model.DateLayout, today)
	require.NoError(t, err)
	svc.now = func() time.Time { return now }

	return lending{catalog: c, svc: svc, m: m, user: user, book: book, other: other}
}

func (l lending) input(bookID uint, borrowDate string) BorrowingInput {
	return BorrowingInput{UserID: uintPtr(l.user.ID), BookID: uintPtr(bookID), BorrowDate: strPtr(borrowDate)}
}

func TestBorrowingService_Lifecycle(t *testing.T) {
	l := newLending(t, "2024-02-01")
	ctx := context.Background()

	borrowing, err := l.svc.Create(ctx, l.input(l.book.ID, "2024-01-15"))
	require.NoError(t, err)
	assert.True(t, borrowing.Active())

	active, err := l.svc.GetActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = l.svc.Create(ctx, l.input(l.book.ID, "2024-01-16"))
	assert.EqualError(t, err, "Book is already borrowed and not yet returned.")
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))

	returned, err := l.svc.Return(ctx, borrowing.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, "2024-02-01", returned.ReturnDate.String())
	assert.Equal(t, model.BorrowingStatusReturned, returned.Status())

	_, err = l.svc.Return(ctx, borrowing.ID)
	assert.EqualError(t, err, "Book has already been returned.")
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))

	again, err := l.svc.Create(ctx, l.input(l.book.ID, "2024-02-02"))
	require.NoError(t, err)
	assert.NotEqual(t, borrowing.ID, again.ID)

	byBook, err := l.svc.GetByBookID(ctx, l.book.ID)
	require.NoError(t, err)
	assert.Len(t, byBook, 2)
	byUser, err := l.svc.GetByUserID(ctx, l.user.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	assert.Equal(t, float64(2), testutil.ToFloat64(l.m.BorrowingsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(l.m.BorrowingsReturned))
}

func TestBorrowingService_CreateValidation(t *testing.T) {
	l := newLending(t, "2024-02-01")

	tests := []struct {
		name          string
		input         BorrowingInput
		expectedError string
		kind          errors.Kind
	}{
		{"missing user", BorrowingInput{BookID: uintPtr(l.book.ID), BorrowDate: strPtr("2024-01-15")}, "User ID is required.", errors.KindValidation},
		{"unknown user", BorrowingInput{UserID: uintPtr(99), BookID: uintPtr(l.book.ID), BorrowDate: strPtr("2024-01-15")}, "User not found.", errors.KindNotFound},
		{"missing book", BorrowingInput{UserID: uintPtr(l.user.ID), BorrowDate: strPtr("2024-01-15")}, "Book ID is required.", errors.KindValidation},
		{"unknown book", l.input(99, "2024-01-15"), "Book not found.", errors.KindNotFound},
		{"missing borrow date", BorrowingInput{UserID: uintPtr(l.user.ID), BookID: uintPtr(l.book.ID)}, "Borrow date is required.", errors.KindValidation},
		{"bad borrow date", l.input(l.book.ID, "15th of never"), "Invalid borrow date format.", errors.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			borrowing, err := l.svc.Create(context.Background(), tt.input)

			assert.EqualError(t, err, tt.expectedError)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Nil(t, borrowing)
		})
	}
}

func TestBorrowingService_CreateIgnoresReturnDate(t *testing.T) {
	l := newLending(t, "2024-02-01")
	in := l.input(l.book.ID, "2024-01-15")
	in.ReturnDate = strPtr("2024-01-20")

	borrowing, err := l.svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Nil(t, borrowing.ReturnDate)
	assert.True(t, borrowing.Active())
}

func TestBorrowingService_ConcurrentCreates(t *testing.T) {
	l := newLending(t, "2024-02-01")
	const workers = 8

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.svc.Create(context.Background(), l.input(l.book.ID, "2024-01-15"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, errors.KindConflict, errors.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)

	active, err := l.svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestBorrowingService_UpdateDates(t *testing.T) {
	l := newLending(t, "2024-02-01")
	ctx := context.Background()
	borrowing, err := l.svc.Create(ctx, l.input(l.book.ID, "2024-01-15"))
	require.NoError(t, err)

	_, err = l.svc.Update(ctx, borrowing.ID, BorrowingInput{ReturnDate: strPtr("2024-01-10")})
	assert.EqualError(t, err, "Return date cannot be before borrow date.")

	_, err = l.svc.Update(ctx, borrowing.ID, BorrowingInput{ReturnDate: strPtr("soon")})
	assert.EqualError(t, err, "Invalid return date format.")

	_, err = l.svc.Update(ctx, borrowing.ID, BorrowingInput{BorrowDate: strPtr("yesterday")})
	assert.EqualError(t, err, "Invalid borrow date format.")

	returned, err := l.svc.Update(ctx, borrowing.ID, BorrowingInput{ReturnDate: strPtr("2024-01-20")})
	require.NoError(t, err)
	assert.False(t, returned.Active())

	// Moving the borrow date past the stored return date breaks ordering.
	_, err = l.svc.Update(ctx, borrowing.ID, BorrowingInput{BorrowDate: strPtr("2024-01-25")})
	assert.EqualError(t, err, "Return date cannot be before borrow date.")

	stored, err := l.svc.Get(ctx, borrowing.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", stored.BorrowDate.String())
}

func TestBorrowingService_UpdateBookExclusivity(t *testing.T) {
	l := newLending(t, "2024-02-01")
	ctx := context.Background()
	first, err := l.svc.Create(ctx, l.input(l.book.ID, "2024-01-15"))
	require.NoError(t, err)
	second, err := l.svc.Create(ctx, l.input(l.other.ID, "2024-01-15"))
	require.NoError(t, err)

	_, err = l.svc.Update(ctx, second.ID, BorrowingInput{BookID: uintPtr(l.book.ID)})
	assert.EqualError(t, err, "Book is already borrowed and not yet returned.")

	// Keeping its own book is allowed.
	_, err = l.svc.Update(ctx, first.ID, BorrowingInput{BookID: uintPtr(l.book.ID)})
	assert.NoError(t, err)

	_, err = l.svc.Update(ctx, 404, BorrowingInput{})
	assert.EqualError(t, err, "Borrowing not found.")

	// A returned record cannot be moved onto a book that is on loan either.
	_, err = l.svc.Return(ctx, second.ID)
	require.NoError(t, err)
	_, err = l.svc.Update(ctx, second.ID, BorrowingInput{BookID: uintPtr(l.book.ID)})
	assert.EqualError(t, err, "Book is already borrowed and not yet returned.")
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))

	stored, err := l.svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, l.other.ID, stored.BookID)
}

func TestBorrowingService_ReturnBeforeBorrowDate(t *testing.T) {
	l := newLending(t, "2024-01-01")
	ctx := context.Background()
	borrowing, err := l.svc.Create(ctx, l.input(l.book.ID, "2024-01-15"))
	require.NoError(t, err)

	_, err = l.svc.Return(ctx, borrowing.ID)
	assert.EqualError(t, err, "Return date cannot be before borrow date.")

	_, err = l.svc.Return(ctx, 404)
	assert.EqualError(t, err, "Borrowing not found.")
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestBorrowingService_Delete(t *testing.T) {
	l := newLending(t, "2024-02-01")
	ctx := context.Background()
	borrowing, err := l.svc.Create(ctx, l.input(l.book.ID, "2024-01-15"))
	require.NoError(t, err)

	require.NoError(t, l.svc.Delete(ctx, borrowing.ID))
	assert.EqualError(t, l.svc.Delete(ctx, borrowing.ID), "Borrowing not found.")

	// Deleting the active loan frees the book.
	_, err = l.svc.Create(ctx, l.input(l.book.ID, "2024-01-16"))
	assert.NoError(t, err)
}
