package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"libraryapi/internal/errors"
	"libraryapi/internal/metrics"
	"libraryapi/internal/model"
	"libraryapi/internal/repository"
)

const (
	msgBorrowUserID     = "User ID is required."
	msgBorrowBookID     = "Book ID is required."
	msgBorrowBookTaken  = "Book is already borrowed and not yet returned."
	msgBorrowDate       = "Borrow date is required."
	msgBorrowDateFormat = "Invalid borrow date format."
	msgReturnDateFormat = "Invalid return date format."
	msgReturnBeforeDate = "Return date cannot be before borrow date."
	msgBorrowNotFound   = "Borrowing not found."
	msgBorrowReturned   = "Book has already been returned."
	msgBorrowReference  = "User or book no longer exists."
)

// BorrowingInput carries borrowing fields. Nil fields are absent from the request.
type BorrowingInput struct {
	UserID     *uint   `json:"user_id" example:"1"`
	BookID     *uint   `json:"book_id" example:"1"`
	BorrowDate *string `json:"borrow_date" example:"2024-01-15"`
	ReturnDate *string `json:"return_date,omitempty" example:"2024-02-01"`
}

// BorrowingService handles the borrowing lifecycle.
type BorrowingService interface {
	Create(ctx context.Context, in BorrowingInput) (*model.Borrowing, error)
	Update(ctx context.Context, id uint, in BorrowingInput) (*model.Borrowing, error)
	Return(ctx context.Context, id uint) (*model.Borrowing, error)
	Get(ctx context.Context, id uint) (*model.Borrowing, error)
	List(ctx context.Context) ([]model.Borrowing, error)
	GetByUserID(ctx context.Context, userID uint) ([]model.Borrowing, error)
	GetByBookID(ctx context.Context, bookID uint) ([]model.Borrowing, error)
	GetActive(ctx context.Context) ([]model.Borrowing, error)
	Delete(ctx context.Context, id uint) error
}

type borrowingService struct {
	store   repository.Store
	metrics *metrics.Metrics
	now     func() time.Time
	// mutexes serializes lifecycle changes per book or borrowing within this process.
	mutexes sync.Map
}

// NewBorrowingService creates a new borrowing service.
func NewBorrowingService(store repository.Store, m *metrics.Metrics) BorrowingService {
	return &borrowingService{store: store, metrics: m, now: time.Now}
}

// getMutex returns a mutex for the given key.
func (s *borrowingService) getMutex(key string) *sync.Mutex {
	mu, _ := s.mutexes.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func bookLock(id uint) string      { return fmt.Sprintf("book:%d", id) }
func borrowingLock(id uint) string { return fmt.Sprintf("borrowing:%d", id) }

// Create opens a loan. At most one active loan may exist per book.
func (s *borrowingService) Create(ctx context.Context, in BorrowingInput) (*model.Borrowing, error) {
	if !present(in.UserID) {
		return nil, errors.Validation(msgBorrowUserID)
	}
	if !present(in.BookID) {
		if err := s.ensureUser(ctx, s.store, *in.UserID); err != nil {
			return nil, err
		}
		return nil, errors.Validation(msgBorrowBookID)
	}

	mu := s.getMutex(bookLock(*in.BookID))
	mu.Lock()
	defer mu.Unlock()

	var created *model.Borrowing
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := s.ensureUser(ctx, tx, *in.UserID); err != nil {
			return err
		}
		if _, err := tx.Books().FindByIDForUpdate(ctx, *in.BookID); err != nil {
			return lookupError(err, msgBookNotFound)
		}
		if err := s.ensureAvailable(ctx, tx, *in.BookID, 0); err != nil {
			return err
		}

		if in.BorrowDate == nil || strings.TrimSpace(*in.BorrowDate) == "" {
			return errors.Validation(msgBorrowDate)
		}
		borrowDate, err := model.ParseDate(*in.BorrowDate)
		if err != nil {
			return errors.Validation(msgBorrowDateFormat)
		}

		borrowing := &model.Borrowing{
			UserID:     *in.UserID,
			BookID:     *in.BookID,
			BorrowDate: borrowDate,
		}
		if err := tx.Borrowings().Create(ctx, borrowing); err != nil {
			return writeError(err, msgBorrowBookTaken, msgBorrowReference)
		}
		created = borrowing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BorrowingCreated()
	return created, nil
}

// Update patches a borrowing. A new book_id must not be on loan to another
// borrowing, and the record must not be returned before it was borrowed.
func (s *borrowingService) Update(ctx context.Context, id uint, in BorrowingInput) (*model.Borrowing, error) {
	if in.BookID != nil {
		mu := s.getMutex(bookLock(*in.BookID))
		mu.Lock()
		defer mu.Unlock()
	}
	mu := s.getMutex(borrowingLock(id))
	mu.Lock()
	defer mu.Unlock()

	var updated *model.Borrowing
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		borrowing, err := tx.Borrowings().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, msgBorrowNotFound)
		}

		if in.UserID != nil {
			if err := s.ensureUser(ctx, tx, *in.UserID); err != nil {
				return err
			}
			borrowing.UserID = *in.UserID
		}
		if in.BookID != nil {
			if _, err := tx.Books().FindByIDForUpdate(ctx, *in.BookID); err != nil {
				return lookupError(err, msgBookNotFound)
			}
			borrowing.BookID = *in.BookID
		}
		if in.BorrowDate != nil {
			d, err := model.ParseDate(*in.BorrowDate)
			if err != nil {
				return errors.Validation(msgBorrowDateFormat)
			}
			borrowing.BorrowDate = d
		}
		if in.ReturnDate != nil {
			d, err := model.ParseDate(*in.ReturnDate)
			if err != nil {
				return errors.Validation(msgReturnDateFormat)
			}
			borrowing.ReturnDate = &d
		}

		if borrowing.ReturnDate != nil && borrowing.ReturnDate.Before(borrowing.BorrowDate) {
			return errors.Validation(msgReturnBeforeDate)
		}
		if in.BookID != nil {
			if err := s.ensureAvailable(ctx, tx, borrowing.BookID, id); err != nil {
				return err
			}
		}

		if err := tx.Borrowings().Update(ctx, borrowing); err != nil {
			return writeError(err, msgBorrowBookTaken, msgBorrowReference)
		}
		updated = borrowing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Return closes an active loan with today's date. Returned is terminal.
func (s *borrowingService) Return(ctx context.Context, id uint) (*model.Borrowing, error) {
	mu := s.getMutex(borrowingLock(id))
	mu.Lock()
	defer mu.Unlock()

	var returned *model.Borrowing
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		borrowing, err := tx.Borrowings().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, msgBorrowNotFound)
		}
		if !borrowing.Active() {
			return errors.Conflict(msgBorrowReturned)
		}

		today := model.NewDate(s.now())
		if today.Before(borrowing.BorrowDate) {
			return errors.Validation(msgReturnBeforeDate)
		}
		borrowing.ReturnDate = &today

		if err := tx.Borrowings().Update(ctx, borrowing); err != nil {
			return errors.Storage(err)
		}
		returned = borrowing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BorrowingReturned()
	return returned, nil
}

func (s *borrowingService) ensureUser(ctx context.Context, store repository.Store, id uint) error {
	if _, err := store.Users().FindByID(ctx, id); err != nil {
		return lookupError(err, msgUserNotFound)
	}
	return nil
}

// ensureAvailable fails when bookID has an active loan other than self.
func (s *borrowingService) ensureAvailable(ctx context.Context, store repository.Store, bookID, self uint) error {
	active, err := store.Borrowings().FindActiveByBook(ctx, bookID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return errors.Storage(err)
	}
	if active.ID != self {
		return errors.Conflict(msgBorrowBookTaken)
	}
	return nil
}

func (s *borrowingService) Get(ctx context.Context, id uint) (*model.Borrowing, error) {
	borrowing, err := s.store.Borrowings().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgBorrowNotFound)
	}
	return borrowing, nil
}

func (s *borrowingService) List(ctx context.Context) ([]model.Borrowing, error) {
	borrowings, err := s.store.Borrowings().List(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return borrowings, nil
}

func (s *borrowingService) GetByUserID(ctx context.Context, userID uint) ([]model.Borrowing, error) {
	borrowings, err := s.store.Borrowings().ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return borrowings, nil
}

func (s *borrowingService) GetByBookID(ctx context.Context, bookID uint) ([]model.Borrowing, error) {
	borrowings, err := s.store.Borrowings().ListByBook(ctx, bookID)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return borrowings, nil
}

// GetActive lists loans that have not been returned.
func (s *borrowingService) GetActive(ctx context.Context) ([]model.Borrowing, error) {
	borrowings, err := s.store.Borrowings().ListActive(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return borrowings, nil
}

func (s *borrowingService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Borrowings().Delete(ctx, id); err != nil {
		return deleteError(err, msgBorrowNotFound, "")
	}
	return nil
}
