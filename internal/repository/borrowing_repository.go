package repository

import (
	"context"

	"gorm.io/gorm"

	"libraryapi/internal/model"
)

// BorrowingRepository defines borrowing persistence operations.
type BorrowingRepository interface {
	Repository[model.Borrowing]
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Borrowing, error)
	// FindActiveByBook returns gorm.ErrRecordNotFound when the book is not on loan.
	FindActiveByBook(ctx context.Context, bookID uint) (*model.Borrowing, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Borrowing, error)
	ListByBook(ctx context.Context, bookID uint) ([]model.Borrowing, error)
	ListActive(ctx context.Context) ([]model.Borrowing, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountByBook(ctx context.Context, bookID uint) (int64, error)
}

type borrowingRepository struct {
	crud[model.Borrowing]
}

// NewBorrowingRepository creates a new borrowing repository.
func NewBorrowingRepository(db *gorm.DB) BorrowingRepository {
	return &borrowingRepository{crud[model.Borrowing]{db: db}}
}

// FindByIDForUpdate finds a borrowing by ID with row-level lock for update.
func (r *borrowingRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Borrowing, error) {
	var borrowing model.Borrowing
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&borrowing).Error; err != nil {
		return nil, err
	}
	return &borrowing, nil
}

func (r *borrowingRepository) FindActiveByBook(ctx context.Context, bookID uint) (*model.Borrowing, error) {
	var borrowing model.Borrowing
	if err := r.db.WithContext(ctx).
		Where("book_id = ? AND return_date IS NULL", bookID).
		First(&borrowing).Error; err != nil {
		return nil, err
	}
	return &borrowing, nil
}

func (r *borrowingRepository) ListByUser(ctx context.Context, userID uint) ([]model.Borrowing, error) {
	var borrowings []model.Borrowing
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&borrowings).Error; err != nil {
		return nil, err
	}
	return borrowings, nil
}

func (r *borrowingRepository) ListByBook(ctx context.Context, bookID uint) ([]model.Borrowing, error) {
	var borrowings []model.Borrowing
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("id").Find(&borrowings).Error; err != nil {
		return nil, err
	}
	return borrowings, nil
}

// ListActive lists borrowings that have not been returned.
func (r *borrowingRepository) ListActive(ctx context.Context) ([]model.Borrowing, error) {
	var borrowings []model.Borrowing
	if err := r.db.WithContext(ctx).Where("return_date IS NULL").Order("id").Find(&borrowings).Error; err != nil {
		return nil, err
	}
	return borrowings, nil
}

func (r *borrowingRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Borrowing{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *borrowingRepository) CountByBook(ctx context.Context, bookID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Borrowing{}).Where("book_id = ?", bookID).Count(&n).Error
	return n, err
}
