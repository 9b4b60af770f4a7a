package repository

import (
	"context"

	"gorm.io/gorm"

	"libraryapi/internal/model"
)

// BookRepository defines book persistence operations.
type BookRepository interface {
	Repository[model.Book]
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]model.Book, error)
	ListByGenre(ctx context.Context, genreID uint) ([]model.Book, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	CountByGenre(ctx context.Context, genreID uint) (int64, error)
}

type bookRepository struct {
	crud[model.Book]
}

// NewBookRepository creates a new book repository.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{crud[model.Book]{db: db}}
}

// FindByIDForUpdate finds a book by ID with row-level lock for update.
func (r *bookRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByISBN finds a book by its normalized ISBN.
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) ListByAuthor(ctx context.Context, authorID uint) ([]model.Book, error) {
	var books []model.Book
	if err := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) ListByGenre(ctx context.Context, genreID uint) ([]model.Book, error) {
	var books []model.Book
	if err := r.db.WithContext(ctx).Where("genre_id = ?", genreID).Order("id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Book{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (r *bookRepository) CountByGenre(ctx context.Context, genreID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Book{}).Where("genre_id = ?", genreID).Count(&n).Error
	return n, err
}
