package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"libraryapi/internal/model"
)

// AuthorRepository defines author persistence operations.
type AuthorRepository interface {
	Repository[model.Author]
	ListByCountry(ctx context.Context, country string) ([]model.Author, error)
}

type authorRepository struct {
	crud[model.Author]
}

// NewAuthorRepository creates a new author repository.
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{crud[model.Author]{db: db}}
}

// ListByCountry matches country exactly, ignoring case.
func (r *authorRepository) ListByCountry(ctx context.Context, country string) ([]model.Author, error) {
	var authors []model.Author
	if err := r.db.WithContext(ctx).
		Where("LOWER(country) = ?", strings.ToLower(country)).
		Order("id").
		Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}
