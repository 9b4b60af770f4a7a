package repository

import (
	"context"

	"gorm.io/gorm"

	"libraryapi/internal/model"
)

// GenreRepository defines genre persistence operations.
type GenreRepository interface {
	Repository[model.Genre]
	FindByNameKey(ctx context.Context, key string) (*model.Genre, error)
}

type genreRepository struct {
	crud[model.Genre]
}

// NewGenreRepository creates a new genre repository.
func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{crud[model.Genre]{db: db}}
}

// FindByNameKey finds a genre by its lower-cased name.
func (r *genreRepository) FindByNameKey(ctx context.Context, key string) (*model.Genre, error) {
	var genre model.Genre
	if err := r.db.WithContext(ctx).Where("name_key = ?", key).First(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}
