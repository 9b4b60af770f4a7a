package service

import (
	"context"

	"libraryapi/internal/cache"
	"libraryapi/internal/errors"
	"libraryapi/internal/model"
	"libraryapi/internal/repository"
)

const (
	msgGenreName     = "Genre name must be at least 2 characters."
	msgGenreExists   = "Genre name already exists."
	msgGenreNotFound = "Genre not found."
	msgGenreHasBooks = "Genre has books and cannot be deleted."
)

// GenreInput carries genre fields. Nil fields are absent from the request.
type GenreInput struct {
	Name *string `json:"name" example:"fantasy"`
}

// GenreService handles genre operations.
type GenreService interface {
	Create(ctx context.Context, in GenreInput) (*model.Genre, error)
	Update(ctx context.Context, id uint, in GenreInput) (*model.Genre, error)
	Get(ctx context.Context, id uint) (*model.Genre, error)
	List(ctx context.Context) ([]model.Genre, error)
	Delete(ctx context.Context, id uint) error
}

type genreService struct {
	genres repository.GenreRepository
	books  repository.BookRepository
	cache  *cache.Client
}

// NewGenreService creates a new genre service.
func NewGenreService(genres repository.GenreRepository, books repository.BookRepository, cache *cache.Client) GenreService {
	return &genreService{genres: genres, books: books, cache: cache}
}

// Create stores a genre under its capitalized name. Names are unique ignoring case.
func (s *genreService) Create(ctx context.Context, in GenreInput) (*model.Genre, error) {
	if in.Name == nil || !minLen(*in.Name, 2) {
		return nil, errors.Validation(msgGenreName)
	}
	if err := s.ensureUniqueName(ctx, *in.Name, 0); err != nil {
		return nil, err
	}

	genre := &model.Genre{Name: capitalize(*in.Name)}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, writeError(err, msgGenreExists, "")
	}
	return genre, nil
}

func (s *genreService) Update(ctx context.Context, id uint, in GenreInput) (*model.Genre, error) {
	genre, err := s.genres.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgGenreNotFound)
	}

	if in.Name != nil {
		if !minLen(*in.Name, 2) {
			return nil, errors.Validation(msgGenreName)
		}
		if err := s.ensureUniqueName(ctx, *in.Name, id); err != nil {
			return nil, err
		}
		genre.Name = capitalize(*in.Name)
	}

	if err := s.genres.Update(ctx, genre); err != nil {
		return nil, writeError(err, msgGenreExists, "")
	}
	_ = s.cache.Delete(ctx, cache.Key("genre", id))
	return genre, nil
}

// ensureUniqueName fails when another genre already uses name in any case.
func (s *genreService) ensureUniqueName(ctx context.Context, name string, self uint) error {
	existing, err := s.genres.FindByNameKey(ctx, model.GenreKey(name))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return errors.Storage(err)
	}
	if existing.ID != self {
		return errors.Conflict(msgGenreExists)
	}
	return nil
}

// Get retrieves a genre by ID with caching.
func (s *genreService) Get(ctx context.Context, id uint) (*model.Genre, error) {
	var cached model.Genre
	if s.cache.GetJSON(ctx, cache.Key("genre", id), &cached) {
		return &cached, nil
	}

	genre, err := s.genres.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgGenreNotFound)
	}
	s.cache.SetJSON(ctx, cache.Key("genre", id), genre, entityCacheTTL)
	return genre, nil
}

func (s *genreService) List(ctx context.Context) ([]model.Genre, error) {
	genres, err := s.genres.List(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return genres, nil
}

// Delete refuses to remove a genre that books still reference.
func (s *genreService) Delete(ctx context.Context, id uint) error {
	if _, err := s.genres.FindByID(ctx, id); err != nil {
		return lookupError(err, msgGenreNotFound)
	}
	n, err := s.books.CountByGenre(ctx, id)
	if err != nil {
		return errors.Storage(err)
	}
	if n > 0 {
		return errors.Conflict(msgGenreHasBooks)
	}

	if err := s.genres.Delete(ctx, id); err != nil {
		return deleteError(err, msgGenreNotFound, msgGenreHasBooks)
	}
	_ = s.cache.Delete(ctx, cache.Key("genre", id))
	return nil
}
