package service

import (
	"context"
	"strings"

	"libraryapi/internal/cache"
	"libraryapi/internal/errors"
	"libraryapi/internal/model"
	"libraryapi/internal/repository"
)

const (
	msgAuthorName     = "Author name must be at least 2 characters."
	msgAuthorCountry  = "Country must be at least 2 characters."
	msgAuthorNotFound = "Author not found."
	msgAuthorHasBooks = "Author has books and cannot be deleted."
)

// AuthorInput carries author fields. Nil fields are absent from the request.
type AuthorInput struct {
	Name    *string `json:"name" example:"J.K. Rowling"`
	Country *string `json:"country" example:"UK"`
}

// AuthorService handles author operations.
type AuthorService interface {
	Create(ctx context.Context, in AuthorInput) (*model.Author, error)
	Update(ctx context.Context, id uint, in AuthorInput) (*model.Author, error)
	Get(ctx context.Context, id uint) (*model.Author, error)
	List(ctx context.Context) ([]model.Author, error)
	GetByCountry(ctx context.Context, country string) ([]model.Author, error)
	Delete(ctx context.Context, id uint) error
}

type authorService struct {
	authors repository.AuthorRepository
	books   repository.BookRepository
	cache   *cache.Client
}

// NewAuthorService creates a new author service.
func NewAuthorService(authors repository.AuthorRepository, books repository.BookRepository, cache *cache.Client) AuthorService {
	return &authorService{authors: authors, books: books, cache: cache}
}

func (s *authorService) Create(ctx context.Context, in AuthorInput) (*model.Author, error) {
	if in.Name == nil || !minLen(*in.Name, 2) {
		return nil, errors.Validation(msgAuthorName)
	}
	if in.Country == nil || !minLen(*in.Country, 2) {
		return nil, errors.Validation(msgAuthorCountry)
	}

	author := &model.Author{
		Name:    strings.TrimSpace(*in.Name),
		Country: strings.TrimSpace(*in.Country),
	}
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, writeError(err, "", "")
	}
	return author, nil
}

func (s *authorService) Update(ctx context.Context, id uint, in AuthorInput) (*model.Author, error) {
	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgAuthorNotFound)
	}

	if in.Name != nil {
		if !minLen(*in.Name, 2) {
			return nil, errors.Validation(msgAuthorName)
		}
		author.Name = strings.TrimSpace(*in.Name)
	}
	if in.Country != nil {
		if !minLen(*in.Country, 2) {
			return nil, errors.Validation(msgAuthorCountry)
		}
		author.Country = strings.TrimSpace(*in.Country)
	}

	if err := s.authors.Update(ctx, author); err != nil {
		return nil, writeError(err, "", "")
	}
	_ = s.cache.Delete(ctx, cache.Key("author", id))
	return author, nil
}

// Get retrieves an author by ID with caching.
func (s *authorService) Get(ctx context.Context, id uint) (*model.Author, error) {
	var cached model.Author
	if s.cache.GetJSON(ctx, cache.Key("author", id), &cached) {
		return &cached, nil
	}

	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgAuthorNotFound)
	}
	s.cache.SetJSON(ctx, cache.Key("author", id), author, entityCacheTTL)
	return author, nil
}

func (s *authorService) List(ctx context.Context) ([]model.Author, error) {
	authors, err := s.authors.List(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return authors, nil
}

// GetByCountry matches country exactly, ignoring case.
func (s *authorService) GetByCountry(ctx context.Context, country string) ([]model.Author, error) {
	authors, err := s.authors.ListByCountry(ctx, strings.TrimSpace(country))
	if err != nil {
		return nil, errors.Storage(err)
	}
	return authors, nil
}

// Delete refuses to remove an author that books still reference.
func (s *authorService) Delete(ctx context.Context, id uint) error {
	if _, err := s.authors.FindByID(ctx, id); err != nil {
		return lookupError(err, msgAuthorNotFound)
	}
	n, err := s.books.CountByAuthor(ctx, id)
	if err != nil {
		return errors.Storage(err)
	}
	if n > 0 {
		return errors.Conflict(msgAuthorHasBooks)
	}

	if err := s.authors.Delete(ctx, id); err != nil {
		return deleteError(err, msgAuthorNotFound, msgAuthorHasBooks)
	}
	_ = s.cache.Delete(ctx, cache.Key("author", id))
	return nil
}
