package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the entity repositories behind one connection so that
// cross-entity checks can run inside a single transaction.
type Store interface {
	Users() UserRepository
	Authors() AuthorRepository
	Genres() GenreRepository
	Books() BookRepository
	Borrowings() BorrowingRepository
	// WithTransaction executes fn with a Store bound to one database transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db         *gorm.DB
	users      UserRepository
	authors    AuthorRepository
	genres     GenreRepository
	books      BookRepository
	borrowings BorrowingRepository
}

// NewStore creates a GORM-backed Store.
func NewStore(db *gorm.DB) Store {
	return &store{
		db:         db,
		users:      NewUserRepository(db),
		authors:    NewAuthorRepository(db),
		genres:     NewGenreRepository(db),
		books:      NewBookRepository(db),
		borrowings: NewBorrowingRepository(db),
	}
}

func (s *store) Users() UserRepository           { return s.users }
func (s *store) Authors() AuthorRepository       { return s.authors }
func (s *store) Genres() GenreRepository         { return s.genres }
func (s *store) Books() BookRepository           { return s.books }
func (s *store) Borrowings() BorrowingRepository { return s.borrowings }

// WithTransaction executes a function within a database transaction.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
}
