package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/db/dbtest"
	"libraryapi/internal/repository"
	"libraryapi/internal/service"
)

func newSeeder(t *testing.T) (*catalogSeeder, repository.Store) {
	t.Helper()
	store := repository.NewStore(dbtest.Open(t))
	return &catalogSeeder{
		authors: service.NewAuthorService(store.Authors(), store.Books(), nil),
		genres:  service.NewGenreService(store.Genres(), store.Books(), nil),
		books:   service.NewBookService(store, nil),
	}, store
}

func TestSeed_BundledCatalogIsIdempotent(t *testing.T) {
	seeder, store := newSeeder(t)
	ctx := context.Background()
	catalog, err := loadCatalog("")
	require.NoError(t, err)

	first, err := seeder.Seed(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, len(catalog.Authors)+len(catalog.Genres)+len(catalog.Books), first.Created)
	assert.Zero(t, first.Skipped)

	second, err := seeder.Seed(ctx, catalog)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, first.Created, second.Skipped)

	books, err := store.Books().List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, len(catalog.Books))
	assert.Equal(t, "0747532699", books[0].ISBN)
}

func TestSeed_UnknownAuthor(t *testing.T) {
	seeder, _ := newSeeder(t)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"genres": ["Poetry"],
		"books": [{"title": "Odes", "author": "Nobody", "genre": "poetry", "year": 1820, "isbn": "0140424261"}]
	}`), 0o600))

	catalog, err := loadCatalog(path)
	require.NoError(t, err)

	_, err = seeder.Seed(context.Background(), catalog)
	assert.ErrorContains(t, err, `unknown author "Nobody"`)
}

func TestLoadCatalog_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := loadCatalog(path)
	assert.ErrorContains(t, err, "parse catalog")
}
