package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"libraryapi/internal/errors"
	"libraryapi/internal/model"
	"libraryapi/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed catalog.json
var defaultCatalog []byte

// Catalog is the seed file format. Books reference authors and genres by name.
type Catalog struct {
	Authors []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"authors"`
	Genres []string `json:"genres"`
	Books  []struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		Genre  string `json:"genre"`
		Year   int    `json:"year"`
		ISBN   string `json:"isbn"`
	} `json:"books"`
}

// SeedResult counts what a catalog import did.
type SeedResult struct {
	Created int
	Skipped int
}

// loadCatalog reads path, or the bundled sample catalog when path is empty.
func loadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

type catalogSeeder struct {
	authors service.AuthorService
	genres  service.GenreService
	books   service.BookService
}

// Seed imports c through the services. Entries that already exist are skipped.
func (s *catalogSeeder) Seed(ctx context.Context, c *Catalog) (SeedResult, error) {
	var res SeedResult

	authorIDs, err := s.seedAuthors(ctx, c, &res)
	if err != nil {
		return res, err
	}
	genreIDs, err := s.seedGenres(ctx, c, &res)
	if err != nil {
		return res, err
	}

	for _, b := range c.Books {
		authorID, ok := authorIDs[b.Author]
		if !ok {
			return res, fmt.Errorf("book %q: unknown author %q", b.Title, b.Author)
		}
		genreID, ok := genreIDs[model.GenreKey(b.Genre)]
		if !ok {
			return res, fmt.Errorf("book %q: unknown genre %q", b.Title, b.Genre)
		}

		title, isbn, year := b.Title, b.ISBN, b.Year
		_, err := s.books.Create(ctx, service.BookInput{
			Title:    &title,
			AuthorID: &authorID,
			GenreID:  &genreID,
			Year:     &year,
			ISBN:     &isbn,
		})
		switch {
		case errors.KindOf(err) == errors.KindConflict:
			log.Printf("book %q already present, skipping", b.Title)
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("book %q: %w", b.Title, err)
		default:
			res.Created++
		}
	}
	return res, nil
}

func (s *catalogSeeder) seedAuthors(ctx context.Context, c *Catalog, res *SeedResult) (map[string]uint, error) {
	existing, err := s.authors.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(existing))
	for _, a := range existing {
		ids[a.Name] = a.ID
	}

	for _, a := range c.Authors {
		name := strings.TrimSpace(a.Name)
		if _, ok := ids[name]; ok {
			res.Skipped++
			continue
		}
		country := a.Country
		author, err := s.authors.Create(ctx, service.AuthorInput{Name: &name, Country: &country})
		if err != nil {
			return nil, fmt.Errorf("author %q: %w", a.Name, err)
		}
		ids[author.Name] = author.ID
		res.Created++
	}
	return ids, nil
}

func (s *catalogSeeder) seedGenres(ctx context.Context, c *Catalog, res *SeedResult) (map[string]uint, error) {
	existing, err := s.genres.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(existing))
	for _, g := range existing {
		ids[model.GenreKey(g.Name)] = g.ID
	}

	for _, name := range c.Genres {
		if _, ok := ids[model.GenreKey(name)]; ok {
			res.Skipped++
			continue
		}
		name := name
		genre, err := s.genres.Create(ctx, service.GenreInput{Name: &name})
		if err != nil {
			return nil, fmt.Errorf("genre %q: %w", name, err)
		}
		ids[model.GenreKey(genre.Name)] = genre.ID
		res.Created++
	}
	return ids, nil
}
