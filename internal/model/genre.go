package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Genre represents a book genre. Names are unique regardless of case.
type Genre struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	NameKey   string    `json:"-" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenreKey is the case-insensitive identity of a genre name.
func GenreKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BeforeSave keeps NameKey in sync with Name.
func (g *Genre) BeforeSave(tx *gorm.DB) error {
	g.NameKey = GenreKey(g.Name)
	return nil
}
