package model

import "time"

// Book represents a catalogued title. ISBN is stored normalized.
type Book struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	GenreID   uint      `json:"genre_id" gorm:"not null;index"`
	Year      int       `json:"year" gorm:"not null"`
	ISBN      string    `json:"isbn" gorm:"column:isbn;size:13;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Author Author `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT"`
	Genre  Genre  `json:"-" gorm:"foreignKey:GenreID;constraint:OnDelete:RESTRICT"`
}
