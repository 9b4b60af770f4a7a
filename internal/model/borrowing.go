package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// BorrowingStatus is the lifecycle state of a borrowing.
type BorrowingStatus string

const (
	BorrowingStatusActive   BorrowingStatus = "active"
	BorrowingStatusReturned BorrowingStatus = "returned"
)

// Borrowing represents a loan of a book to a user.
// A borrowing is active until ReturnDate is set; returned is terminal.
type Borrowing struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	UserID     uint  `json:"user_id" gorm:"not null;index"`
	BookID     uint  `json:"book_id" gorm:"not null;index"`
	BorrowDate Date  `json:"borrow_date" gorm:"type:varchar(10);not null"`
	ReturnDate *Date `json:"return_date" gorm:"type:varchar(10);index"`
	// ActiveBookID mirrors BookID while the loan is active and is NULL afterwards,
	// so its unique index admits at most one active loan per book.
	ActiveBookID *uint     `json:"-" gorm:"uniqueIndex"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Book Book `json:"-" gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT"`
}

// Active reports whether the book has not been returned yet.
func (b *Borrowing) Active() bool {
	return b.ReturnDate == nil
}

// Status returns the lifecycle state.
func (b *Borrowing) Status() BorrowingStatus {
	if b.Active() {
		return BorrowingStatusActive
	}
	return BorrowingStatusReturned
}

// BeforeSave keeps ActiveBookID in sync with the lifecycle state.
func (b *Borrowing) BeforeSave(tx *gorm.DB) error {
	if b.Active() {
		id := b.BookID
		b.ActiveBookID = &id
	} else {
		b.ActiveBookID = nil
	}
	return nil
}

// MarshalJSON adds the derived status to the stored fields.
func (b Borrowing) MarshalJSON() ([]byte, error) {
	type alias Borrowing
	return json.Marshal(struct {
		alias
		Status BorrowingStatus `json:"status"`
	}{alias(b), b.Status()})
}
