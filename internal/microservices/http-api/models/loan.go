package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Loan is one copy of a book held by one borrower. ReturnedAt is nil while the loan is open.
type Loan struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	BookID     string     `gorm:"type:uuid;not null;index" json:"book_id"`
	BorrowerID string     `gorm:"not null;index" json:"borrower_id"`
	BorrowedAt time.Time  `gorm:"not null;index" json:"borrowed_at"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at,omitempty"`

	// Associations
	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

func (l *Loan) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return
}

func (Loan) TableName() string {
	return "loans"
}

func (l *Loan) IsOpen() bool {
	return l.ReturnedAt == nil
}
