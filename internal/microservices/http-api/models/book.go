package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Book struct {
	ID                string         `gorm:"primaryKey;type:uuid" json:"id"`
	Title             string         `gorm:"not null" json:"title"`
	Author            string         `gorm:"not null" json:"author"`
	IsBorrowed        bool           `gorm:"not null;default:false" json:"is_borrowed"`
	BorrowedBy        *string        `gorm:"index" json:"borrowed_by"`
	BorrowedAt        *time.Time     `json:"borrowed_at"`
	AISummary         *string        `gorm:"type:text" json:"ai_summary"`
	AITags            pq.StringArray `gorm:"type:text[]" json:"ai_tags"`
	TotalQuantity     int            `gorm:"not null;check:total_quantity >= 1" json:"total_quantity"`
	AvailableQuantity int            `gorm:"not null;check:available_quantity >= 0 AND available_quantity <= total_quantity" json:"available_quantity"`
	CreatedAt         time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// BeforeCreate assigns the book id when the caller did not.
func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func (Book) TableName() string {
	return "books"
}

// BorrowedCount is the number of copies currently out.
func (b *Book) BorrowedCount() int {
	if n := b.TotalQuantity - b.AvailableQuantity; n > 0 {
		return n
	}
	return 0
}
