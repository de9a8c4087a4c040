package dto

import (
	"time"

	"libraryhub/internal/microservices/http-api/models"
)

// CreateBookRequest: payload to add a title to the catalog
type CreateBookRequest struct {
	Title         string   `json:"title" binding:"required"`
	Author        string   `json:"author" binding:"required"`
	TotalQuantity int      `json:"total_quantity" binding:"required,min=1"`
	AISummary     string   `json:"ai_summary"`
	AITags        []string `json:"ai_tags" binding:"max=20"`
}

// BorrowRequest: contact details recorded on the borrower's profile
type BorrowRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

// BorrowerResponse: public contact of the current borrower
type BorrowerResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// BookResponse: persisted book fields plus derived display data
type BookResponse struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Author            string            `json:"author"`
	IsBorrowed        bool              `json:"is_borrowed"`
	BorrowedBy        *string           `json:"borrowed_by"`
	BorrowedAt        *time.Time        `json:"borrowed_at"`
	AISummary         *string           `json:"ai_summary"`
	AITags            []string          `json:"ai_tags"`
	TotalQuantity     int               `json:"total_quantity"`
	AvailableQuantity int               `json:"available_quantity"`
	BorrowedCount     int               `json:"borrowed_count"`
	CreatedAt         time.Time         `json:"created_at"`
	Borrower          *BorrowerResponse `json:"borrower,omitempty"`
}

// BookListResponse: catalog listing
type BookListResponse struct {
	Items []BookResponse `json:"items"`
	Total int            `json:"total"`
}

// LoanResponse: an outstanding loan
type LoanResponse struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	BorrowerID string    `json:"borrower_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
}

// ProfileResponse: the authenticated user's profile and effective role
type ProfileResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

func FromBookModel(b models.Book, borrower *models.Profile) BookResponse {
	tags := []string(b.AITags)
	if tags == nil {
		tags = []string{}
	}
	resp := BookResponse{
		ID:                b.ID,
		Title:             b.Title,
		Author:            b.Author,
		IsBorrowed:        b.IsBorrowed,
		BorrowedBy:        b.BorrowedBy,
		BorrowedAt:        b.BorrowedAt,
		AISummary:         b.AISummary,
		AITags:            tags,
		TotalQuantity:     b.TotalQuantity,
		AvailableQuantity: b.AvailableQuantity,
		BorrowedCount:     b.BorrowedCount(),
		CreatedAt:         b.CreatedAt,
	}
	if borrower != nil {
		resp.Borrower = &BorrowerResponse{
			ID:       borrower.ID,
			FullName: borrower.FullName,
			Email:    borrower.Email,
			Phone:    borrower.Phone,
		}
	}
	return resp
}

func FromLoanModel(l models.Loan) LoanResponse {
	return LoanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		BorrowerID: l.BorrowerID,
		BorrowedAt: l.BorrowedAt,
	}
}
