package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"libraryhub/internal/microservices/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleCounter means the guarded update matched no row: available_quantity
	// (or the loan being closed) changed after it was read.
	ErrStaleCounter = errors.New("available quantity changed since it was read")
	// ErrCheckViolation is returned when the database rejects a counter outside its bounds.
	ErrCheckViolation = errors.New("quantity constraint violated")
)

// BookListParams filters the catalog listing.
type BookListParams struct {
	Query string // case-insensitive substring of title or author
}

// BorrowUpdate decrements the counter of BookID from ExpectedAvailable and records Loan.
type BorrowUpdate struct {
	BookID            string
	ExpectedAvailable int
	Loan              *models.Loan
}

// ReturnUpdate moves the counter of BookID from ExpectedAvailable to NextAvailable and
// closes LoanID. LoanID may be empty for copies that were lent before loans were recorded.
type ReturnUpdate struct {
	BookID            string
	ExpectedAvailable int
	NextAvailable     int
	LoanID            string
	ReturnedAt        time.Time
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id string) (*models.Book, error)
	List(ctx context.Context, params BookListParams) ([]models.Book, error)
	Delete(ctx context.Context, id string) error
	ApplyBorrow(ctx context.Context, u BorrowUpdate) (*models.Book, error)
	ApplyReturn(ctx context.Context, u ReturnUpdate) (*models.Book, error)
	OpenLoans(ctx context.Context, bookID string) ([]models.Loan, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", translateError(err))
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, translateError(err))
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, params BookListParams) ([]models.Book, error) {
	var books []models.Book

	q := r.db.WithContext(ctx).Model(&models.Book{})
	if term := strings.ToLower(strings.TrimSpace(params.Query)); term != "" {
		p := "%" + escapeLike(term) + "%"
		q = q.Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(author) LIKE ? ESCAPE '\\'", p, p)
	}

	if err := q.Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Delete removes the book and its loan history. Missing or malformed ids are not an error.
func (r *bookRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&models.Loan{}).Error; err != nil {
			return fmt.Errorf("delete loans of book %s: %w", id, translateError(err))
		}
		if err := tx.Where("id = ?", id).Delete(&models.Book{}).Error; err != nil {
			return fmt.Errorf("delete book %s: %w", id, translateError(err))
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (r *bookRepository) ApplyBorrow(ctx context.Context, u BorrowUpdate) (*models.Book, error) {
	if u.Loan == nil {
		return nil, errors.New("apply borrow: loan is required")
	}
	next := u.ExpectedAvailable - 1
	if next < 0 {
		return nil, fmt.Errorf("apply borrow: %w", ErrCheckViolation)
	}

	var book models.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u.Loan.BookID = u.BookID

		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_quantity = ?", u.BookID, u.ExpectedAvailable).
			Updates(map[string]any{
				"available_quantity": next,
				"is_borrowed":        next == 0,
				"borrowed_by":        u.Loan.BorrowerID,
				"borrowed_at":        u.Loan.BorrowedAt,
			})
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleCounter
		}

		if err := tx.Create(u.Loan).Error; err != nil {
			return fmt.Errorf("record loan: %w", translateError(err))
		}
		return tx.First(&book, "id = ?", u.BookID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("apply borrow to book %s: %w", u.BookID, err)
	}
	return &book, nil
}

func (r *bookRepository) ApplyReturn(ctx context.Context, u ReturnUpdate) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Book
		if err := tx.Select("total_quantity").First(&current, "id = ?", u.BookID).Error; err != nil {
			return translateError(err)
		}
		if u.NextAvailable < 0 || u.NextAvailable > current.TotalQuantity {
			return ErrCheckViolation
		}

		if u.LoanID != "" {
			res := tx.Model(&models.Loan{}).
				Where("id = ? AND book_id = ? AND returned_at IS NULL", u.LoanID, u.BookID).
				Update("returned_at", u.ReturnedAt)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStaleCounter
			}
		}

		// the display borrower becomes the most recent loan still open
		var latest []models.Loan
		if err := tx.Where("book_id = ? AND returned_at IS NULL", u.BookID).
			Order("borrowed_at DESC").
			Limit(1).
			Find(&latest).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"available_quantity": u.NextAvailable,
			"is_borrowed":        u.NextAvailable == 0,
			"borrowed_by":        nil,
			"borrowed_at":        nil,
		}
		if len(latest) > 0 {
			updates["borrowed_by"] = latest[0].BorrowerID
			updates["borrowed_at"] = latest[0].BorrowedAt
		}

		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_quantity = ?", u.BookID, u.ExpectedAvailable).
			Updates(updates)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleCounter
		}
		return tx.First(&book, "id = ?", u.BookID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("apply return to book %s: %w", u.BookID, err)
	}
	return &book, nil
}

// OpenLoans lists outstanding loans of a book, oldest first.
func (r *bookRepository) OpenLoans(ctx context.Context, bookID string) ([]models.Loan, error) {
	var loans []models.Loan
	if err := r.db.WithContext(ctx).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Order("borrowed_at ASC").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("list open loans of book %s: %w", bookID, translateError(err))
	}
	return loans, nil
}

// translateError maps driver errors onto repository sentinels.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514": // check_violation
			return fmt.Errorf("%w: %s", ErrCheckViolation, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		case "22P02": // invalid_text_representation, e.g. a malformed uuid
			return ErrNotFound
		}
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
