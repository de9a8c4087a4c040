package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"libraryhub/internal/microservices/http-api/models"
	"libraryhub/internal/microservices/http-api/repository"
)

// maxBookTags caps the tags stored on a book.
const maxBookTags = 6

// returnAttempts bounds how often a return is re-read and retried after losing a race.
const returnAttempts = 3

// Caller is the identity performing a ledger operation. An empty UserID is anonymous.
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) Authenticated() bool {
	return strings.TrimSpace(c.UserID) != ""
}

type CreateBookInput struct {
	Title         string
	Author        string
	TotalQuantity int
	AISummary     string
	AITags        []string
}

type BorrowerContact struct {
	FullName string
	Email    string
	Phone    string
}

// BookView is a catalog entry joined with the profile of its current borrower.
type BookView struct {
	Book     models.Book
	Borrower *models.Profile
}

type LedgerService interface {
	CreateBook(ctx context.Context, caller Caller, in CreateBookInput) (*models.Book, error)
	Borrow(ctx context.Context, caller Caller, bookID string, contact BorrowerContact) (*models.Book, error)
	Return(ctx context.Context, caller Caller, bookID string) (*models.Book, error)
	DeleteBook(ctx context.Context, caller Caller, bookID string) error

	ListBooks(ctx context.Context, query string) ([]BookView, error)
	GetBook(ctx context.Context, bookID string) (*BookView, error)
	OpenLoans(ctx context.Context, bookID string) ([]models.Loan, error)
	ResolveCaller(ctx context.Context, userID string) (Caller, *models.Profile, error)
}

type ledgerService struct {
	books    repository.BookRepository
	profiles repository.ProfileRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewLedgerService(books repository.BookRepository, profiles repository.ProfileRepository) LedgerService {
	return &ledgerService{
		books:    books,
		profiles: profiles,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

func (s *ledgerService) CreateBook(ctx context.Context, caller Caller, in CreateBookInput) (*models.Book, error) {
	if err := requireCatalogRole(caller); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	if author == "" {
		return nil, invalid("author", "is required")
	}
	if in.TotalQuantity < 1 {
		return nil, invalid("total_quantity", "must be at least 1")
	}

	book := &models.Book{
		Title:             title,
		Author:            author,
		TotalQuantity:     in.TotalQuantity,
		AvailableQuantity: in.TotalQuantity,
		IsBorrowed:        false,
	}
	if summary := strings.TrimSpace(in.AISummary); summary != "" {
		book.AISummary = &summary
	}
	if tags := normalizeTags(in.AITags); len(tags) > 0 {
		book.AITags = tags
	}

	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info("book_created",
		"book_id", book.ID,
		"user_id", caller.UserID,
		"total_quantity", book.TotalQuantity,
	)
	return book, nil
}

func (s *ledgerService) Borrow(ctx context.Context, caller Caller, bookID string, contact BorrowerContact) (*models.Book, error) {
	if !caller.Authenticated() {
		return nil, ErrAuthRequired
	}

	contact = BorrowerContact{
		FullName: strings.TrimSpace(contact.FullName),
		Email:    strings.TrimSpace(contact.Email),
		Phone:    strings.TrimSpace(contact.Phone),
	}
	switch {
	case contact.FullName == "":
		return nil, invalid("full_name", "is required")
	case contact.Email == "":
		return nil, invalid("email", "is required")
	case contact.Phone == "":
		return nil, invalid("phone", "is required")
	}

	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableQuantity <= 0 {
		return nil, ErrOutOfStock
	}

	if err := s.profiles.Upsert(ctx, &models.Profile{
		ID:       caller.UserID,
		FullName: contact.FullName,
		Email:    contact.Email,
		Phone:    contact.Phone,
	}); err != nil {
		return nil, err
	}

	updated, err := s.books.ApplyBorrow(ctx, repository.BorrowUpdate{
		BookID:            book.ID,
		ExpectedAvailable: book.AvailableQuantity,
		Loan: &models.Loan{
			BorrowerID: caller.UserID,
			BorrowedAt: s.now().UTC(),
		},
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleCounter) {
			// another session changed the counter first; the caller has to re-fetch
			s.logger.Warn("borrow_lost_race", "book_id", book.ID, "user_id", caller.UserID)
			return nil, ErrOutOfStock
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.logger.Info("book_borrowed",
		"book_id", updated.ID,
		"user_id", caller.UserID,
		"available_quantity", updated.AvailableQuantity,
	)
	return updated, nil
}

func (s *ledgerService) Return(ctx context.Context, caller Caller, bookID string) (*models.Book, error) {
	if !caller.Authenticated() {
		return nil, ErrAuthRequired
	}

	for attempt := 1; attempt <= returnAttempts; attempt++ {
		book, err := s.getBook(ctx, bookID)
		if err != nil {
			return nil, err
		}
		if book.AvailableQuantity >= book.TotalQuantity {
			// nothing is out, returning again is a no-op
			return book, nil
		}

		loans, err := s.books.OpenLoans(ctx, book.ID)
		if err != nil {
			return nil, err
		}

		updated, err := s.books.ApplyReturn(ctx, repository.ReturnUpdate{
			BookID:            book.ID,
			ExpectedAvailable: book.AvailableQuantity,
			NextAvailable:     min(book.AvailableQuantity+1, book.TotalQuantity),
			LoanID:            pickLoan(loans, caller.UserID),
			ReturnedAt:        s.now().UTC(),
		})
		if err == nil {
			s.logger.Info("book_returned",
				"book_id", updated.ID,
				"user_id", caller.UserID,
				"available_quantity", updated.AvailableQuantity,
			)
			return updated, nil
		}
		if !errors.Is(err, repository.ErrStaleCounter) {
			return nil, err
		}
		s.logger.Warn("return_lost_race", "book_id", book.ID, "attempt", attempt)
	}
	return nil, ErrConflict
}

func (s *ledgerService) DeleteBook(ctx context.Context, caller Caller, bookID string) error {
	if err := requireCatalogRole(caller); err != nil {
		return err
	}
	if err := s.books.Delete(ctx, bookID); err != nil {
		return err
	}
	s.logger.Info("book_deleted", "book_id", bookID, "user_id", caller.UserID)
	return nil
}

func (s *ledgerService) ListBooks(ctx context.Context, query string) ([]BookView, error) {
	books, err := s.books.List(ctx, repository.BookListParams{Query: query})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, b := range books {
		if b.BorrowedBy != nil && !seen[*b.BorrowedBy] {
			seen[*b.BorrowedBy] = true
			ids = append(ids, *b.BorrowedBy)
		}
	}

	byID := make(map[string]models.Profile, len(ids))
	if len(ids) > 0 {
		profiles, err := s.profiles.FindByIDs(ctx, ids)
		if err != nil {
			// the catalog is still useful without borrower names
			s.logger.Error("borrower_profiles_failed", "error", err)
		}
		for _, p := range profiles {
			byID[p.ID] = p
		}
	}

	views := make([]BookView, 0, len(books))
	for _, b := range books {
		v := BookView{Book: b}
		if b.BorrowedBy != nil {
			if p, ok := byID[*b.BorrowedBy]; ok {
				v.Borrower = &p
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *ledgerService) GetBook(ctx context.Context, bookID string) (*BookView, error) {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	v := &BookView{Book: *book}
	if book.BorrowedBy != nil {
		if p, err := s.profiles.FindByID(ctx, *book.BorrowedBy); err == nil {
			v.Borrower = p
		}
	}
	return v, nil
}

func (s *ledgerService) OpenLoans(ctx context.Context, bookID string) ([]models.Loan, error) {
	if _, err := s.getBook(ctx, bookID); err != nil {
		return nil, err
	}
	return s.books.OpenLoans(ctx, bookID)
}

// ResolveCaller loads the role of userID from its profile. Users without a profile are members.
func (s *ledgerService) ResolveCaller(ctx context.Context, userID string) (Caller, *models.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Caller{Role: models.RoleMember}, nil, nil
	}
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Caller{UserID: userID, Role: models.RoleMember}, nil, nil
		}
		return Caller{}, nil, err
	}
	return Caller{UserID: userID, Role: models.NormalizeRole(profile.Role)}, profile, nil
}

func (s *ledgerService) getBook(ctx context.Context, bookID string) (*models.Book, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, invalid("id", "is required")
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return book, nil
}

// normalizeTags trims tags and drops blanks and duplicates, keeping the first occurrence,
// up to maxBookTags.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, min(len(tags), maxBookTags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == maxBookTags {
			break
		}
	}
	return out
}

func requireCatalogRole(caller Caller) error {
	if !caller.Authenticated() {
		return ErrAuthRequired
	}
	if !models.CanManageCatalog(models.NormalizeRole(caller.Role)) {
		return ErrForbidden
	}
	return nil
}

// pickLoan prefers the caller's oldest open loan, then the oldest open loan overall.
// loans must be ordered oldest first.
func pickLoan(loans []models.Loan, userID string) string {
	for _, l := range loans {
		if l.BorrowerID == userID {
			return l.ID
		}
	}
	if len(loans) > 0 {
		return loans[0].ID
	}
	return ""
}
