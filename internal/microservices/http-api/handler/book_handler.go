package handler

import (
	"context"
	"net/http"
	"time"

	"libraryhub/internal/microservices/http-api/dto"
	"libraryhub/internal/microservices/http-api/middleware"
	"libraryhub/internal/microservices/http-api/models"
	"libraryhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

type BookHandler struct {
	svc service.LedgerService
}

func NewBookHandler(svc service.LedgerService) *BookHandler {
	return &BookHandler{svc: svc}
}

// RegisterRoutes expects OptionalAuth and LoadCaller to run on rg.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := middleware.RequireRole(models.RoleAdmin, models.RoleLibrarian)

	rg.GET("", h.List)
	rg.POST("", manage, h.Create)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", manage, h.Delete)
	rg.POST("/:id/borrow", h.Borrow)
	rg.POST("/:id/return", h.Return)
	rg.GET("/:id/loans", h.Loans)
}

// List the catalog, newest first, optionally filtered by ?q= on title or author
func (h *BookHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	views, err := h.svc.ListBooks(ctx, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.BookResponse, 0, len(views))
	for _, v := range views {
		items = append(items, dto.FromBookModel(v.Book, v.Borrower))
	}
	c.JSON(http.StatusOK, dto.BookListResponse{Items: items, Total: len(items)})
}

func (h *BookHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	v, err := h.svc.GetBook(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBookModel(v.Book, v.Borrower))
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.svc.CreateBook(ctx, middleware.CallerFrom(c), service.CreateBookInput{
		Title:         req.Title,
		Author:        req.Author,
		TotalQuantity: req.TotalQuantity,
		AISummary:     req.AISummary,
		AITags:        req.AITags,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromBookModel(*book, nil))
}

// Delete is unconditional; unknown ids also answer 204
func (h *BookHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.DeleteBook(ctx, middleware.CallerFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookHandler) Borrow(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if !caller.Authenticated() {
		respondError(c, service.ErrAuthRequired)
		return
	}

	var req dto.BorrowRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.svc.Borrow(ctx, caller, c.Param("id"), service.BorrowerContact{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBookModel(*book, nil))
}

func (h *BookHandler) Return(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.svc.Return(ctx, middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBookModel(*book, nil))
}

func (h *BookHandler) Loans(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	loans, err := h.svc.OpenLoans(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.LoanResponse, 0, len(loans))
	for _, l := range loans {
		items = append(items, dto.FromLoanModel(l))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}
