package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"libraryhub/internal/microservices/http-api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBooks_SendsQueryAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "dune & co", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(dto.BookListResponse{
			Items: []dto.BookResponse{{ID: "b1", Title: "Dune"}},
			Total: 1,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/")
	c.SetToken("tok")

	books, err := c.ListBooks(context.Background(), "dune & co")
	require.NoError(t, err)
	assert.Equal(t, 1, books.Total)
	assert.Equal(t, "Dune", books.Items[0].Title)
}

func TestBorrow_SendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/books/b1/borrow", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req dto.BorrowRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ada Lovelace", req.FullName)

		_ = json.NewEncoder(w).Encode(dto.BookResponse{ID: "b1", AvailableQuantity: 0, TotalQuantity: 1, IsBorrowed: true})
	}))
	defer srv.Close()

	book, err := NewHTTPClient(srv.URL).Borrow(context.Background(), "b1", dto.BorrowRequest{
		FullName: "Ada Lovelace", Email: "ada@example.com", Phone: "555",
	})
	require.NoError(t, err)
	assert.True(t, book.IsBorrowed)
}

func TestDo_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "no copies available"})
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).Return(context.Background(), "b1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "no copies available", apiErr.Message)
	assert.Contains(t, err.Error(), "409")
}

func TestDeleteBook_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, NewHTTPClient(srv.URL).DeleteBook(context.Background(), "b1"))
}

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/book", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(dto.BookSummaryResponse{AISummary: "Spice.", AITags: []string{"sci-fi"}})
	}))
	defer srv.Close()

	res, err := NewHTTPClient(srv.URL).Summarize(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, "Spice.", res.AISummary)
	assert.Empty(t, res.Note)
}
