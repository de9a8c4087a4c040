package client

// http_client.go = thin HTTP client for the libraryhub API used by the CLI commands.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"libraryhub/internal/microservices/http-api/dto"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

type LoanListResponse struct {
	Items []dto.LoanResponse `json:"items"`
	Total int                `json:"total"`
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) HasToken() bool {
	return c.token != ""
}

// Summarize asks the API for an AI summary of a title/author pair.
func (c *HTTPClient) Summarize(ctx context.Context, title, author string) (*dto.BookSummaryResponse, error) {
	var result dto.BookSummaryResponse
	req := dto.BookSummaryRequest{Title: title, Author: author}
	if err := c.do(ctx, http.MethodPost, "/ai/book", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListBooks(ctx context.Context, query string) (*dto.BookListResponse, error) {
	path := "/api/books"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var result dto.BookListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetBook(ctx context.Context, id string) (*dto.BookResponse, error) {
	var result dto.BookResponse
	if err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateBook(ctx context.Context, req dto.CreateBookRequest) (*dto.BookResponse, error) {
	var result dto.BookResponse
	if err := c.do(ctx, http.MethodPost, "/api/books", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Borrow(ctx context.Context, id string, req dto.BorrowRequest) (*dto.BookResponse, error) {
	var result dto.BookResponse
	if err := c.do(ctx, http.MethodPost, "/api/books/"+url.PathEscape(id)+"/borrow", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Return(ctx context.Context, id string) (*dto.BookResponse, error) {
	var result dto.BookResponse
	if err := c.do(ctx, http.MethodPost, "/api/books/"+url.PathEscape(id)+"/return", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) OpenLoans(ctx context.Context, id string) (*LoanListResponse, error) {
	var result LoanListResponse
	if err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id)+"/loans", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.ProfileResponse, error) {
	var result dto.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends body as JSON and decodes a 2xx answer into out. out may be nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
