package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"libraryhub/cmd/cli/authentication"
	"libraryhub/internal/microservices/http-api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// run executes the CLI against apiServer and returns its output.
func run(t *testing.T, apiServer *httptest.Server, args ...string) (string, error) {
	t.Helper()
	token = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--api", apiServer.URL}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func setupKeyring(t *testing.T) {
	t.Helper()
	keyring.MockInit()
	t.Setenv(tokenEnv, "")
}

func TestBooksAdd_WithAI(t *testing.T) {
	setupKeyring(t)

	var created dto.CreateBookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ai/book":
			_ = json.NewEncoder(w).Encode(dto.BookSummaryResponse{
				AISummary: "Spice.",
				AITags:    []string{"sci-fi"},
				Note:      "Fallback AI used (OpenAI quota/billing issue).",
			})
		case "/api/books":
			assert.Equal(t, "Bearer env-token", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(dto.BookResponse{ID: "b1", Title: created.Title, TotalQuantity: 2, AvailableQuantity: 2})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()
	t.Setenv(tokenEnv, "env-token")

	out, err := run(t, srv, "books", "add", "--title", "Dune", "--author", "Frank Herbert", "--qty", "2", "--ai")
	require.NoError(t, err)

	assert.Equal(t, "Spice.", created.AISummary)
	assert.Equal(t, []string{"sci-fi"}, created.AITags)
	assert.Equal(t, 2, created.TotalQuantity)
	assert.Contains(t, out, "Fallback AI used")
	assert.Contains(t, out, "Book added")
}

func TestBorrow_RequiresToken(t *testing.T) {
	setupKeyring(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s", r.URL.Path)
	}))
	defer srv.Close()

	_, err := run(t, srv, "books", "borrow", "b1", "--name", "Ada", "--email", "ada@example.com", "--phone", "555")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestLoginStoresTokenInKeyring(t *testing.T) {
	setupKeyring(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/me", r.URL.Path)
		assert.Equal(t, "Bearer jwt-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(dto.ProfileResponse{ID: "user-1", Role: "librarian"})
	}))
	defer srv.Close()

	out, err := run(t, srv, "auth", "login", "--token", "jwt-123")
	require.NoError(t, err)
	assert.Contains(t, out, "user-1")

	creds, err := authentication.GetTokens()
	require.NoError(t, err)
	assert.Equal(t, "jwt-123", creds.AccessToken)
	assert.Equal(t, "librarian", creds.Role)
	assert.Equal(t, "jwt-123", resolveToken())

	_, err = run(t, srv, "auth", "logout")
	require.NoError(t, err)
	_, err = authentication.GetTokens()
	assert.ErrorIs(t, err, authentication.ErrNoCredentials)
}

func TestBooksList_Empty(t *testing.T) {
	setupKeyring(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dto.BookListResponse{Items: []dto.BookResponse{}})
	}))
	defer srv.Close()

	out, err := run(t, srv, "books", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No books found.")
}
