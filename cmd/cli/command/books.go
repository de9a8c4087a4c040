package command

import (
	"fmt"
	"io"
	"strings"

	"libraryhub/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Catalog and lending commands",
	Long:  `List, add, borrow, return and delete books in the catalog`,
}

var listBooksCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("q")

		books, err := newClient().ListBooks(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}

		out := cmd.OutOrStdout()
		if books.Total == 0 {
			fmt.Fprintln(out, "No books found.")
			return nil
		}

		fmt.Fprintf(out, "Found %d book(s):\n\n", books.Total)
		for _, b := range books.Items {
			printBook(out, b)
			fmt.Fprintln(out, strings.Repeat("-", 50))
		}
		return nil
	},
}

var getBookCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := newClient().GetBook(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get book: %w", err)
		}
		printBook(cmd.OutOrStdout(), *book)
		return nil
	},
}

var addBookCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a title to the catalog (librarian or admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")
		qty, _ := cmd.Flags().GetInt("qty")
		withAI, _ := cmd.Flags().GetBool("ai")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		req := dto.CreateBookRequest{Title: title, Author: author, TotalQuantity: qty}
		if withAI {
			summary, err := httpClient.Summarize(cmd.Context(), title, author)
			if err != nil {
				return fmt.Errorf("failed to generate summary: %w", err)
			}
			if summary.Note != "" {
				fmt.Fprintf(out, "Note: %s\n", summary.Note)
			}
			req.AISummary = summary.AISummary
			req.AITags = summary.AITags
		}

		book, err := httpClient.CreateBook(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to add book: %w", err)
		}

		fmt.Fprintln(out, "✓ Book added")
		printBook(out, *book)
		return nil
	},
}

var borrowBookCmd = &cobra.Command{
	Use:   "borrow [id]",
	Short: "Borrow one copy of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.BorrowRequest
		req.FullName, _ = cmd.Flags().GetString("name")
		req.Email, _ = cmd.Flags().GetString("email")
		req.Phone, _ = cmd.Flags().GetString("phone")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		book, err := httpClient.Borrow(cmd.Context(), args[0], req)
		if err != nil {
			return fmt.Errorf("failed to borrow book: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Borrowed %q, %d of %d left\n", book.Title, book.AvailableQuantity, book.TotalQuantity)
		return nil
	},
}

var returnBookCmd = &cobra.Command{
	Use:   "return [id]",
	Short: "Return one copy of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		book, err := httpClient.Return(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to return book: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Returned %q, %d of %d available\n", book.Title, book.AvailableQuantity, book.TotalQuantity)
		return nil
	},
}

var deleteBookCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a book and its loan history (librarian or admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		if err := httpClient.DeleteBook(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted book %s\n", args[0])
		return nil
	},
}

var loansBookCmd = &cobra.Command{
	Use:   "loans [id]",
	Short: "List outstanding loans of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loans, err := newClient().OpenLoans(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list loans: %w", err)
		}

		out := cmd.OutOrStdout()
		if loans.Total == 0 {
			fmt.Fprintln(out, "No open loans.")
			return nil
		}
		for _, l := range loans.Items {
			fmt.Fprintf(out, "%s  borrower=%s  since %s\n", l.ID, l.BorrowerID, l.BorrowedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func printBook(out io.Writer, b dto.BookResponse) {
	fmt.Fprintf(out, "ID: %s\n", b.ID)
	fmt.Fprintf(out, "Title: %s\n", b.Title)
	fmt.Fprintf(out, "Author: %s\n", b.Author)
	fmt.Fprintf(out, "Available: %d/%d\n", b.AvailableQuantity, b.TotalQuantity)
	if b.Borrower != nil {
		fmt.Fprintf(out, "Borrowed by: %s <%s>\n", b.Borrower.FullName, b.Borrower.Email)
	} else if b.BorrowedBy != nil {
		fmt.Fprintf(out, "Borrowed by: %s\n", *b.BorrowedBy)
	}
	if b.AISummary != nil {
		fmt.Fprintf(out, "Summary: %s\n", *b.AISummary)
	}
	if len(b.AITags) > 0 {
		fmt.Fprintf(out, "Tags: %s\n", strings.Join(b.AITags, ", "))
	}
}

func init() {
	booksCmd.AddCommand(listBooksCmd)
	booksCmd.AddCommand(getBookCmd)
	booksCmd.AddCommand(addBookCmd)
	booksCmd.AddCommand(borrowBookCmd)
	booksCmd.AddCommand(returnBookCmd)
	booksCmd.AddCommand(deleteBookCmd)
	booksCmd.AddCommand(loansBookCmd)

	listBooksCmd.Flags().String("q", "", "filter by title or author")

	addBookCmd.Flags().StringP("title", "t", "", "book title")
	addBookCmd.Flags().StringP("author", "a", "", "book author")
	addBookCmd.Flags().IntP("qty", "n", 1, "number of copies")
	addBookCmd.Flags().Bool("ai", false, "generate a summary and tags before adding")
	_ = addBookCmd.MarkFlagRequired("title")
	_ = addBookCmd.MarkFlagRequired("author")

	borrowBookCmd.Flags().String("name", "", "your full name")
	borrowBookCmd.Flags().String("email", "", "your email")
	borrowBookCmd.Flags().String("phone", "", "your phone number")
	_ = borrowBookCmd.MarkFlagRequired("name")
	_ = borrowBookCmd.MarkFlagRequired("email")
	_ = borrowBookCmd.MarkFlagRequired("phone")
}
