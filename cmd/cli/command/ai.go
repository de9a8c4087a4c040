package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "AI helpers",
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Generate a summary and tags for a title/author pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")

		summary, err := newClient().Summarize(cmd.Context(), title, author)
		if err != nil {
			return fmt.Errorf("failed to summarize: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, summary.AISummary)
		if len(summary.AITags) > 0 {
			fmt.Fprintf(out, "Tags: %s\n", strings.Join(summary.AITags, ", "))
		}
		if summary.Note != "" {
			fmt.Fprintf(out, "Note: %s\n", summary.Note)
		}
		return nil
	},
}

func init() {
	aiCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringP("title", "t", "", "book title")
	summarizeCmd.Flags().StringP("author", "a", "", "book author")
}
