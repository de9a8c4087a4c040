package command

// root.go defines the root command of the libraryhub CLI and its global flags.

import (
	"fmt"
	"os"

	"libraryhub/cmd/cli/authentication"
	"libraryhub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

const tokenEnv = "LIBRARYHUB_TOKEN"

var (
	apiURL string // API server URL
	token  string // bearer token from the auth provider
)

var rootCmd = &cobra.Command{
	Use:   "libraryhub",
	Short: "libraryhub - library catalog command line client",
	Long: `libraryhub talks to the libraryhub API. Use it to:
- Browse and search the catalog
- Borrow and return copies
- Add titles with an AI generated summary (librarians and admins)

Use "libraryhub [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (defaults to $"+tokenEnv+", then the keyring)")

	rootCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(aiCmd)
	rootCmd.AddCommand(authCmd)
}

// resolveToken picks the --token flag, then the environment, then the keyring.
func resolveToken() string {
	if token != "" {
		return token
	}
	if env := os.Getenv(tokenEnv); env != "" {
		return env
	}
	if creds, err := authentication.GetTokens(); err == nil {
		return creds.AccessToken
	}
	return ""
}

// newClient returns an API client carrying the resolved token, if any.
func newClient() *client.HTTPClient {
	httpClient := client.NewHTTPClient(apiURL)
	httpClient.SetToken(resolveToken())
	return httpClient
}

// GetAuthenticatedClient is newClient for commands the API rejects anonymously.
func GetAuthenticatedClient() (*client.HTTPClient, error) {
	httpClient := newClient()
	if !httpClient.HasToken() {
		return nil, fmt.Errorf("not logged in, run 'libraryhub auth login --token <jwt>' or set $%s", tokenEnv)
	}
	return httpClient, nil
}
