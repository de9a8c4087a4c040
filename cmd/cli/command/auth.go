package command

import (
	"fmt"

	"libraryhub/cmd/cli/authentication"
	"libraryhub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

// auth.go keeps the provider-issued token in the OS keyring. Sign-up and password
// login stay with the auth provider.

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Store, inspect and forget the bearer token issued by the auth provider.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify a token against the API and store it in the keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		accessToken, _ := cmd.Flags().GetString("token")
		if accessToken == "" {
			accessToken = resolveToken()
		}
		if accessToken == "" {
			return fmt.Errorf("a token is required: pass --token or set $%s", tokenEnv)
		}

		httpClient := client.NewHTTPClient(apiURL)
		httpClient.SetToken(accessToken)
		me, err := httpClient.Me(cmd.Context())
		if err != nil {
			return fmt.Errorf("token rejected: %w", err)
		}

		if err := authentication.StoreTokens(&authentication.StoredCredentials{
			AccessToken: accessToken,
			UserID:      me.ID,
			Role:        me.Role,
		}); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s (%s)\n", me.ID, me.Role)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile and role the API sees for the current token",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		me, err := httpClient.Me(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User ID: %s\n", me.ID)
		fmt.Fprintf(out, "Role: %s\n", me.Role)
		if me.FullName != "" {
			fmt.Fprintf(out, "Name: %s\n", me.FullName)
		}
		if me.Email != "" {
			fmt.Fprintf(out, "Email: %s\n", me.Email)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("failed to clear token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Successfully logged out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(logoutCmd)

	loginCmd.Flags().String("token", "", "access token issued by the auth provider")
}
