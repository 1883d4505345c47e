package common

import (
	"context"
	"fmt"

	"github.com/aaronsb/google-workspace-mcp/internal/auth"
)

// EmailFromArgs extracts the account email from tool request arguments.
// Every account-scoped tool takes an "email" argument identifying which
// authenticated account to act as.
func EmailFromArgs(args map[string]interface{}) (string, error) {
	email, ok := args["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("email is required: the address of the authenticated account to use")
	}
	return email, nil
}

// AuthRequiredMessage renders the operator-facing instructions shown
// when a tool call fails because the account has no valid credential.
func AuthRequiredMessage(ctx context.Context, accounts *auth.Manager, email string) string {
	authURL, err := accounts.AuthenticateAccount(ctx, email, "")
	if err != nil {
		return fmt.Sprintf("Account %s is not authenticated and the authorization URL could not be built: %v", email, err)
	}
	return fmt.Sprintf(`Account %q is not authenticated. To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with the Google account %s
3. Grant access to the requested services
4. Copy the authorization code

5. Call the authenticate_workspace_account tool with email=%q and the
   authorization code to complete authentication.

You only need to authorize once; tokens are refreshed automatically.`, email, authURL, email, email)
}

// IsAuthRequired reports whether err means the account needs (re-)
// authentication rather than a retry.
func IsAuthRequired(err error) bool {
	return auth.IsCode(err, auth.CodeAuthRequired)
}
