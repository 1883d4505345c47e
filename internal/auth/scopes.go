package auth

// DefaultOAuthScopes are the Google OAuth scopes requested during
// authentication. They cover the services this server exposes tools
// for, plus the OpenID Connect scopes needed to identify the user.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",

	// Google Drive scope
	"https://www.googleapis.com/auth/drive",
}
