package auth

// User is the identity carried by a verified Supabase session token.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name,omitempty"`
	GitHubHandle string `json:"github_handle,omitempty"`
}

type contextKey string

const UserContextKey contextKey = "user"
