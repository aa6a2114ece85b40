package auth

// TokenTypeBearer is the only token type issued by Login.
const TokenTypeBearer = "bearer"

// SignupRequest represents the request payload for registering an account.
// Empty usernames and passwords are accepted; only the email is checked.
type SignupRequest struct {
	Username string
	Email    string `validate:"required,email"`
	Password string
}

// LoginRequest represents the credentials presented to obtain a token.
type LoginRequest struct {
	Username string
	Password string
}

// Profile is the user view returned by signup and profile lookups.
// It never carries the password or its hash.
type Profile struct {
	ID       string
	Username string
	Email    string
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	TokenType   string
}

// UserSummary is a listing entry.
type UserSummary struct {
	ID       string
	Username string
}
