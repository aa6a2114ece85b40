package user

// User represents a registered account.
type User struct {
	ID           string // ID is the store-assigned identifier (24 hex characters)
	Username     string // Username is unique per account and case-sensitive
	Email        string // Email is the contact address, not required to be unique
	PasswordHash string // PasswordHash is the bcrypt hash of the password
}

// Summary is the public projection of a user returned by listings.
type Summary struct {
	ID       string
	Username string
}
