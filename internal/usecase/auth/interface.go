package auth

import "context"

// Usecase defines the interface for account and authentication operations.
type Usecase interface {
	Signup(ctx context.Context, in SignupRequest) (*Profile, error)
	Login(ctx context.Context, in LoginRequest) (*Token, error)
	AuthorizeProfileAccess(token, requestedUserID string) error
	GetProfile(ctx context.Context, requestedUserID, token string) (*Profile, error)
	ListUsers(ctx context.Context) ([]UserSummary, error)
}
