package auth

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "microblog-account-service/internal/domain/user"
	apperrors "microblog-account-service/pkg/errors"
	"microblog-account-service/pkg/logger"
	"microblog-account-service/pkg/security"
)

// Repository defines the credential store used by the auth usecase.
// Lookups return (nil, nil) when no user matches.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error) // Exact-match lookup
	FindByID(ctx context.Context, id string) (*domain.User, error)             // Absent also for malformed ids
	Insert(ctx context.Context, u *domain.User) (string, error)                // Persist and return the new id
	ListAll(ctx context.Context) ([]domain.Summary, error)                     // Ids and usernames only
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// Service implements Usecase on top of a Repository.
type Service struct {
	repo     Repository
	hasher   PasswordHasher
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new Service with the provided repository, hasher and logger.
func New(r Repository, h PasswordHasher, log *zap.Logger) *Service {
	return &Service{repo: r, hasher: h, log: log, validate: validator.New()}
}

// Signup registers a new account. The username is checked for uniqueness
// before the password length, then the password is hashed and the user inserted.
func (s *Service) Signup(ctx context.Context, in SignupRequest) (*Profile, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("signing up user", zap.String("username", in.Username), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, apperrors.FromValidator(err)
	}

	existing, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		log.Error("failed to check existing username", zap.String("username", in.Username), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate username uniqueness", err)
	}
	if existing != nil {
		log.Warn("username already exists", zap.String("username", in.Username))
		return nil, ErrDuplicateUsername
	}

	if security.PasswordTooLong(in.Password) {
		log.Warn("password too long", zap.String("username", in.Username))
		return nil, ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			log.Warn("password exceeds hash input limit", zap.String("username", in.Username))
			return nil, ErrPasswordTooLong
		}
		log.Error("failed to hash password", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	id, err := s.repo.Insert(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		log.Error("failed to insert user", zap.String("username", in.Username), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	log.Info("user signed up", zap.String("user_id", id))
	return &Profile{ID: id, Username: in.Username, Email: in.Email}, nil
}

// Login verifies credentials and issues the user's id as a bearer token.
// Unknown usernames and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*Token, error) {
	log := logger.WithContext(ctx, s.log)

	u, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		log.Error("failed to find user", zap.String("username", in.Username), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to find user", err)
	}
	if u == nil {
		log.Info("login failed", zap.String("username", in.Username), zap.String("reason", "unknown username"))
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		log.Info("login failed", zap.String("username", in.Username), zap.String("reason", "password mismatch"))
		return nil, ErrInvalidCredentials
	}

	log.Info("user logged in", zap.String("user_id", u.ID))
	return &Token{AccessToken: u.ID, TokenType: TokenTypeBearer}, nil
}

// AuthorizeProfileAccess allows access iff the token equals the requested id.
// The token is not checked against the store.
func (s *Service) AuthorizeProfileAccess(token, requestedUserID string) error {
	if token != requestedUserID {
		return ErrForbidden
	}
	return nil
}

// GetProfile returns the profile for requestedUserID after authorizing token.
func (s *Service) GetProfile(ctx context.Context, requestedUserID, token string) (*Profile, error) {
	log := logger.WithContext(ctx, s.log)

	if err := s.AuthorizeProfileAccess(token, requestedUserID); err != nil {
		log.Warn("profile access denied", zap.String("user_id", requestedUserID))
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, requestedUserID)
	if err != nil {
		log.Error("failed to get user", zap.String("user_id", requestedUserID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		log.Warn("user not found", zap.String("user_id", requestedUserID))
		return nil, ErrNotFound
	}

	return &Profile{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}

// ListUsers returns the id and username of every stored user.
func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	summaries, err := s.repo.ListAll(ctx)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("failed to list users", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]UserSummary, len(summaries))
	for i, su := range summaries {
		users[i] = UserSummary{ID: su.ID, Username: su.Username}
	}
	return users, nil
}
