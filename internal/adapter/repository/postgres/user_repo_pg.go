package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"microblog-account-service/internal/domain/user"
	"microblog-account-service/pkg/logger"
)

// UserRepoPG implements the credential store on a relational database through GORM.
// It works with any GORM dialector; production uses PostgreSQL or SQLite.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           string `gorm:"primaryKey;size:24"` // Hex store identifier assigned on insert
	Username     string `gorm:"not null;index"`     // Indexed, intentionally not unique
	Email        string `gorm:"not null"`
	PasswordHash string `gorm:"column:password;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates the users table and its indexes.
func (r *UserRepoPG) AutoMigrate() error {
	if err := r.db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
	}
}

// FindByUsername retrieves a user by exact username.
func (r *UserRepoPG) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, "username = ?", username)
}

// FindByID retrieves a user by id. Malformed ids are treated as absent.
func (r *UserRepoPG) FindByID(ctx context.Context, id string) (*user.User, error) {
	if !user.IsValidID(id) {
		logger.WithContext(ctx, r.log).Debug("malformed user id", zap.String("id", id))
		return nil, nil
	}
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepoPG) first(ctx context.Context, query string, arg string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return model.toDomain(), nil
}

// Insert creates a new user row with a freshly generated id.
func (r *UserRepoPG) Insert(ctx context.Context, u *user.User) (string, error) {
	if u == nil {
		return "", errors.New("user cannot be nil")
	}

	model := UserSchema{
		ID:           user.NewID(),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to create user in db", zap.Error(err), zap.String("username", u.Username))
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx, r.log).Info("user created in db", zap.String("id", model.ID))
	return model.ID, nil
}

// ListAll returns id and username of every row. No ordering is applied.
func (r *UserRepoPG) ListAll(ctx context.Context) ([]user.Summary, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Select("id", "username").Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.Summary, len(models))
	for i, m := range models {
		users[i] = user.Summary{ID: m.ID, Username: m.Username}
	}
	return users, nil
}
