package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"microblog-account-service/internal/adapter/cache"
	domain "microblog-account-service/internal/domain/user"
	"microblog-account-service/internal/usecase/auth"
)

// CachedUserRepository decorates a credential store with a cache-aside
// FindByID. Users are never updated, so entries only leave the cache by TTL.
type CachedUserRepository struct {
	store auth.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(store auth.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		store: store,
		cache: cache,
		log:   log,
	}
}

// FindByUsername delegates to the store.
func (r *CachedUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.store.FindByUsername(ctx, username)
}

// FindByID serves from cache when possible. Absent users and malformed ids
// are never cached.
func (r *CachedUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !domain.IsValidID(id) {
		return nil, nil
	}

	if u := r.fromCache(ctx, id); u != nil {
		return u, nil
	}

	// Collapse concurrent misses for the same id into one store read
	result, err, _ := r.group.Do(fmt.Sprintf("user:%s", id), func() (any, error) {
		// Shared by every waiter, so one caller going away must not fail the rest
		fetchCtx := context.WithoutCancel(ctx)

		if u := r.fromCache(fetchCtx, id); u != nil {
			return u, nil
		}

		u, err := r.store.FindByID(fetchCtx, id)
		if err != nil || u == nil {
			return u, err
		}

		if err := r.cache.Set(fetchCtx, u); err != nil {
			r.log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u, _ := result.(*domain.User)
	return u, nil
}

func (r *CachedUserRepository) fromCache(ctx context.Context, id string) *domain.User {
	u, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to store", zap.String("id", id), zap.Error(err))
		return nil
	}
	return u
}

// Insert delegates to the store.
func (r *CachedUserRepository) Insert(ctx context.Context, u *domain.User) (string, error) {
	return r.store.Insert(ctx, u)
}

// ListAll delegates to the store.
func (r *CachedUserRepository) ListAll(ctx context.Context) ([]domain.Summary, error) {
	return r.store.ListAll(ctx)
}
