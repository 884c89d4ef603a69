package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"credential-service/internal/adapter/cache"
	"credential-service/internal/domain/student"
)

// StudentStore is the persistent store contract the decorator wraps.
type StudentStore interface {
	FindByCredentials(ctx context.Context, email, password string) (*student.Student, error)
	Insert(ctx context.Context, s *student.Student) error
}

// CachedStudentRepository decorates a persistent student store with a
// credential-lookup cache. Every password-qualifying keystroke in the
// validation flow triggers a lookup, so identical in-flight lookups are
// collapsed through singleflight and positive matches are cached.
type CachedStudentRepository struct {
	store StudentStore
	cache cache.CredentialCache
	log   *zap.Logger
	group singleflight.Group
}

// NewCachedStudentRepository creates a new instance of CachedStudentRepository.
func NewCachedStudentRepository(store StudentStore, cache cache.CredentialCache, log *zap.Logger) *CachedStudentRepository {
	return &CachedStudentRepository{
		store: store,
		cache: cache,
		log:   log,
	}
}

// FindByCredentials retrieves a credential match using the Cache-Aside pattern.
// Only positive matches are cached; misses always reach the store.
func (r *CachedStudentRepository) FindByCredentials(ctx context.Context, email, password string) (*student.Student, error) {
	if r.cache != nil {
		cachedMatch, err := r.cache.Get(ctx, email, password)
		if err != nil {
			r.log.Warn("cache get error, falling back to store", zap.String("email", email), zap.Error(err))
		} else if cachedMatch != nil {
			return cachedMatch, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to collapse the
	// burst of identical lookups a typing user produces
	key := email + "\x00" + password
	result, err, _ := r.group.Do(key, func() (any, error) {
		// Double-check cache in case another request populated it while we were waiting
		if r.cache != nil {
			cachedMatch, err := r.cache.Get(ctx, email, password)
			if err == nil && cachedMatch != nil {
				return cachedMatch, nil
			}
		}

		s, err := r.store.FindByCredentials(ctx, email, password)
		if err != nil {
			return nil, err
		}

		if s != nil && r.cache != nil {
			if err := r.cache.Set(ctx, s); err != nil {
				r.log.Warn("failed to cache credential match", zap.String("email", email), zap.Error(err))
			}
		}

		return s, nil
	})

	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.(*student.Student), nil
}

// Insert delegates to the persistent store. Cached entries for the pair are
// bounded by their TTL; there is no targeted invalidation.
func (r *CachedStudentRepository) Insert(ctx context.Context, s *student.Student) error {
	return r.store.Insert(ctx, s)
}
