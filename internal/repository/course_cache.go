package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"coaching-payments/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const courseKeyPrefix = "course:"

// CacheStore is the part of *redis.Client the course cache needs.
type CacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type cachedCourseRepo struct {
	CourseRepository
	store  CacheStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCourseRepository fronts FindByID with Redis. Cache failures are
// logged and served from next.
func NewCachedCourseRepository(next CourseRepository, store CacheStore, ttl time.Duration, logger *zap.Logger) CourseRepository {
	return &cachedCourseRepo{
		CourseRepository: next,
		store:            store,
		ttl:              ttl,
		logger:           logger.With(zap.String("component", "course_cache")),
	}
}

func (r *cachedCourseRepo) FindByID(ctx context.Context, courseID string) (*model.Course, error) {
	key := courseKeyPrefix + courseID

	cached, err := r.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var course model.Course
		if err := json.Unmarshal(cached, &course); err == nil {
			return &course, nil
		}
		r.logger.Warn("drop undecodable cached course", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("course cache get failed", zap.String("key", key), zap.Error(err))
	}

	course, err := r.CourseRepository.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(course); err == nil {
		if err := r.store.Set(ctx, key, b, r.ttl).Err(); err != nil {
			r.logger.Warn("course cache set failed", zap.String("key", key), zap.Error(err))
		}
	}

	return course, nil
}
