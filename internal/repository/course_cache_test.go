package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/model"
	"coaching-payments/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCacheStore struct {
	values map[string][]byte
	getErr error
	sets   int
}

func (f *fakeCacheStore) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeCacheStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.sets++
	f.values[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

type countingCourseRepo struct {
	repository.CourseRepository
	courses map[string]*model.Course
	calls   int
}

func (c *countingCourseRepo) FindByID(_ context.Context, id string) (*model.Course, error) {
	c.calls++
	course, ok := c.courses[id]
	if !ok {
		return nil, apperror.NotFound("Course not found")
	}
	return course, nil
}

func TestCachedCourseRepositoryHitsStoreAfterFirstRead(t *testing.T) {
	inner := &countingCourseRepo{courses: map[string]*model.Course{
		"course-football-beginners": {ID: "course-football-beginners", Title: "Футбол", Price: decimal.NewFromInt(1500)},
	}}
	store := &fakeCacheStore{values: map[string][]byte{}}
	repo := repository.NewCachedCourseRepository(inner, store, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := repo.FindByID(ctx, "course-football-beginners")
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, "course-football-beginners")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, store.sets)
	assert.Equal(t, first.Title, second.Title)
	assert.True(t, first.Price.Equal(second.Price))
}

func TestCachedCourseRepositoryFallsThroughOnStoreError(t *testing.T) {
	inner := &countingCourseRepo{courses: map[string]*model.Course{
		"c1": {ID: "c1", Price: decimal.NewFromInt(10)},
	}}
	store := &fakeCacheStore{values: map[string][]byte{}, getErr: errors.New("connection refused")}
	repo := repository.NewCachedCourseRepository(inner, store, time.Minute, zap.NewNop())

	course, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", course.ID)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedCourseRepositoryDoesNotCacheMisses(t *testing.T) {
	inner := &countingCourseRepo{courses: map[string]*model.Course{}}
	store := &fakeCacheStore{values: map[string][]byte{}}
	repo := repository.NewCachedCourseRepository(inner, store, time.Minute, zap.NewNop())

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.Equal(t, 0, store.sets)
}
