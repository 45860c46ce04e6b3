package repository_test

import (
	"context"
	"errors"
	"testing"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/dbtest"
	"coaching-payments/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseSeedIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewCourseRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx))
	require.NoError(t, repo.Seed(ctx))

	courses, err := repo.List(ctx, repository.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, courses, 3)
}

func TestCourseFindByID(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewCourseRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Seed(ctx))

	course, err := repo.FindByID(ctx, "course-football-advanced")
	require.NoError(t, err)
	assert.Equal(t, "Професійна підготовка футболістів", course.Title)
	assert.True(t, decimal.NewFromInt(3000).Equal(course.Price))
	assert.Equal(t, []string{"Індивідуальні консультації", "Аналіз гри", "Тактичні завдання"}, course.Features)

	_, err = repo.FindByID(ctx, "'course-football-advanced'")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCourseListFilters(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewCourseRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Seed(ctx))

	all, err := repo.List(ctx, repository.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "course-football-beginners", all[0].ID)
	assert.Equal(t, "course-personal-training", all[2].ID)

	minPrice := decimal.NewFromInt(2000)
	maxPrice := decimal.NewFromInt(4000)
	mid, err := repo.List(ctx, repository.CourseFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, "course-football-advanced", mid[0].ID)

	level := "Початківець"
	beginners, err := repo.List(ctx, repository.CourseFilter{Level: &level})
	require.NoError(t, err)
	require.Len(t, beginners, 1)
	assert.Equal(t, "course-football-beginners", beginners[0].ID)
}
