package repository

import (
	"context"
	"errors"
	"fmt"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseFilter struct {
	Level    *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type CourseRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, courseID string) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]*model.Course, error)
}

type courseRepoImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepoImpl{
		db: db,
	}
}

func strPtr(s string) *string { return &s }

// SeedCourses is the starting catalogue.
func SeedCourses() []model.Course {
	return []model.Course{
		{
			ID:          "course-football-beginners",
			Title:       "Футбольний курс для початківців",
			Description: "Основи футболу для початківців: техніка, тактика, фізична підготовка",
			Price:       decimal.NewFromInt(1500),
			Duration:    "4 тижні",
			Level:       strPtr("Початківець"),
			Features:    []string{"Відео уроки", "Персональний фідбек", "Тренувальний план"},
		},
		{
			ID:          "course-football-advanced",
			Title:       "Професійна підготовка футболістів",
			Description: "Просунута техніка, тактика гри, стратегія та аналіз",
			Price:       decimal.NewFromInt(3000),
			Duration:    "8 тижнів",
			Level:       strPtr("Просунутий"),
			Features:    []string{"Індивідуальні консультації", "Аналіз гри", "Тактичні завдання"},
		},
		{
			ID:          "course-personal-training",
			Title:       "Індивідуальні тренування",
			Description: "Персональні тренування з професійним тренером",
			Price:       decimal.NewFromInt(5000),
			Duration:    "Індивідуально",
			Level:       strPtr("Всі рівні"),
			Features:    []string{"Особистий тренер", "Гнучкий графік", "Індивідуальний підхід"},
		},
	}
}

func (r *courseRepoImpl) Seed(ctx context.Context) error {
	courses := SeedCourses()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&courses).Error
}

func (r *courseRepoImpl) FindByID(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("id = ?", courseID).
		First(&course).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find course %s: %w", courseID, err)
	}

	return &course, nil
}

func (r *courseRepoImpl) List(ctx context.Context, filter CourseFilter) ([]*model.Course, error) {
	q := r.db.WithContext(ctx).Model(&model.Course{})
	if filter.Level != nil {
		q = q.Where("level = ?", *filter.Level)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	var courses []*model.Course
	err := q.Order("price ASC").Order("created_at DESC").Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	return courses, nil
}
