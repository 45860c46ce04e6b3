package service

import (
	"context"

	"coaching-payments/internal/dto"
	"coaching-payments/internal/model"
	"coaching-payments/internal/repository"
)

type CourseService interface {
	ListCourses(ctx context.Context, filter repository.CourseFilter) ([]*dto.CourseResponse, error)
	GetCourse(ctx context.Context, courseID string) (*dto.CourseResponse, error)
}

type courseServiceImpl struct {
	courseRepo repository.CourseRepository
}

func NewCourseService(courseRepo repository.CourseRepository) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
	}
}

func (s *courseServiceImpl) ListCourses(ctx context.Context, filter repository.CourseFilter) ([]*dto.CourseResponse, error) {
	courses, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.CourseResponse, len(courses))
	for i, c := range courses {
		out[i] = toCourseResponse(c)
	}
	return out, nil
}

func (s *courseServiceImpl) GetCourse(ctx context.Context, courseID string) (*dto.CourseResponse, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	features := c.Features
	if features == nil {
		features = []string{}
	}
	return &dto.CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price.InexactFloat64(),
		Duration:    c.Duration,
		Level:       c.Level,
		Features:    features,
		CreatedAt:   c.CreatedAt,
	}
}
