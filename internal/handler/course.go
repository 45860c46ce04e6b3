package handler

import (
	"net/http"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/dto"
	"coaching-payments/internal/repository"
	"coaching-payments/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CourseHandler struct {
	courseService service.CourseService
}

func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
	}
}

func priceParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Validation(name + " must be a number")
	}
	return &d, nil
}

func (h *CourseHandler) ListCourses(c echo.Context) error {
	ctx := c.Request().Context()

	var filter repository.CourseFilter
	if level := c.QueryParam("level"); level != "" {
		filter.Level = &level
	}
	var err error
	if filter.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		return err
	}
	if filter.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		return err
	}

	courses, err := h.courseService.ListCourses(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.CourseListResponse{
		Success: true,
		Courses: courses,
		Total:   len(courses),
	})
}

func (h *CourseHandler) GetCourse(c echo.Context) error {
	ctx := c.Request().Context()

	course, err := h.courseService.GetCourse(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, course)
}
