package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trackademy/batchline/internal/domain"
)

type CourseService interface {
	Create(ctx context.Context, c *domain.Course) (*domain.Course, error)
	Get(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	Update(ctx context.Context, c *domain.Course) error
	Delete(ctx context.Context, id string) error
}

type CourseHandler struct {
	service CourseService
}

func NewCourseHandler(service CourseService) (*CourseHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("course service is required")
	}
	return &CourseHandler{service: service}, nil
}

func RegisterCourseRoutes(router fiber.Router, service CourseService) error {
	h, err := NewCourseHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/courses", h.CreateCourse)
	v1.Get("/courses", h.ListCourses)
	v1.Get("/courses/:id", h.GetCourse)
	v1.Put("/courses/:id", h.UpdateCourse)
	v1.Delete("/courses/:id", h.DeleteCourse)

	return nil
}

type courseRequest struct {
	Name        string `json:"name"`
	Prefix      string `json:"prefix"`
	Description string `json:"description"`
}

type courseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Prefix      string    `json:"prefix"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type listCoursesResponse struct {
	Data []courseResponse `json:"data"`
}

func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.Context(), &domain.Course{
		Name:        req.Name,
		Prefix:      req.Prefix,
		Description: req.Description,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCourseResponse(created))
}

func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.service.Get(c.Context(), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toCourseResponse(course))
}

func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.service.List(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]courseResponse, 0, len(courses))
	for i := range courses {
		data = append(data, toCourseResponse(&courses[i]))
	}
	return c.Status(fiber.StatusOK).JSON(listCoursesResponse{Data: data})
}

func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	course := domain.Course{
		ID:          strings.TrimSpace(c.Params("id")),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.service.Update(c.Context(), &course); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toCourseResponse(&course))
}

func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), strings.TrimSpace(c.Params("id"))); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toCourseResponse(course *domain.Course) courseResponse {
	if course == nil {
		return courseResponse{}
	}

	return courseResponse{
		ID:          course.ID,
		Name:        course.Name,
		Prefix:      course.Prefix,
		Description: course.Description,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}
