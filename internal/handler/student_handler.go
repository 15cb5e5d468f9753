package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trackademy/batchline/internal/domain"
)

type StudentService interface {
	Create(ctx context.Context, s *domain.Student) (*domain.Student, error)
	Get(ctx context.Context, id string) (*domain.Student, error)
	List(ctx context.Context, batchNumber string) ([]domain.Student, error)
	Update(ctx context.Context, s *domain.Student) error
	Delete(ctx context.Context, id string) error
}

type StudentHandler struct {
	service StudentService
}

func NewStudentHandler(service StudentService) (*StudentHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("student service is required")
	}
	return &StudentHandler{service: service}, nil
}

func RegisterStudentRoutes(router fiber.Router, service StudentService) error {
	h, err := NewStudentHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/students", h.CreateStudent)
	v1.Get("/students", h.ListStudents)
	v1.Get("/students/:id", h.GetStudent)
	v1.Put("/students/:id", h.UpdateStudent)
	v1.Delete("/students/:id", h.DeleteStudent)

	return nil
}

type studentRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	BatchNumber string `json:"batchNumber"`
	Status      string `json:"status"`
}

type studentResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	BatchNumber string    `json:"batchNumber,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type listStudentsResponse struct {
	Data []studentResponse `json:"data"`
}

func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	student, err := parseStudentRequest(c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.Context(), student)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStudentResponse(created))
}

func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	student, err := h.service.Get(c.Context(), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toStudentResponse(student))
}

func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	students, err := h.service.List(c.Context(), c.Query("batchNumber"))
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]studentResponse, 0, len(students))
	for i := range students {
		data = append(data, toStudentResponse(&students[i]))
	}
	return c.Status(fiber.StatusOK).JSON(listStudentsResponse{Data: data})
}

func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	student, err := parseStudentRequest(c)
	if err != nil {
		return err
	}
	student.ID = strings.TrimSpace(c.Params("id"))

	if err := h.service.Update(c.Context(), student); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toStudentResponse(student))
}

func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), strings.TrimSpace(c.Params("id"))); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseStudentRequest(c *fiber.Ctx) (*domain.Student, error) {
	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	student := domain.Student{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		BatchNumber: req.BatchNumber,
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := domain.ParseStudentStatusFromString(raw)
		if err != nil {
			return nil, toHTTPError(err)
		}
		student.Status = status
	}
	return &student, nil
}

func toStudentResponse(s *domain.Student) studentResponse {
	if s == nil {
		return studentResponse{}
	}

	return studentResponse{
		ID:          s.ID,
		FullName:    s.FullName,
		Email:       s.Email,
		Phone:       s.Phone,
		BatchNumber: s.BatchNumber,
		Status:      s.Status.String(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
