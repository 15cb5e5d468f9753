package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/ratelimit"
)

type EnquiryService interface {
	Ingest(ctx context.Context, e *domain.Enquiry) (*domain.Enquiry, bool, error)
	Create(ctx context.Context, e *domain.Enquiry) (*domain.Enquiry, error)
	Get(ctx context.Context, id string) (*domain.Enquiry, error)
	List(ctx context.Context, status *domain.EnquiryStatus) ([]domain.Enquiry, error)
	Update(ctx context.Context, e *domain.Enquiry) error
	Delete(ctx context.Context, id string) error
}

type EnquiryHandler struct {
	service  EnquiryService
	limiter  ratelimit.RateLimiter
	validate *validator.Validate
}

func NewEnquiryHandler(service EnquiryService, limiter ratelimit.RateLimiter) (*EnquiryHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("enquiry service is required")
	}
	return &EnquiryHandler{
		service:  service,
		limiter:  limiter,
		validate: validator.New(),
	}, nil
}

func RegisterEnquiryRoutes(router fiber.Router, service EnquiryService, limiter ratelimit.RateLimiter) error {
	h, err := NewEnquiryHandler(service, limiter)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/enquiries", h.CreateEnquiry)
	v1.Get("/enquiries", h.ListEnquiries)
	v1.Get("/enquiries/:id", h.GetEnquiry)
	v1.Put("/enquiries/:id", h.UpdateEnquiry)
	v1.Delete("/enquiries/:id", h.DeleteEnquiry)

	// Third-party form webhook, rate limited per source.
	router.Post("/webhooks/enquiries", h.IngestWebhook)

	return nil
}

// webhookEnquiryRequest is the payload third-party form providers post.
// Validation here is structural; matching and dedup live in the service.
type webhookEnquiryRequest struct {
	FullName   string `json:"fullName" validate:"required,min=2,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,min=7,max=20"`
	CourseName string `json:"courseName" validate:"omitempty,max=200"`
	Source     string `json:"source" validate:"required,max=100"`
	Notes      string `json:"notes" validate:"omitempty,max=2000"`
}

type enquiryRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	CourseName string `json:"courseName"`
	Source     string `json:"source"`
	Notes      string `json:"notes"`
	Status     string `json:"status"`
}

type enquiryResponse struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	CourseName string    `json:"courseName,omitempty"`
	Source     string    `json:"source,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type listEnquiriesResponse struct {
	Data []enquiryResponse `json:"data"`
}

func (h *EnquiryHandler) IngestWebhook(c *fiber.Ctx) error {
	var req webhookEnquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Context(), req.Source)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "rate limiter unavailable")
		}
		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded for source")
		}
	}

	enquiry, isNew, err := h.service.Ingest(c.Context(), &domain.Enquiry{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		CourseName: req.CourseName,
		Source:     req.Source,
		Notes:      req.Notes,
	})
	if err != nil {
		return toHTTPError(err)
	}

	status := fiber.StatusOK
	if isNew {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(toEnquiryResponse(enquiry))
}

func (h *EnquiryHandler) CreateEnquiry(c *fiber.Ctx) error {
	enquiry, err := parseEnquiryRequest(c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.Context(), enquiry)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEnquiryResponse(created))
}

func (h *EnquiryHandler) GetEnquiry(c *fiber.Ctx) error {
	enquiry, err := h.service.Get(c.Context(), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toEnquiryResponse(enquiry))
}

func (h *EnquiryHandler) ListEnquiries(c *fiber.Ctx) error {
	var status *domain.EnquiryStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, err := domain.ParseEnquiryStatusFromString(raw)
		if err != nil {
			return toHTTPError(err)
		}
		status = &parsed
	}

	enquiries, err := h.service.List(c.Context(), status)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]enquiryResponse, 0, len(enquiries))
	for i := range enquiries {
		data = append(data, toEnquiryResponse(&enquiries[i]))
	}
	return c.Status(fiber.StatusOK).JSON(listEnquiriesResponse{Data: data})
}

func (h *EnquiryHandler) UpdateEnquiry(c *fiber.Ctx) error {
	enquiry, err := parseEnquiryRequest(c)
	if err != nil {
		return err
	}
	enquiry.ID = strings.TrimSpace(c.Params("id"))

	if err := h.service.Update(c.Context(), enquiry); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toEnquiryResponse(enquiry))
}

func (h *EnquiryHandler) DeleteEnquiry(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), strings.TrimSpace(c.Params("id"))); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseEnquiryRequest(c *fiber.Ctx) (*domain.Enquiry, error) {
	var req enquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	enquiry := domain.Enquiry{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		CourseName: req.CourseName,
		Source:     req.Source,
		Notes:      req.Notes,
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := domain.ParseEnquiryStatusFromString(raw)
		if err != nil {
			return nil, toHTTPError(err)
		}
		enquiry.Status = status
	}
	return &enquiry, nil
}

func toEnquiryResponse(e *domain.Enquiry) enquiryResponse {
	if e == nil {
		return enquiryResponse{}
	}

	return enquiryResponse{
		ID:         e.ID,
		FullName:   e.FullName,
		Email:      e.Email,
		Phone:      e.Phone,
		CourseName: e.CourseName,
		Source:     e.Source,
		Notes:      e.Notes,
		Status:     e.Status.String(),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
