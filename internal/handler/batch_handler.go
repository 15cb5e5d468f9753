package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trackademy/batchline/internal/domain"
)

type BatchService interface {
	Create(ctx context.Context, b *domain.Batch) (*domain.Batch, error)
	Get(ctx context.Context, id string) (*domain.Batch, error)
	List(ctx context.Context) ([]domain.Batch, error)
	ListByStatus(ctx context.Context, status domain.BatchStatus) ([]domain.Batch, error)
	Update(ctx context.Context, id string, patch domain.BatchPatch) (*domain.Batch, error)
	Delete(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) (*domain.Batch, error)
}

type BatchHandler struct {
	service BatchService
}

func NewBatchHandler(service BatchService) (*BatchHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("batch service is required")
	}
	return &BatchHandler{service: service}, nil
}

func RegisterBatchRoutes(router fiber.Router, service BatchService) error {
	h, err := NewBatchHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/batches", h.CreateBatch)
	v1.Get("/batches", h.ListBatches)
	v1.Get("/batches/active", h.listByFixedStatus(domain.BatchStatusActive))
	v1.Get("/batches/completed", h.listByFixedStatus(domain.BatchStatusCompleted))
	v1.Get("/batches/:id", h.GetBatch)
	v1.Patch("/batches/:id", h.UpdateBatch)
	v1.Delete("/batches/:id", h.DeleteBatch)
	v1.Post("/batches/:id/reactivate", h.ReactivateBatch)

	return nil
}

type createBatchRequest struct {
	CourseName  string `json:"courseName"`
	Name        string `json:"name"`
	Trainer     string `json:"trainer"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type updateBatchRequest struct {
	Name        *string `json:"name"`
	Trainer     *string `json:"trainer"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

type batchResponse struct {
	ID                   string     `json:"id"`
	CourseID             *string    `json:"courseId,omitempty"`
	CourseName           string     `json:"courseName"`
	Name                 string     `json:"name"`
	Trainer              string     `json:"trainer,omitempty"`
	Description          string     `json:"description,omitempty"`
	Capacity             int        `json:"capacity"`
	EnrolledCount        int        `json:"enrolledCount"`
	StartDate            string     `json:"startDate"`
	EndDate              string     `json:"endDate"`
	Status               string     `json:"status"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	EndingSoonNotifiedAt *time.Time `json:"endingSoonNotifiedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type listBatchesResponse struct {
	Data []batchResponse `json:"data"`
}

const dateLayout = "2006-01-02"

func (h *BatchHandler) CreateBatch(c *fiber.Ctx) error {
	var req createBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	start, err := parseDate(req.StartDate, "startDate")
	if err != nil {
		return toHTTPError(err)
	}
	end, err := parseDate(req.EndDate, "endDate")
	if err != nil {
		return toHTTPError(err)
	}

	batch := domain.Batch{
		CourseName:  req.CourseName,
		Name:        req.Name,
		Trainer:     req.Trainer,
		Description: req.Description,
		Capacity:    req.Capacity,
		StartDate:   start,
		EndDate:     end,
	}

	created, err := h.service.Create(c.Context(), &batch)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(created))
}

func (h *BatchHandler) GetBatch(c *fiber.Ctx) error {
	batch, err := h.service.Get(c.Context(), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toBatchResponse(batch))
}

func (h *BatchHandler) ListBatches(c *fiber.Ctx) error {
	var (
		batches []domain.Batch
		err     error
	)

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, parseErr := domain.ParseBatchStatusFromString(rawStatus)
		if parseErr != nil {
			return toHTTPError(parseErr)
		}
		batches, err = h.service.ListByStatus(c.Context(), status)
	} else {
		batches, err = h.service.List(c.Context())
	}
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]batchResponse, 0, len(batches))
	for i := range batches {
		data = append(data, toBatchResponse(&batches[i]))
	}
	return c.Status(fiber.StatusOK).JSON(listBatchesResponse{Data: data})
}

func (h *BatchHandler) listByFixedStatus(status domain.BatchStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		batches, err := h.service.ListByStatus(c.Context(), status)
		if err != nil {
			return toHTTPError(err)
		}

		data := make([]batchResponse, 0, len(batches))
		for i := range batches {
			data = append(data, toBatchResponse(&batches[i]))
		}
		return c.Status(fiber.StatusOK).JSON(listBatchesResponse{Data: data})
	}
}

func (h *BatchHandler) UpdateBatch(c *fiber.Ctx) error {
	var req updateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	patch := domain.BatchPatch{
		Name:        req.Name,
		Trainer:     req.Trainer,
		Description: req.Description,
		Capacity:    req.Capacity,
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate, "startDate")
		if err != nil {
			return toHTTPError(err)
		}
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate, "endDate")
		if err != nil {
			return toHTTPError(err)
		}
		patch.EndDate = &end
	}

	updated, err := h.service.Update(c.Context(), strings.TrimSpace(c.Params("id")), patch)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toBatchResponse(updated))
}

func (h *BatchHandler) DeleteBatch(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), strings.TrimSpace(c.Params("id"))); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BatchHandler) ReactivateBatch(c *fiber.Ctx) error {
	batch, err := h.service.Reactivate(c.Context(), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toBatchResponse(batch))
}

func parseDate(value string, field string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}

	t, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrValidation, field)
	}
	return t, nil
}

func toBatchResponse(b *domain.Batch) batchResponse {
	if b == nil {
		return batchResponse{}
	}

	return batchResponse{
		ID:                   b.ID,
		CourseID:             b.CourseID,
		CourseName:           b.CourseName,
		Name:                 b.Name,
		Trainer:              b.Trainer,
		Description:          b.Description,
		Capacity:             b.Capacity,
		EnrolledCount:        b.EnrolledCount,
		StartDate:            b.StartDate.Format(dateLayout),
		EndDate:              b.EndDate.Format(dateLayout),
		Status:               b.Status.String(),
		CompletedAt:          b.CompletedAt,
		EndingSoonNotifiedAt: b.EndingSoonNotifiedAt,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}
