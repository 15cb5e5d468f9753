package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/trackademy/batchline/internal/service"
)

// AutomationService runs the batch lifecycle pass on demand.
type AutomationService interface {
	RunOnce(ctx context.Context) (service.LifecycleResult, error)
}

type AutomationHandler struct {
	service AutomationService
}

func NewAutomationHandler(service AutomationService) (*AutomationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("automation service is required")
	}
	return &AutomationHandler{service: service}, nil
}

func RegisterAutomationRoutes(router fiber.Router, service AutomationService) error {
	h, err := NewAutomationHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/automation/run", h.RunAutomation)

	return nil
}

type automationRunResponse struct {
	BatchesCompleted   int   `json:"batchesCompleted"`
	StudentsCompleted  int64 `json:"studentsCompleted"`
	EndingSoonNotified int   `json:"endingSoonNotified"`
}

// RunAutomation triggers one lifecycle pass synchronously. The scheduler
// already runs this daily; the endpoint exists for manual catch-up runs.
func (h *AutomationHandler) RunAutomation(c *fiber.Ctx) error {
	result, err := h.service.RunOnce(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(automationRunResponse{
		BatchesCompleted:   result.BatchesCompleted,
		StudentsCompleted:  result.StudentsCompleted,
		EndingSoonNotified: result.EndingSoonNotified,
	})
}
