package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trackademy/batchline/internal/domain"
)

const maxNotificationListLimit = 200

type NotificationService interface {
	List(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) (*NotificationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	return &NotificationHandler{service: service}, nil
}

func RegisterNotificationRoutes(router fiber.Router, service NotificationService) error {
	h, err := NewNotificationHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/notifications", h.ListNotifications)
	v1.Get("/notifications/unread-count", h.UnreadCount)
	v1.Post("/notifications/:id/read", h.MarkRead)
	v1.Post("/notifications/read-all", h.MarkAllRead)

	return nil
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	BatchID   *string   `json:"batchId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type listNotificationsResponse struct {
	Data []notificationResponse `json:"data"`
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 || limit > maxNotificationListLimit {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("limit must be between 0 and %d", maxNotificationListLimit))
	}

	notifications, err := h.service.List(c.Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]notificationResponse, 0, len(notifications))
	for i := range notifications {
		n := notifications[i]
		data = append(data, notificationResponse{
			ID:        n.ID,
			Kind:      n.Kind.String(),
			Title:     n.Title,
			Message:   n.Message,
			BatchID:   n.BatchID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.Status(fiber.StatusOK).JSON(listNotificationsResponse{Data: data})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.service.CountUnread(c.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.MarkRead(c.Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": id, "read": true})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	marked, err := h.service.MarkAllRead(c.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"marked": marked})
}
