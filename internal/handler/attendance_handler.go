package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/service"
)

type AttendanceService interface {
	Mark(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
	ReportForBatch(ctx context.Context, batchNumber string, from, to *time.Time) ([]domain.StudentAttendance, error)
	Summary(ctx context.Context) (*service.DashboardSummary, error)
}

type AttendanceHandler struct {
	service AttendanceService
}

func NewAttendanceHandler(service AttendanceService) (*AttendanceHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("attendance service is required")
	}
	return &AttendanceHandler{service: service}, nil
}

func RegisterAttendanceRoutes(router fiber.Router, service AttendanceService) error {
	h, err := NewAttendanceHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/attendance", h.MarkAttendance)
	v1.Get("/attendance/report", h.AttendanceReport)
	v1.Get("/batches/:id/attendance", h.BatchAttendanceReport)
	v1.Get("/dashboard/summary", h.DashboardSummary)

	return nil
}

type markAttendanceRequest struct {
	StudentID   string `json:"studentId"`
	BatchNumber string `json:"batchNumber"`
	Date        string `json:"date"`
	Present     bool   `json:"present"`
}

type attendanceResponse struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	BatchNumber string `json:"batchNumber"`
	Date        string `json:"date"`
	Present     bool   `json:"present"`
}

type attendanceReportRow struct {
	StudentID   string  `json:"studentId"`
	StudentName string  `json:"studentName"`
	TotalDays   int     `json:"totalDays"`
	PresentDays int     `json:"presentDays"`
	Percentage  float64 `json:"percentage"`
}

type attendanceReportResponse struct {
	BatchNumber string                `json:"batchNumber"`
	Data        []attendanceReportRow `json:"data"`
}

func (h *AttendanceHandler) MarkAttendance(c *fiber.Ctx) error {
	var req markAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	day, err := parseDate(req.Date, "date")
	if err != nil {
		return toHTTPError(err)
	}

	record, err := h.service.Mark(c.Context(), &domain.AttendanceRecord{
		StudentID:   req.StudentID,
		BatchNumber: req.BatchNumber,
		Date:        day,
		Present:     req.Present,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(attendanceResponse{
		ID:          record.ID,
		StudentID:   record.StudentID,
		BatchNumber: record.BatchNumber,
		Date:        record.Date.Format(dateLayout),
		Present:     record.Present,
	})
}

func (h *AttendanceHandler) AttendanceReport(c *fiber.Ctx) error {
	batchNumber := strings.TrimSpace(c.Query("batch"))
	if batchNumber == "" {
		return fiber.NewError(fiber.StatusBadRequest, "batch query parameter is required")
	}
	return h.reportForBatch(c, batchNumber)
}

func (h *AttendanceHandler) BatchAttendanceReport(c *fiber.Ctx) error {
	return h.reportForBatch(c, strings.TrimSpace(c.Params("id")))
}

func (h *AttendanceHandler) reportForBatch(c *fiber.Ctx, batchNumber string) error {
	var from, to *time.Time
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, err := parseDate(raw, "from")
		if err != nil {
			return toHTTPError(err)
		}
		from = &t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := parseDate(raw, "to")
		if err != nil {
			return toHTTPError(err)
		}
		to = &t
	}

	report, err := h.service.ReportForBatch(c.Context(), batchNumber, from, to)
	if err != nil {
		return toHTTPError(err)
	}

	rows := make([]attendanceReportRow, 0, len(report))
	for _, row := range report {
		rows = append(rows, attendanceReportRow{
			StudentID:   row.StudentID,
			StudentName: row.StudentName,
			TotalDays:   row.TotalDays,
			PresentDays: row.PresentDays,
			Percentage:  row.Percentage(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(attendanceReportResponse{
		BatchNumber: batchNumber,
		Data:        rows,
	})
}

func (h *AttendanceHandler) DashboardSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}
