package queue

import (
	"fmt"
	"strings"
	"time"
)

// LifecycleEvent is the broker payload emitted when a batch or enquiry
// changes state. In-app notifications remain the authoritative sink; these
// events exist for external consumers (reporting, archival).
type LifecycleEvent struct {
	EventID          string    `json:"eventId"`
	Kind             string    `json:"kind"`
	BatchID          string    `json:"batchId,omitempty"`
	CourseName       string    `json:"courseName,omitempty"`
	EnquiryID        string    `json:"enquiryId,omitempty"`
	StudentsAffected int64     `json:"studentsAffected,omitempty"`
	OccurredAt       time.Time `json:"occurredAt"`
}

func (e LifecycleEvent) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return fmt.Errorf("eventId is required")
	}
	if strings.TrimSpace(e.Kind) == "" {
		return fmt.Errorf("kind is required")
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("occurredAt is required")
	}
	return nil
}
