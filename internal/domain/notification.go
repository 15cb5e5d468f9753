package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationKind classifies an in-app notification.
type NotificationKind string

const (
	NotificationBatchCompleted  NotificationKind = "BATCH_COMPLETED"
	NotificationBatchEndingSoon NotificationKind = "BATCH_ENDING_SOON"
	NotificationEnquiryReceived NotificationKind = "ENQUIRY_RECEIVED"
)

func (k NotificationKind) String() string { return string(k) }

func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationBatchCompleted, NotificationBatchEndingSoon, NotificationEnquiryReceived:
		return true
	}
	return false
}

func ParseNotificationKindFromString(s string) (NotificationKind, error) {
	k := NotificationKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: invalid notification kind %q", ErrValidation, s)
	}
	return k, nil
}

// Notification is an append-only in-app record surfaced by the dashboard
// bell icon. There is no delivery channel and no retry.
type Notification struct {
	ID        string
	Kind      NotificationKind
	Title     string
	Message   string
	BatchID   *string
	Read      bool
	CreatedAt time.Time
}

func (n *Notification) Validate() error {
	if !n.Kind.IsValid() {
		return fmt.Errorf("%w: invalid notification kind %q", ErrValidation, n.Kind)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}
