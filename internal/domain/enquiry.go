package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// EnquiryStatus tracks a lead through the admission funnel.
type EnquiryStatus string

const (
	EnquiryStatusNew       EnquiryStatus = "NEW"
	EnquiryStatusContacted EnquiryStatus = "CONTACTED"
	EnquiryStatusEnrolled  EnquiryStatus = "ENROLLED"
	EnquiryStatusClosed    EnquiryStatus = "CLOSED"
)

func (s EnquiryStatus) String() string { return string(s) }

func (s EnquiryStatus) IsValid() bool {
	switch s {
	case EnquiryStatusNew, EnquiryStatusContacted, EnquiryStatusEnrolled, EnquiryStatusClosed:
		return true
	}
	return false
}

func ParseEnquiryStatusFromString(s string) (EnquiryStatus, error) {
	st := EnquiryStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid enquiry status %q", ErrValidation, s)
	}
	return st, nil
}

// Enquiry is a lead, either entered by staff or ingested from a third-party
// form webhook. Email and phone are the best-effort match keys for upserts.
type Enquiry struct {
	ID         string
	FullName   string
	Email      string
	Phone      string
	CourseName string
	Source     string
	Notes      string
	Status     EnquiryStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e *Enquiry) Validate() error {
	if strings.TrimSpace(e.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if strings.TrimSpace(e.Email) == "" && strings.TrimSpace(e.Phone) == "" {
		return fmt.Errorf("%w: email or phone is required", ErrValidation)
	}
	if e.Status != "" && !e.Status.IsValid() {
		return fmt.Errorf("%w: invalid enquiry status %q", ErrValidation, e.Status)
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips everything except digits and a leading plus, so
// "+91 98765-43210" and "9876543210" formatted variants compare equal when
// the country code matches.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (i == 0 && r == '+') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
