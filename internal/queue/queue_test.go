package queue

import (
	"strings"
	"testing"
	"time"
)

func TestLifecycleEventValidate(t *testing.T) {
	valid := LifecycleEvent{
		EventID:    "evt-1",
		Kind:       RouteBatchCompleted,
		BatchID:    "WDB1",
		OccurredAt: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	missingID := valid
	missingID.EventID = "  "
	if err := missingID.Validate(); err == nil {
		t.Fatal("expected error for missing event id")
	}

	missingKind := valid
	missingKind.Kind = ""
	if err := missingKind.Validate(); err == nil {
		t.Fatal("expected error for missing kind")
	}

	missingTime := valid
	missingTime.OccurredAt = time.Time{}
	if err := missingTime.Validate(); err == nil {
		t.Fatal("expected error for zero occurredAt")
	}
}

func TestRoutingKeyPrefixes(t *testing.T) {
	for _, key := range []string{RouteBatchCompleted, RouteBatchEndingSoon, RouteBatchReactivated} {
		if !strings.HasPrefix(key, "batch.") {
			t.Fatalf("routing key %q should carry the batch. prefix", key)
		}
	}
	if !strings.HasPrefix(RouteEnquiryReceived, "enquiry.") {
		t.Fatalf("routing key %q should carry the enquiry. prefix", RouteEnquiryReceived)
	}
}
