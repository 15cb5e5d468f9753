package queue

import "context"

// Publisher publishes lifecycle events to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, evt LifecycleEvent) error
	Close() error
}

const (
	// EventsExchange is the durable topic exchange lifecycle events go to.
	EventsExchange = "batchline.events"
	// AuditQueue receives a copy of every event for offline inspection.
	AuditQueue = "batchline.lifecycle.audit"
)

// Routing keys per event kind.
const (
	RouteBatchCompleted   = "batch.completed"
	RouteBatchEndingSoon  = "batch.ending_soon"
	RouteBatchReactivated = "batch.reactivated"
	RouteEnquiryReceived  = "enquiry.received"
)
