package models

import "time"

// LifecycleEvent is published to the broker after a transition commits. It
// carries the audit snapshots so consumers never have to re-read the record,
// which may already have been cleared.
type LifecycleEvent struct {
	Action       AuditAction    `json:"action"`
	DateRecordID string         `json:"date_record_id"`
	Date         string         `json:"date"`
	Actor        *string        `json:"actor,omitempty"`
	OldValues    map[string]any `json:"old_values,omitempty"`
	NewValues    map[string]any `json:"new_values,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

var routingKeys = map[AuditAction]string{
	ActionBookingCreated:   "booking.created",
	ActionBookingApproved:  "booking.approved",
	ActionBookingRejected:  "booking.rejected",
	ActionBookingUpdated:   "booking.updated",
	ActionPaymentUpdated:   "booking.payment_updated",
	ActionBookingCancelled: "booking.cancelled",
	ActionDateBlocked:      "date.blocked",
	ActionDateUnblocked:    "date.unblocked",
}

// RoutingKey is the topic key an action is published under.
func (a AuditAction) RoutingKey() string {
	if k, ok := routingKeys[a]; ok {
		return k
	}
	return "booking.unknown"
}
