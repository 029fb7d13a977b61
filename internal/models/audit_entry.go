package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	ActionBookingCreated   AuditAction = "BOOKING_CREATED"
	ActionBookingApproved  AuditAction = "BOOKING_APPROVED"
	ActionBookingRejected  AuditAction = "BOOKING_REJECTED"
	ActionBookingUpdated   AuditAction = "BOOKING_UPDATED_BY_ADMIN"
	ActionPaymentUpdated   AuditAction = "PAYMENT_STATUS_UPDATED"
	ActionBookingCancelled AuditAction = "BOOKING_CANCELLED"
	ActionDateBlocked      AuditAction = "DATE_BLOCKED"
	ActionDateUnblocked    AuditAction = "DATE_UNBLOCKED"
)

// AuditEntry is append-only: rows are inserted in the same transaction as the
// state change they describe and never updated.
type AuditEntry struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	DateRecordID string         `gorm:"type:varchar(36);not null;index" json:"date_record_id"`
	Action       AuditAction    `gorm:"type:varchar(40);not null" json:"action"`
	OldValues    datatypes.JSON `json:"old_values"`
	NewValues    datatypes.JSON `json:"new_values"`
	PerformedBy  *string        `json:"performed_by"`
	IPAddress    *string        `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent    *string        `json:"user_agent"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`

	DateRecord *DateRecord `gorm:"foreignKey:DateRecordID" json:"-"`
}
