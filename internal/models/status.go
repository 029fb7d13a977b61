package models

import "fmt"

type BookingStatus string

const (
	StatusAvailable       BookingStatus = "available"
	StatusPendingApproval BookingStatus = "pending_approval"
	StatusBooked          BookingStatus = "booked"
	StatusBlocked         BookingStatus = "blocked"
	StatusOrgSponsored    BookingStatus = "org_sponsored"
	StatusHoliday         BookingStatus = "holiday"
)

var bookingStatuses = []BookingStatus{
	StatusAvailable, StatusPendingApproval, StatusBooked,
	StatusBlocked, StatusOrgSponsored, StatusHoliday,
}

// BookingStatuses lists every booking status in display order.
func BookingStatuses() []BookingStatus {
	return append([]BookingStatus(nil), bookingStatuses...)
}

func (s BookingStatus) Valid() bool {
	for _, v := range bookingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// HoldsSponsor reports whether a record in this status carries sponsor data.
func (s BookingStatus) HoldsSponsor() bool {
	return s == StatusPendingApproval || s == StatusBooked
}

func (s *BookingStatus) UnmarshalText(b []byte) error {
	v := BookingStatus(b)
	if !v.Valid() {
		return fmt.Errorf("unknown booking status %q", string(b))
	}
	*s = v
	return nil
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

func (s *ApprovalStatus) UnmarshalText(b []byte) error {
	v := ApprovalStatus(b)
	if !v.Valid() {
		return fmt.Errorf("unknown approval status %q", string(b))
	}
	*s = v
	return nil
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCompleted PaymentStatus = "completed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

var paymentStatuses = []PaymentStatus{
	PaymentPending, PaymentPartial, PaymentCompleted, PaymentCancelled, PaymentRefunded,
}

func PaymentStatuses() []PaymentStatus {
	return append([]PaymentStatus(nil), paymentStatuses...)
}

func (s PaymentStatus) Valid() bool {
	for _, v := range paymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s *PaymentStatus) UnmarshalText(b []byte) error {
	v := PaymentStatus(b)
	if !v.Valid() {
		return fmt.Errorf("unknown payment status %q", string(b))
	}
	*s = v
	return nil
}

type PricingTier string

const (
	TierWeekday    PricingTier = "weekday"
	TierWeekend    PricingTier = "weekend"
	TierLastNights PricingTier = "last10nights"
)

func (t PricingTier) Valid() bool {
	switch t {
	case TierWeekday, TierWeekend, TierLastNights:
		return true
	}
	return false
}

func (t *PricingTier) UnmarshalText(b []byte) error {
	v := PricingTier(b)
	if !v.Valid() {
		return fmt.Errorf("unknown pricing tier %q", string(b))
	}
	*t = v
	return nil
}

type PaymentMethod string

const (
	MethodCheck PaymentMethod = "check"
	MethodCash  PaymentMethod = "cash"
	MethodZelle PaymentMethod = "zelle"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCheck, MethodCash, MethodZelle:
		return true
	}
	return false
}

func (m *PaymentMethod) UnmarshalText(b []byte) error {
	v := PaymentMethod(b)
	if !v.Valid() {
		return fmt.Errorf("unknown payment method %q", string(b))
	}
	*m = v
	return nil
}
