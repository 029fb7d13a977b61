package models

import "time"

// DateRecord is one bookable calendar day. Rows are seeded once and never deleted.
type DateRecord struct {
	ID            string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Date          string `gorm:"type:varchar(10);not null;uniqueIndex" json:"date"`
	ReligiousDate string `gorm:"not null" json:"religious_date"`
	ReligiousDay  int    `gorm:"not null" json:"religious_day"`
	Weekday       string `gorm:"type:varchar(10);not null" json:"weekday"`

	BookingStatus   BookingStatus   `gorm:"type:varchar(20);not null;default:'available';index" json:"booking_status"`
	ApprovalStatus  *ApprovalStatus `gorm:"type:varchar(20);index" json:"approval_status"`
	ApprovedBy      *string         `json:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	RejectionReason *string         `json:"rejection_reason"`

	SponsorName         *string `json:"sponsor_name"`
	SponsorEmail        *string `json:"sponsor_email"`
	SponsorPhone        *string `json:"sponsor_phone"`
	SponsorOrganization *string `json:"sponsor_organization"`

	VendorName        *string `json:"vendor_name"`
	VendorContactName *string `json:"vendor_contact_name"`
	VendorPhone       *string `json:"vendor_phone"`
	ExpectedGuests    int     `gorm:"not null;default:0" json:"expected_guests"`
	SpecialNotes      *string `json:"special_notes"`

	FoodAmount        float64        `gorm:"not null;default:0" json:"food_amount"`
	CleaningAmount    float64        `gorm:"not null;default:0" json:"cleaning_amount"`
	TotalAmount       float64        `gorm:"not null;default:0" json:"total_amount"`
	PricingTier       *PricingTier   `gorm:"type:varchar(20)" json:"pricing_tier"`
	PaymentMethod     *PaymentMethod `gorm:"type:varchar(10)" json:"payment_method"`
	CheckNumber       *string        `json:"check_number"`
	ExternalReference *string        `json:"external_reference"`
	AmountPaid        float64        `gorm:"not null;default:0" json:"amount_paid"`
	Balance           float64        `gorm:"not null;default:0" json:"balance"`
	PaymentStatus     PaymentStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	PaymentDate       *time.Time     `json:"payment_date"`

	AdminComment *string `json:"admin_comment"`

	// Version guards the read-validate-write cycle against lost updates.
	Version   int       `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Statistics aggregates the calendar by booking and payment state.
type Statistics struct {
	TotalDates        int64   `json:"total_dates"`
	AvailableDates    int64   `json:"available_dates"`
	BookedDates       int64   `json:"booked_dates"`
	PendingDates      int64   `json:"pending_dates"`
	BlockedDates      int64   `json:"blocked_dates"`
	OrgSponsoredDates int64   `json:"org_sponsored_dates"`
	HolidayDates      int64   `json:"holiday_dates"`
	PaymentsCompleted int64   `json:"payments_completed"`
	PaymentsPartial   int64   `json:"payments_partial"`
	PaymentsPending   int64   `json:"payments_pending"`
	TotalExpected     float64 `json:"total_expected"`
	TotalCollected    float64 `json:"total_collected"`

	ByBookingStatus map[BookingStatus]int64 `json:"by_booking_status"`
	ByPaymentStatus map[PaymentStatus]int64 `json:"by_payment_status"`
}

// ExportRow is the flat shape consumed by the export renderers.
type ExportRow struct {
	Date                string          `json:"date"`
	ReligiousDate       string          `json:"religious_date"`
	ReligiousDay        int             `json:"religious_day"`
	Weekday             string          `json:"weekday"`
	SponsorName         *string         `json:"sponsor_name"`
	SponsorPhone        *string         `json:"sponsor_phone"`
	SponsorEmail        *string         `json:"sponsor_email"`
	SponsorOrganization *string         `json:"sponsor_organization"`
	FoodAmount          float64         `json:"food_amount"`
	CleaningAmount      float64         `json:"cleaning_amount"`
	TotalAmount         float64         `json:"total_amount"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	AmountPaid          float64         `json:"amount_paid"`
	Balance             float64         `json:"balance"`
	VendorName          *string         `json:"vendor_name"`
	VendorContactName   *string         `json:"vendor_contact_name"`
	VendorPhone         *string         `json:"vendor_phone"`
	PaymentMethod       *PaymentMethod  `json:"payment_method"`
	CheckNumber         *string         `json:"check_number"`
	ExternalReference   *string         `json:"external_reference"`
	SpecialNotes        *string         `json:"special_notes"`
	AdminComment        *string         `json:"admin_comment"`
	BookingStatus       BookingStatus   `json:"booking_status"`
	ApprovalStatus      *ApprovalStatus `json:"approval_status"`
}
