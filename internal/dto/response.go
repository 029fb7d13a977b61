package dto

import (
	"time"

	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
	Meta    any    `json:"meta,omitempty"`
}

func OK(data any) Envelope { return Envelope{Success: true, Data: data} }

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DateResponse is the public view of a calendar day. Contact and payment
// details are only attached for admins.
type DateResponse struct {
	ID                  string                 `json:"id"`
	Date                string                 `json:"date"`
	ReligiousDate       string                 `json:"religious_date"`
	ReligiousDay        int                    `json:"religious_day"`
	Weekday             string                 `json:"weekday"`
	SponsorName         *string                `json:"sponsor_name"`
	SponsorOrganization *string                `json:"sponsor_organization"`
	VendorName          *string                `json:"vendor_name"`
	ExpectedGuests      int                    `json:"expected_guests"`
	BookingStatus       models.BookingStatus   `json:"booking_status"`
	ApprovalStatus      *models.ApprovalStatus `json:"approval_status"`
	PaymentStatus       models.PaymentStatus   `json:"payment_status"`
	PricingTier         *models.PricingTier    `json:"pricing_tier"`
	FoodAmount          float64                `json:"food_amount"`
	CleaningAmount      float64                `json:"cleaning_amount"`
	TotalAmount         float64                `json:"total_amount"`
	IsSpecialNight      bool                   `json:"is_special_night"`
	SpecialNightInfo    *calendar.SpecialNight `json:"special_night_info"`
	IsLastTenNights     bool                   `json:"is_last_ten_nights"`
	PricingDescription  *string                `json:"pricing_description"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`

	*AdminDetails
}

type AdminDetails struct {
	SponsorEmail      *string               `json:"sponsor_email"`
	SponsorPhone      *string               `json:"sponsor_phone"`
	VendorContactName *string               `json:"vendor_contact_name"`
	VendorPhone       *string               `json:"vendor_phone"`
	SpecialNotes      *string               `json:"special_notes"`
	PaymentMethod     *models.PaymentMethod `json:"payment_method"`
	CheckNumber       *string               `json:"check_number"`
	ExternalReference *string               `json:"external_reference"`
	AmountPaid        float64               `json:"amount_paid"`
	Balance           float64               `json:"balance"`
	PaymentDate       *time.Time            `json:"payment_date"`
	AdminComment      *string               `json:"admin_comment"`
	ApprovedBy        *string               `json:"approved_by"`
	ApprovedAt        *time.Time            `json:"approved_at"`
	RejectionReason   *string               `json:"rejection_reason"`
}

// ToDateResponse enriches r with special-night and pricing annotations and
// includes private fields only when full is set.
func ToDateResponse(r *models.DateRecord, rules *calendar.Rules, full bool) DateResponse {
	resp := DateResponse{
		ID:                  r.ID,
		Date:                r.Date,
		ReligiousDate:       r.ReligiousDate,
		ReligiousDay:        r.ReligiousDay,
		Weekday:             r.Weekday,
		SponsorName:         r.SponsorName,
		SponsorOrganization: r.SponsorOrganization,
		VendorName:          r.VendorName,
		ExpectedGuests:      r.ExpectedGuests,
		BookingStatus:       r.BookingStatus,
		ApprovalStatus:      r.ApprovalStatus,
		PaymentStatus:       r.PaymentStatus,
		PricingTier:         r.PricingTier,
		FoodAmount:          r.FoodAmount,
		CleaningAmount:      r.CleaningAmount,
		TotalAmount:         r.TotalAmount,
		IsLastTenNights:     rules.IsLastNight(r.Date),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if n, ok := calendar.SpecialNightFor(r.Date); ok {
		resp.IsSpecialNight = true
		resp.SpecialNightInfo = &n
	}
	if d := rules.Description(r.PricingTier); d != "" {
		resp.PricingDescription = &d
	}
	if full {
		resp.AdminDetails = &AdminDetails{
			SponsorEmail:      r.SponsorEmail,
			SponsorPhone:      r.SponsorPhone,
			VendorContactName: r.VendorContactName,
			VendorPhone:       r.VendorPhone,
			SpecialNotes:      r.SpecialNotes,
			PaymentMethod:     r.PaymentMethod,
			CheckNumber:       r.CheckNumber,
			ExternalReference: r.ExternalReference,
			AmountPaid:        r.AmountPaid,
			Balance:           r.Balance,
			PaymentDate:       r.PaymentDate,
			AdminComment:      r.AdminComment,
			ApprovedBy:        r.ApprovedBy,
			ApprovedAt:        r.ApprovedAt,
			RejectionReason:   r.RejectionReason,
		}
	}
	return resp
}

func ToDateResponses(recs []models.DateRecord, rules *calendar.Rules, full bool) []DateResponse {
	out := make([]DateResponse, len(recs))
	for i := range recs {
		out[i] = ToDateResponse(&recs[i], rules, full)
	}
	return out
}

// SubmissionResponse confirms a sponsorship request and tells the sponsor how to pay.
type SubmissionResponse struct {
	ID                 string                 `json:"id"`
	Date               string                 `json:"date"`
	ReligiousDate      string                 `json:"religious_date"`
	SponsorName        *string                `json:"sponsor_name"`
	BookingStatus      models.BookingStatus   `json:"booking_status"`
	ApprovalStatus     *models.ApprovalStatus `json:"approval_status"`
	TotalAmount        float64                `json:"total_amount"`
	PricingDescription string                 `json:"pricing_description"`
	ZelleInfo          string                 `json:"zelle_info"`
}

func ToSubmissionResponse(r *models.DateRecord, rules *calendar.Rules) SubmissionResponse {
	return SubmissionResponse{
		ID:                 r.ID,
		Date:               r.Date,
		ReligiousDate:      r.ReligiousDate,
		SponsorName:        r.SponsorName,
		BookingStatus:      r.BookingStatus,
		ApprovalStatus:     r.ApprovalStatus,
		TotalAmount:        r.TotalAmount,
		PricingDescription: rules.Description(r.PricingTier),
		ZelleInfo:          rules.Config().ZelleAddress,
	}
}

type CalendarMeta struct {
	Total         int                  `json:"total"`
	Year          int                  `json:"year"`
	ReligiousYear int                  `json:"religious_year"`
	ZelleInfo     string               `json:"zelle_info"`
	Pricing       PricingConfigPayload `json:"pricing"`
}

type PricingConfigPayload struct {
	Weekday    TierPayload `json:"weekday"`
	Weekend    TierPayload `json:"weekend"`
	LastNights TierPayload `json:"last10nights"`
}

type TierPayload struct {
	FoodAmount     float64 `json:"food_amount"`
	CleaningAmount float64 `json:"cleaning_amount"`
	Total          float64 `json:"total"`
	Description    string  `json:"description"`
}

type GuestCapacity struct {
	Weekday int `json:"weekday"`
	Weekend int `json:"weekend"`
}

type PricingResponse struct {
	ZelleInfo     string               `json:"zelle_info"`
	Pricing       PricingConfigPayload `json:"pricing"`
	GuestCapacity GuestCapacity        `json:"guest_capacity"`
	LastNights    []string             `json:"last_nights"`
}

func ToPricingPayload(rules *calendar.Rules) PricingConfigPayload {
	p := rules.Config().Pricing
	tier := func(food, cleaning float64, desc string) TierPayload {
		return TierPayload{FoodAmount: food, CleaningAmount: cleaning, Total: food + cleaning, Description: desc}
	}
	return PricingConfigPayload{
		Weekday:    tier(p.Weekday.Food, p.Weekday.Cleaning, p.Weekday.Description),
		Weekend:    tier(p.Weekend.Food, p.Weekend.Cleaning, p.Weekend.Description),
		LastNights: tier(p.LastNights.Food, p.LastNights.Cleaning, p.LastNights.Description),
	}
}

func ToPricingResponse(rules *calendar.Rules) PricingResponse {
	cfg := rules.Config()
	return PricingResponse{
		ZelleInfo:     cfg.ZelleAddress,
		Pricing:       ToPricingPayload(rules),
		GuestCapacity: GuestCapacity{Weekday: cfg.WeekdayGuests, Weekend: cfg.WeekendGuests},
		LastNights:    append([]string(nil), cfg.LastNights...),
	}
}

func ToCalendarMeta(total int, rules *calendar.Rules) CalendarMeta {
	cfg := rules.Config()
	return CalendarMeta{
		Total:         total,
		Year:          cfg.Year,
		ReligiousYear: cfg.ReligiousYear,
		ZelleInfo:     cfg.ZelleAddress,
		Pricing:       ToPricingPayload(rules),
	}
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn string    `json:"expires_in"`
}

type ExportMeta struct {
	ExportedAt time.Time `json:"exported_at"`
	ExportedBy string    `json:"exported_by"`
	Total      int       `json:"total"`
}
