// Package lifecycle is the booking state machine. Every transition is a pure
// function of the current record and a command; persistence lives elsewhere.
package lifecycle

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

const DefaultRejectionReason = "Booking rejected by admin"

// Snapshot is the JSON-shaped value set stored in an audit entry.
type Snapshot map[string]any

// Outcome is the result of applying a command to a record.
type Outcome struct {
	Record models.DateRecord
	Action models.AuditAction
	Actor  *string
	Old    Snapshot
	New    Snapshot
	// Changed is false when the command was a no-op and nothing must be written.
	Changed bool
}

type Command interface {
	apply(cur models.DateRecord, now time.Time) (Outcome, error)
}

// Apply validates cmd against cur and returns the next state of the record.
// cur is never modified.
func Apply(cur models.DateRecord, cmd Command, now time.Time) (Outcome, error) {
	out, err := cmd.apply(cur, now)
	if err != nil {
		return Outcome{}, err
	}
	if out.Changed {
		out.Record.UpdatedAt = now
	}
	return out, nil
}

type SponsorInfo struct {
	Name         string `json:"sponsor_name"`
	Email        string `json:"sponsor_email,omitempty"`
	Phone        string `json:"sponsor_phone,omitempty"`
	Organization string `json:"sponsor_organization,omitempty"`
}

type VendorInfo struct {
	Name        string `json:"vendor_name,omitempty"`
	ContactName string `json:"vendor_contact_name,omitempty"`
	Phone       string `json:"vendor_phone,omitempty"`
}

// Submit is a public sponsorship request for an available date.
type Submit struct {
	Quote          calendar.Quote
	DefaultGuests  int
	Sponsor        SponsorInfo
	Vendor         VendorInfo
	ExpectedGuests *int
	SpecialNotes   string
	PaymentMethod  *models.PaymentMethod
}

func (c Submit) apply(cur models.DateRecord, now time.Time) (Outcome, error) {
	switch cur.BookingStatus {
	case models.StatusAvailable:
	case models.StatusBlocked:
		return Outcome{}, fmt.Errorf("%w: date %s is blocked and cannot be booked", ErrConflict, cur.Date)
	case models.StatusOrgSponsored:
		return Outcome{}, fmt.Errorf("%w: date %s is sponsored by the organization and cannot be booked", ErrConflict, cur.Date)
	case models.StatusBooked, models.StatusPendingApproval:
		return Outcome{}, fmt.Errorf("%w: date %s is already booked or pending approval", ErrConflict, cur.Date)
	default:
		return Outcome{}, fmt.Errorf("%w: date %s is not open for booking", ErrConflict, cur.Date)
	}
	if strings.TrimSpace(c.Sponsor.Name) == "" {
		return Outcome{}, fmt.Errorf("%w: sponsor name is required", ErrValidation)
	}

	guests := c.DefaultGuests
	if c.ExpectedGuests != nil && *c.ExpectedGuests > 0 {
		guests = *c.ExpectedGuests
	}
	tier := c.Quote.Tier

	next := cur
	next.SponsorName = optional(c.Sponsor.Name)
	next.SponsorEmail = optional(c.Sponsor.Email)
	next.SponsorPhone = optional(c.Sponsor.Phone)
	next.SponsorOrganization = optional(c.Sponsor.Organization)
	next.VendorName = optional(c.Vendor.Name)
	next.VendorContactName = optional(c.Vendor.ContactName)
	next.VendorPhone = optional(c.Vendor.Phone)
	next.ExpectedGuests = guests
	next.SpecialNotes = optional(c.SpecialNotes)
	next.FoodAmount = c.Quote.FoodAmount
	next.CleaningAmount = c.Quote.CleaningAmount
	next.TotalAmount = c.Quote.FoodAmount + c.Quote.CleaningAmount
	next.PricingTier = &tier
	next.PaymentMethod = c.PaymentMethod
	next.CheckNumber = nil
	next.ExternalReference = nil
	next.AmountPaid = 0
	next.Balance = next.TotalAmount
	next.PaymentStatus = models.PaymentPending
	next.PaymentDate = nil
	next.AdminComment = nil
	next.BookingStatus = models.StatusPendingApproval
	next.ApprovalStatus = approval(models.ApprovalPending)
	next.ApprovedBy = nil
	next.ApprovedAt = nil
	next.RejectionReason = nil

	newValues := Snapshot{
		"sponsor_name":         c.Sponsor.Name,
		"sponsor_email":        c.Sponsor.Email,
		"sponsor_phone":        c.Sponsor.Phone,
		"sponsor_organization": c.Sponsor.Organization,
		"vendor_name":          c.Vendor.Name,
		"vendor_contact_name":  c.Vendor.ContactName,
		"vendor_phone":         c.Vendor.Phone,
		"expected_guests":      guests,
		"special_notes":        c.SpecialNotes,
		"food_amount":          next.FoodAmount,
		"cleaning_amount":      next.CleaningAmount,
		"total_amount":         next.TotalAmount,
		"pricing_tier":         tier,
	}
	if c.PaymentMethod != nil {
		newValues["payment_method"] = *c.PaymentMethod
	}

	return Outcome{
		Record:  next,
		Action:  models.ActionBookingCreated,
		New:     newValues,
		Changed: true,
	}, nil
}

// Approve confirms a pending request.
type Approve struct {
	By string
}

func (c Approve) apply(cur models.DateRecord, now time.Time) (Outcome, error) {
	if cur.BookingStatus != models.StatusPendingApproval || cur.ApprovalStatus == nil || *cur.ApprovalStatus != models.ApprovalPending {
		return Outcome{}, fmt.Errorf("%w: booking for %s is not pending approval", ErrConflict, cur.Date)
	}

	at := now
	next := cur
	next.BookingStatus = models.StatusBooked
	next.ApprovalStatus = approval(models.ApprovalApproved)
	next.ApprovedBy = optional(c.By)
	next.ApprovedAt = &at

	return Outcome{
		Record:  next,
		Action:  models.ActionBookingApproved,
		Actor:   optional(c.By),
		Old:     RecordSnapshot(cur),
		New:     Snapshot{"approved_by": c.By},
		Changed: true,
	}, nil
}

// Reject releases a pending or booked date and records why.
type Reject struct {
	By     string
	Reason string
}

func (c Reject) apply(cur models.DateRecord, now time.Time) (Outcome, error) {
	if !cur.BookingStatus.HoldsSponsor() {
		return Outcome{}, fmt.Errorf("%w: date %s has no booking to reject", ErrConflict, cur.Date)
	}
	reason := strings.TrimSpace(c.Reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}

	next := cur
	clearBooking(&next)
	next.ApprovalStatus = approval(models.ApprovalRejected)
	next.RejectionReason = &reason

	// The sponsor contact is kept in the audit entry so that notifications
	// can be sent after the live record has been cleared.
	return Outcome{
		Record: next,
		Action: models.ActionBookingRejected,
		Actor:  optional(c.By),
		Old:    RecordSnapshot(cur),
		New: Snapshot{
			"rejected_by":      c.By,
			"rejection_reason": reason,
			"sponsor_name":     deref(cur.SponsorName),
			"sponsor_email":    deref(cur.SponsorEmail),
		},
		Changed: true,
	}, nil
}

// UpdatePatch lists the fields an admin may edit. Nil means "leave as is";
// an empty string clears a text field.
type UpdatePatch struct {
	SponsorName         *string               `json:"sponsor_name,omitempty"`
	SponsorEmail        *string               `json:"sponsor_email,omitempty"`
	SponsorPhone        *string               `json:"sponsor_phone,omitempty"`
	SponsorOrganization *string               `json:"sponsor_organization,omitempty"`
	VendorName          *string               `json:"vendor_name,omitempty"`
	VendorContactName   *string               `json:"vendor_contact_name,omitempty"`
	VendorPhone         *string               `json:"vendor_phone,omitempty"`
	ExpectedGuests      *int                  `json:"expected_guests,omitempty"`
	SpecialNotes        *string               `json:"special_notes,omitempty"`
	FoodAmount          *float64              `json:"food_amount,omitempty"`
	CleaningAmount      *float64              `json:"cleaning_amount,omitempty"`
	PaymentMethod       *models.PaymentMethod `json:"payment_method,omitempty"`
	CheckNumber         *string               `json:"check_number,omitempty"`
	ExternalReference   *string               `json:"external_reference,omitempty"`
	AmountPaid          *float64              `json:"amount_paid,omitempty"`
	PaymentStatus       *models.PaymentStatus `json:"payment_status,omitempty"`
	AdminComment        *string               `json:"admin_comment,omitempty"`
}

// AdminUpdate edits allow-listed fields. Identity and state fields are not reachable.
type AdminUpdate struct {
	By    string
	Patch UpdatePatch
}

func (c AdminUpdate) apply(cur models.DateRecord, now time.Time) (Outcome, error) {
	p := c.Patch
	for name, v := range map[string]*float64{
		"food_amount":     p.FoodAmount,
		"cleaning_amount": p.CleaningAmount,
		"amount_paid":     p.AmountPaid,
	} {
		if v != nil && *v < 0 {
			return Outcome{}, fmt.Errorf("%w: %s must be non-negative", ErrValidation, name)
		}
	}
	if p.ExpectedGuests != nil && *p.ExpectedGuests < 0 {
		return Outcome{}, fmt.Errorf("%w: expected_guests must be non-negative", ErrValidation)
	}
	if p.PaymentStatus != nil && !p.PaymentStatus.Valid() {
		return Outcome{}, fmt.Errorf("%w: invalid payment status %q", ErrValidation, *p.PaymentStatus)
	}
	if p.PaymentMethod != nil && !p.PaymentMethod.Valid() {
		return Outcome{}, fmt.Errorf("%w: invalid payment method %q", ErrValidation, *p.PaymentMethod)
	}

	next := cur
	oldValues, newValues := Snapshot{}, Snapshot{}

	text := func(name string, src *string, dst **string) {
		if src == nil {
			return
		}
		oldValues[name] = deref(*dst)
		newValues[name] = *src
		*dst = optional(*src)
	}
	text("sponsor_name", p.SponsorName, &next.SponsorName)
	text("sponsor_email", p.SponsorEmail, &next.SponsorEmail)
	text("sponsor_phone", p.SponsorPhone, &next.SponsorPhone)
	text("sponsor_organization", p.SponsorOrganization, &next.SponsorOrganization)
	text("vendor_name", p.VendorName, &next.VendorName)
	text("vendor_contact_name", p.VendorContactName, &next.VendorContactName)
	text("vendor_phone", p.VendorPhone, &next.VendorPhone)
	text("special_notes", p.SpecialNotes, &next.SpecialNotes)
	text("check_number", p.CheckNumber, &next.CheckNumber)
	text("external_reference", p.ExternalReference, &next.ExternalReference)
	text("admin_comment", p.AdminComment, &next.AdminComment)

	if p.ExpectedGuests != nil {
		oldValues["expected_guests"] = cur.ExpectedGuests
		newValues["expected_guests"] = *p.ExpectedGuests
		next.ExpectedGuests = *p.ExpectedGuests
	}
	if p.PaymentMethod != nil {
		method := *p.PaymentMethod
		if cur.PaymentMethod != nil {
			oldValues["payment_method"] = *cur.PaymentMethod
		} else {
			oldValues["payment_method"] = nil
		}
		newValues["payment_method"] = method
		next.PaymentMethod = &method
	}
	if p.PaymentStatus != nil {
		oldValues["payment_status"] = cur.PaymentStatus
		newValues["payment_status"] = *p.PaymentStatus
		next.PaymentStatus = *p.PaymentStatus
	}

	amountsChanged := p.FoodAmount != nil || p.CleaningAmount != nil
	if p.FoodAmount != nil {
		oldValues["food_amount"] = cur.FoodAmount
		newValues["food_amount"] = *p.FoodAmount
		next.FoodAmount = *p.FoodAmount
	}
	if p.CleaningAmount != nil {
		oldValues["cleaning_amount"] = cur.CleaningAmount
		newValues["cleaning_amount"] = *p.CleaningAmount
		next.CleaningAmount = *p.CleaningAmount
	}
	if amountsChanged {
		next.TotalAmount = next.FoodAmount + next.CleaningAmount
		oldValues["total_amount"] = cur.TotalAmount
		newValues["total_amount"] = next.TotalAmount
	}
	if p.AmountPaid != nil {
		oldValues["amount_paid"] = cur.AmountPaid
		newValues["amount_paid"] = *p.AmountPaid
		next.AmountPaid = *p.AmountPaid
	}
	if amountsChanged || p.AmountPaid != nil {
		next.Balance = next.TotalAmount - next.AmountPaid
		oldValues["balance"] = cur.Balance
		newValues["balance"] = next.Balance
	}

	if len(newValues) == 0 {
		return Outcome{Record: cur}, nil
	}

	return Outcome{
		Record:  next,
		Action:  models.ActionBookingUpdated,
		Actor:   optional(c.By),
		Old:     oldValues,
		New:     newValues,
		Changed: true,
	}, nil
}

// UpdatePayment records a payment state change.
type UpdatePayment struct {
	By                string
	Status            models.PaymentStatus
	AmountPaid        *float64
	Method            *models.PaymentMethod
	CheckNumber       string
	ExternalReference string
}

func (c UpdatePayment) apply(cur models.DateRecord, now time.Time) (Outcome, error) {
	if !c.Status.Valid() {
		return Outcome{}, fmt.Errorf("%w: invalid payment status %q", ErrValidation, c.Status)
	}
	if c.Method != nil && !c.Method.Valid() {
		return Outcome{}, fmt.Errorf("%w: invalid payment method %q", ErrValidation, *c.Method)
	}
	if c.AmountPaid != nil && *c.AmountPaid < 0 {
		return Outcome{}, fmt.Errorf("%w: amount_paid must be non-negative", ErrValidation)
	}

	next := cur
	next.PaymentStatus = c.Status
	newValues := Snapshot{"payment_status": c.Status}

	if c.AmountPaid != nil {
		next.AmountPaid = *c.AmountPaid
		next.Balance = next.TotalAmount - next.AmountPaid
		newValues["amount_paid"] = next.AmountPaid
		newValues["balance"] = next.Balance
	}
	if c.Method != nil {
		method := *c.Method
		next.PaymentMethod = &method
		newValues["payment_method"] = method
	}
	if c.CheckNumber != "" {
		next.CheckNumber = optional(c.CheckNumber)
		newValues["check_number"] = c.CheckNumber
	}
	if c.ExternalReference != "" {
		next.ExternalReference = optional(c.ExternalReference)
		newValues["external_reference"] = c.ExternalReference
	}
	if c.Status == models.PaymentCompleted {
		at := now
		next.PaymentDate = &at
		newValues["payment_date"] = at
	}

	return Outcome{
		Record: next,
		Action: models.ActionPaymentUpdated,
		Actor:  optional(c.By),
		Old: Snapshot{
			"payment_status": cur.PaymentStatus,
			"amount_paid":    cur.AmountPaid,
			"balance":        cur.Balance,
		},
		New:     newValues,
		Changed: true,
	}, nil
}

// Cancel returns a date to available and wipes all booking and approval data.
// Blocked, holiday and org-sponsored dates are not cancellable.
type Cancel struct {
	By string
}

func (c Cancel) apply(cur models.DateRecord, now time.Time) (Outcome, error) {
	switch cur.BookingStatus {
	case models.StatusOrgSponsored:
		return Outcome{}, fmt.Errorf("%w: date %s is sponsored by the organization and cannot be modified", ErrConflict, cur.Date)
	case models.StatusBlocked, models.StatusHoliday:
		return Outcome{}, fmt.Errorf("%w: date %s is %s and has no booking to cancel", ErrConflict, cur.Date, cur.BookingStatus)
	}

	next := cur
	clearBooking(&next)
	next.ApprovalStatus = nil
	next.ApprovedBy = nil
	next.ApprovedAt = nil
	next.RejectionReason = nil
	next.AdminComment = nil

	return Outcome{
		Record:  next,
		Action:  models.ActionBookingCancelled,
		Actor:   optional(c.By),
		Old:     RecordSnapshot(cur),
		Changed: true,
	}, nil
}

// SetBlocked blocks an open date or unblocks a blocked one.
type SetBlocked struct {
	By      string
	Blocked bool
}

func (c SetBlocked) apply(cur models.DateRecord, now time.Time) (Outcome, error) {
	if cur.BookingStatus == models.StatusOrgSponsored {
		return Outcome{}, fmt.Errorf("%w: date %s is sponsored by the organization and cannot be modified", ErrConflict, cur.Date)
	}
	switch {
	case c.Blocked && cur.BookingStatus.HoldsSponsor():
		return Outcome{}, fmt.Errorf("%w: cannot block %s, it is already booked or pending approval", ErrConflict, cur.Date)
	case c.Blocked && cur.BookingStatus == models.StatusHoliday:
		return Outcome{}, fmt.Errorf("%w: cannot block %s, it is a holiday", ErrConflict, cur.Date)
	case !c.Blocked && cur.BookingStatus != models.StatusBlocked:
		return Outcome{}, fmt.Errorf("%w: date %s is not blocked", ErrConflict, cur.Date)
	}

	action, status := models.ActionDateUnblocked, models.StatusAvailable
	if c.Blocked {
		action, status = models.ActionDateBlocked, models.StatusBlocked
	}

	next := cur
	next.BookingStatus = status

	return Outcome{
		Record:  next,
		Action:  action,
		Actor:   optional(c.By),
		Old:     Snapshot{"booking_status": cur.BookingStatus},
		New:     Snapshot{"booking_status": status},
		Changed: true,
	}, nil
}

func clearBooking(r *models.DateRecord) {
	r.SponsorName = nil
	r.SponsorEmail = nil
	r.SponsorPhone = nil
	r.SponsorOrganization = nil
	r.VendorName = nil
	r.VendorContactName = nil
	r.VendorPhone = nil
	r.SpecialNotes = nil
	r.PaymentMethod = nil
	r.CheckNumber = nil
	r.ExternalReference = nil
	r.AmountPaid = 0
	r.Balance = 0
	r.PaymentStatus = models.PaymentPending
	r.PaymentDate = nil
	r.BookingStatus = models.StatusAvailable
}

// RecordSnapshot captures every column of r in its JSON form.
func RecordSnapshot(r models.DateRecord) Snapshot {
	b, err := json.Marshal(r)
	if err != nil {
		return Snapshot{"id": r.ID, "date": r.Date}
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{"id": r.ID, "date": r.Date}
	}
	return s
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func approval(s models.ApprovalStatus) *models.ApprovalStatus { return &s }
