package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

var now = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func availableRecord() models.DateRecord {
	return models.DateRecord{
		ID:            "rec-1",
		Date:          "2026-02-23",
		ReligiousDate: "6 Ramadan 1447",
		ReligiousDay:  6,
		Weekday:       "Monday",
		BookingStatus: models.StatusAvailable,
		PaymentStatus: models.PaymentPending,
		Version:       1,
	}
}

func weekdayQuote() calendar.Quote {
	return calendar.Quote{FoodAmount: 1400, CleaningAmount: 100, Total: 1500, Tier: models.TierWeekday}
}

func submitted(t *testing.T) models.DateRecord {
	t.Helper()
	out, err := Apply(availableRecord(), Submit{
		Quote:         weekdayQuote(),
		DefaultGuests: 100,
		Sponsor:       SponsorInfo{Name: "Ali Khan", Email: "ali@example.com", Phone: "555-0100"},
	}, now)
	require.NoError(t, err)
	return out.Record
}

func TestSubmit_Available(t *testing.T) {
	out, err := Apply(availableRecord(), Submit{
		Quote:         weekdayQuote(),
		DefaultGuests: 100,
		Sponsor:       SponsorInfo{Name: "Ali Khan", Email: "ali@example.com"},
	}, now)
	require.NoError(t, err)

	r := out.Record
	assert.Equal(t, models.StatusPendingApproval, r.BookingStatus)
	require.NotNil(t, r.ApprovalStatus)
	assert.Equal(t, models.ApprovalPending, *r.ApprovalStatus)
	assert.Equal(t, "Ali Khan", *r.SponsorName)
	assert.Equal(t, 1500.0, r.TotalAmount)
	assert.Equal(t, 1500.0, r.Balance)
	assert.Equal(t, 0.0, r.AmountPaid)
	assert.Equal(t, 100, r.ExpectedGuests)
	assert.Equal(t, models.TierWeekday, *r.PricingTier)
	assert.Equal(t, models.ActionBookingCreated, out.Action)
	assert.Nil(t, out.Actor)
	assert.Nil(t, out.Old)
	assert.Equal(t, now, r.UpdatedAt)
}

func TestSubmit_ExplicitGuestsAndMethod(t *testing.T) {
	guests := 250
	method := models.MethodZelle
	out, err := Apply(availableRecord(), Submit{
		Quote:          weekdayQuote(),
		DefaultGuests:  100,
		Sponsor:        SponsorInfo{Name: "Sara"},
		ExpectedGuests: &guests,
		PaymentMethod:  &method,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, 250, out.Record.ExpectedGuests)
	assert.Equal(t, models.MethodZelle, *out.Record.PaymentMethod)
}

func TestSubmit_ClearsPreviousRejection(t *testing.T) {
	rec := availableRecord()
	rec.RejectionReason = strPtr("duplicate")
	rec.ApprovedBy = strPtr("admin1")

	out, err := Apply(rec, Submit{Quote: weekdayQuote(), Sponsor: SponsorInfo{Name: "Ali"}}, now)
	require.NoError(t, err)
	assert.Nil(t, out.Record.RejectionReason)
	assert.Nil(t, out.Record.ApprovedBy)
}

func TestSubmit_NotOpen(t *testing.T) {
	for _, status := range []models.BookingStatus{
		models.StatusBlocked, models.StatusOrgSponsored, models.StatusBooked,
		models.StatusPendingApproval, models.StatusHoliday,
	} {
		t.Run(string(status), func(t *testing.T) {
			rec := availableRecord()
			rec.BookingStatus = status
			_, err := Apply(rec, Submit{Quote: weekdayQuote(), Sponsor: SponsorInfo{Name: "Ali"}}, now)
			assert.True(t, errors.Is(err, ErrConflict))
		})
	}
}

func TestSubmit_RequiresSponsorName(t *testing.T) {
	_, err := Apply(availableRecord(), Submit{Quote: weekdayQuote(), Sponsor: SponsorInfo{Name: "  "}}, now)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestApprove(t *testing.T) {
	out, err := Apply(submitted(t), Approve{By: "admin1"}, now)
	require.NoError(t, err)

	r := out.Record
	assert.Equal(t, models.StatusBooked, r.BookingStatus)
	assert.Equal(t, models.ApprovalApproved, *r.ApprovalStatus)
	assert.Equal(t, "admin1", *r.ApprovedBy)
	assert.Equal(t, now, *r.ApprovedAt)
	assert.Equal(t, models.ActionBookingApproved, out.Action)
	assert.Equal(t, "Ali Khan", out.Old["sponsor_name"])
	assert.Equal(t, "pending_approval", out.Old["booking_status"])
}

func TestApprove_NotPending(t *testing.T) {
	_, err := Apply(availableRecord(), Approve{By: "admin1"}, now)
	assert.True(t, errors.Is(err, ErrConflict))

	booked, err := Apply(submitted(t), Approve{By: "admin1"}, now)
	require.NoError(t, err)
	_, err = Apply(booked.Record, Approve{By: "admin1"}, now)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestReject_ClearsSponsorAndKeepsContactInAudit(t *testing.T) {
	out, err := Apply(submitted(t), Reject{By: "admin1", Reason: "Date reserved"}, now)
	require.NoError(t, err)

	r := out.Record
	assert.Equal(t, models.StatusAvailable, r.BookingStatus)
	assert.Equal(t, models.ApprovalRejected, *r.ApprovalStatus)
	assert.Equal(t, "Date reserved", *r.RejectionReason)
	assert.Nil(t, r.SponsorName)
	assert.Nil(t, r.SponsorEmail)
	assert.Nil(t, r.VendorName)
	assert.Equal(t, 0.0, r.AmountPaid)
	assert.Equal(t, 0.0, r.Balance)
	assert.Equal(t, models.PaymentPending, r.PaymentStatus)

	assert.Equal(t, "ali@example.com", out.New["sponsor_email"])
	assert.Equal(t, "Ali Khan", out.New["sponsor_name"])
	assert.Equal(t, "admin1", *out.Actor)
}

func TestReject_DefaultReason(t *testing.T) {
	out, err := Apply(submitted(t), Reject{By: "admin1"}, now)
	require.NoError(t, err)
	assert.Equal(t, DefaultRejectionReason, *out.Record.RejectionReason)
}

func TestReject_Twice(t *testing.T) {
	out, err := Apply(submitted(t), Reject{By: "admin1"}, now)
	require.NoError(t, err)
	_, err = Apply(out.Record, Reject{By: "admin1"}, now)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestAdminUpdate_RecomputesTotals(t *testing.T) {
	rec := submitted(t)
	food := 2000.0
	paid := 500.0
	out, err := Apply(rec, AdminUpdate{By: "admin1", Patch: UpdatePatch{
		FoodAmount: &food,
		AmountPaid: &paid,
		VendorName: strPtr("Kabob House"),
	}}, now)
	require.NoError(t, err)

	r := out.Record
	assert.Equal(t, 2100.0, r.TotalAmount)
	assert.Equal(t, 1600.0, r.Balance)
	assert.Equal(t, "Kabob House", *r.VendorName)
	assert.Equal(t, models.StatusPendingApproval, r.BookingStatus)
	assert.Equal(t, 1400.0, out.Old["food_amount"])
	assert.Equal(t, 2000.0, out.New["food_amount"])
	assert.Equal(t, "", out.Old["vendor_name"])
}

func TestAdminUpdate_EmptyStringClears(t *testing.T) {
	out, err := Apply(submitted(t), AdminUpdate{By: "admin1", Patch: UpdatePatch{SponsorPhone: strPtr("")}}, now)
	require.NoError(t, err)
	assert.Nil(t, out.Record.SponsorPhone)
	assert.Equal(t, "555-0100", out.Old["sponsor_phone"])
}

func TestAdminUpdate_NoFieldsIsNoop(t *testing.T) {
	rec := submitted(t)
	out, err := Apply(rec, AdminUpdate{By: "admin1"}, now)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, rec, out.Record)
}

func TestAdminUpdate_RejectsNegativeAmounts(t *testing.T) {
	neg := -1.0
	_, err := Apply(submitted(t), AdminUpdate{Patch: UpdatePatch{CleaningAmount: &neg}}, now)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUpdatePayment_Completed(t *testing.T) {
	paid := 1500.0
	out, err := Apply(submitted(t), UpdatePayment{
		By:         "admin1",
		Status:     models.PaymentCompleted,
		AmountPaid: &paid,
	}, now)
	require.NoError(t, err)

	r := out.Record
	assert.Equal(t, models.PaymentCompleted, r.PaymentStatus)
	assert.Equal(t, 0.0, r.Balance)
	require.NotNil(t, r.PaymentDate)
	assert.Equal(t, now, *r.PaymentDate)
	assert.Equal(t, 1500.0, out.Old["balance"])
	assert.Equal(t, models.ActionPaymentUpdated, out.Action)
}

func TestUpdatePayment_PartialKeepsDateUnset(t *testing.T) {
	paid := 700.0
	method := models.MethodCheck
	out, err := Apply(submitted(t), UpdatePayment{
		Status:      models.PaymentPartial,
		AmountPaid:  &paid,
		Method:      &method,
		CheckNumber: "1042",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, 800.0, out.Record.Balance)
	assert.Nil(t, out.Record.PaymentDate)
	assert.Equal(t, "1042", *out.Record.CheckNumber)
}

func TestUpdatePayment_InvalidStatus(t *testing.T) {
	_, err := Apply(submitted(t), UpdatePayment{Status: "paid"}, now)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCancel(t *testing.T) {
	approved, err := Apply(submitted(t), Approve{By: "admin1"}, now)
	require.NoError(t, err)

	out, err := Apply(approved.Record, Cancel{By: "admin1"}, now)
	require.NoError(t, err)

	r := out.Record
	assert.Equal(t, models.StatusAvailable, r.BookingStatus)
	assert.Nil(t, r.ApprovalStatus)
	assert.Nil(t, r.ApprovedBy)
	assert.Nil(t, r.ApprovedAt)
	assert.Nil(t, r.SponsorName)
	assert.Equal(t, "booked", out.Old["booking_status"])
	assert.Equal(t, models.ActionBookingCancelled, out.Action)
	// pricing is kept
	assert.Equal(t, 1500.0, r.TotalAmount)
}

func TestSetBlocked(t *testing.T) {
	out, err := Apply(availableRecord(), SetBlocked{By: "admin1", Blocked: true}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, out.Record.BookingStatus)
	assert.Equal(t, models.ActionDateBlocked, out.Action)

	out, err = Apply(out.Record, SetBlocked{By: "admin1", Blocked: false}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, out.Record.BookingStatus)
	assert.Equal(t, models.ActionDateUnblocked, out.Action)
}

func TestSetBlocked_Conflicts(t *testing.T) {
	pending := submitted(t)
	approved, err := Apply(pending, Approve{By: "admin1"}, now)
	require.NoError(t, err)
	booked := approved.Record

	holiday := availableRecord()
	holiday.BookingStatus = models.StatusHoliday
	org := availableRecord()
	org.BookingStatus = models.StatusOrgSponsored

	tests := []struct {
		name    string
		rec     models.DateRecord
		blocked bool
	}{
		{"block booked", booked, true},
		{"block pending", pending, true},
		{"block holiday", holiday, true},
		{"block org sponsored", org, true},
		{"unblock booked", booked, false},
		{"unblock pending", pending, false},
		{"unblock holiday", holiday, false},
		{"unblock org sponsored", org, false},
		{"unblock available", availableRecord(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tt.rec, SetBlocked{By: "admin1", Blocked: tt.blocked}, now)
			assert.True(t, errors.Is(err, ErrConflict))
		})
	}
}

func TestApprove_RequiresPendingStatus(t *testing.T) {
	rec := submitted(t)
	rec.BookingStatus = models.StatusBlocked
	_, err := Apply(rec, Approve{By: "admin1"}, now)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestSubmit_ResetsPaymentState(t *testing.T) {
	paidAt := now.Add(-time.Hour)
	rec := availableRecord()
	rec.PaymentStatus = models.PaymentCompleted
	rec.PaymentDate = &paidAt
	rec.CheckNumber = optional("1042")
	rec.ExternalReference = optional("ZL-9")
	rec.AdminComment = optional("previous sponsor withdrew")

	out, err := Apply(rec, Submit{Quote: weekdayQuote(), DefaultGuests: 100, Sponsor: SponsorInfo{Name: "Sara"}}, now)
	require.NoError(t, err)
	r := out.Record
	assert.Equal(t, models.PaymentPending, r.PaymentStatus)
	assert.Nil(t, r.PaymentDate)
	assert.Nil(t, r.CheckNumber)
	assert.Nil(t, r.ExternalReference)
	assert.Nil(t, r.AdminComment)
	assert.Equal(t, 0.0, r.AmountPaid)
	assert.Equal(t, 1500.0, r.Balance)
}

func TestCancel_Conflicts(t *testing.T) {
	for _, status := range []models.BookingStatus{models.StatusBlocked, models.StatusHoliday, models.StatusOrgSponsored} {
		t.Run(string(status), func(t *testing.T) {
			rec := availableRecord()
			rec.BookingStatus = status
			rec.SponsorName = optional("HMCC - Heathrow Muslim Community Center")
			_, err := Apply(rec, Cancel{By: "admin1"}, now)
			assert.True(t, errors.Is(err, ErrConflict))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	rec := submitted(t)
	before := rec
	_, err := Apply(rec, Reject{By: "admin1"}, now)
	require.NoError(t, err)
	assert.Equal(t, before, rec)
}
