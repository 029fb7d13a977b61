package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amjkhan-git/HMCC-Calendar/config"
	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/internal/lifecycle"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
	"github.com/amjkhan-git/HMCC-Calendar/internal/repository"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/database"
)

// --- Fixtures ---

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []*models.LifecycleEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	if ev, ok := payload.(*models.LifecycleEvent); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func testRules() *calendar.Rules {
	rate := config.TierRate{Food: 1400, Cleaning: 100, Description: "Iftar Sponsorship"}
	return calendar.NewRules(config.CalendarConfig{
		Pricing:         config.PricingConfig{Weekday: rate, Weekend: rate, LastNights: rate},
		WeekdayGuests:   100,
		WeekendGuests:   100,
		LastNights:      []string{"2026-03-10", "2026-03-12", "2026-03-14", "2026-03-16", "2026-03-18"},
		OrgSponsorLabel: "HMCC - Heathrow Muslim Community Center",
	})
}

type fixture struct {
	db       *gorm.DB
	records  repository.DateRecordRepository
	audits   repository.AuditRepository
	calendar CalendarService
	bookings BookingService
	pub      *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	rules := testRules()
	records := repository.NewDateRecordRepository(db)
	audits := repository.NewAuditRepository(db)
	pub := &recordingPublisher{}

	f := &fixture{
		db:       db,
		records:  records,
		audits:   audits,
		calendar: NewCalendarService(records, rules, nil),
		bookings: NewBookingService(records, audits, rules, pub, nil),
		pub:      pub,
	}
	_, err = f.calendar.InitializeCalendar(context.Background(), calendar.Ramadan1447)
	require.NoError(t, err)
	return f
}

func (f *fixture) recordID(t *testing.T, date string) string {
	t.Helper()
	rec, err := f.calendar.GetByDate(context.Background(), date)
	require.NoError(t, err)
	return rec.ID
}

var admin = RequestMeta{Actor: "admin1", IPAddress: "10.0.0.1", UserAgent: "go-test"}

func aliKhan() SubmitInput {
	return SubmitInput{Sponsor: lifecycle.SponsorInfo{Name: "Ali Khan", Email: "ali@example.com", Phone: "555-0100"}}
}

// --- Tests ---

func TestSponsorshipScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.bookings.Submit(ctx, "2026-02-23", aliKhan(), RequestMeta{IPAddress: "1.2.3.4"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, rec.BookingStatus)
	assert.Equal(t, models.ApprovalPending, *rec.ApprovalStatus)
	assert.Equal(t, 1500.0, rec.TotalAmount)
	assert.Equal(t, 1500.0, rec.Balance)

	rec, err = f.bookings.Approve(ctx, rec.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, rec.BookingStatus)
	assert.Equal(t, models.ApprovalApproved, *rec.ApprovalStatus)
	assert.Equal(t, "admin1", *rec.ApprovedBy)

	paid := 1500.0
	rec, err = f.bookings.UpdatePayment(ctx, rec.ID, PaymentInput{Status: models.PaymentCompleted, AmountPaid: &paid}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, rec.PaymentStatus)
	assert.Equal(t, 0.0, rec.Balance)
	assert.NotNil(t, rec.PaymentDate)

	stored, err := f.calendar.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.Balance)
	assert.Equal(t, "Ali Khan", *stored.SponsorName)

	log, err := f.bookings.AuditLog(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, log, 3)
	assert.Equal(t, models.ActionPaymentUpdated, log[0].Action)
	assert.Equal(t, models.ActionBookingCreated, log[2].Action)
	assert.Nil(t, log[2].PerformedBy)
	assert.Equal(t, "1.2.3.4", *log[2].IPAddress)
	assert.Equal(t, "admin1", *log[0].PerformedBy)

	assert.Equal(t, []string{"booking.created", "booking.approved", "booking.payment_updated"}, f.pub.keys)
}

func TestOrgSponsoredDateIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.recordID(t, "2026-02-21")

	_, err := f.bookings.SetBlocked(ctx, id, true, admin)
	assert.True(t, errors.Is(err, lifecycle.ErrConflict))

	_, err = f.bookings.Submit(ctx, "2026-02-21", aliKhan(), RequestMeta{})
	assert.True(t, errors.Is(err, lifecycle.ErrConflict))

	log, err := f.bookings.AuditLog(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, log)
	assert.Empty(t, f.pub.keys)
}

func TestSubmit_UnknownDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.Submit(context.Background(), "2026-06-01", aliKhan(), RequestMeta{})
	assert.True(t, errors.Is(err, lifecycle.ErrNotFound))
}

func TestSubmit_BlockedAndBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.Submit(ctx, "2026-02-18", aliKhan(), RequestMeta{})
	assert.True(t, errors.Is(err, lifecycle.ErrConflict))

	_, err = f.bookings.Submit(ctx, "2026-02-24", aliKhan(), RequestMeta{})
	require.NoError(t, err)
	_, err = f.bookings.Submit(ctx, "2026-02-24", aliKhan(), RequestMeta{})
	assert.True(t, errors.Is(err, lifecycle.ErrConflict))
}

func TestConcurrentSubmit_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.bookings.Submit(ctx, "2026-02-25", aliKhan(), RequestMeta{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, lifecycle.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)

	log, err := f.bookings.AuditLog(ctx, f.recordID(t, "2026-02-25"))
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestRejectThenResubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.bookings.Submit(ctx, "2026-02-26", aliKhan(), RequestMeta{})
	require.NoError(t, err)
	_, err = f.bookings.Approve(ctx, rec.ID, admin)
	require.NoError(t, err)

	rec, err = f.bookings.Reject(ctx, rec.ID, "", admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, rec.BookingStatus)
	assert.Equal(t, lifecycle.DefaultRejectionReason, *rec.RejectionReason)
	assert.Nil(t, rec.SponsorName)

	_, err = f.bookings.Reject(ctx, rec.ID, "", admin)
	assert.True(t, errors.Is(err, lifecycle.ErrConflict))

	rec, err = f.bookings.Submit(ctx, "2026-02-26", SubmitInput{Sponsor: lifecycle.SponsorInfo{Name: "Sara"}}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, rec.BookingStatus)
	assert.Nil(t, rec.RejectionReason)
	assert.Equal(t, 1500.0, rec.Balance)

	// the rejection event carries the sponsor contact for notification
	var rejected *models.LifecycleEvent
	for _, ev := range f.pub.events {
		if ev.Action == models.ActionBookingRejected {
			rejected = ev
		}
	}
	require.NotNil(t, rejected)
	assert.Equal(t, "ali@example.com", rejected.NewValues["sponsor_email"])

	log, err := f.bookings.AuditLog(ctx, rec.ID)
	require.NoError(t, err)
	var newValues map[string]any
	for _, e := range log {
		if e.Action == models.ActionBookingRejected {
			require.NoError(t, json.Unmarshal(e.NewValues, &newValues))
		}
	}
	assert.Equal(t, "Ali Khan", newValues["sponsor_name"])
}

func TestUpdate_RecomputesDerivedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec, err := f.bookings.Submit(ctx, "2026-02-27", aliKhan(), RequestMeta{})
	require.NoError(t, err)

	food, paid := 1600.0, 1000.0
	rec, err = f.bookings.Update(ctx, rec.ID, lifecycle.UpdatePatch{FoodAmount: &food, AmountPaid: &paid}, admin)
	require.NoError(t, err)
	assert.Equal(t, 1700.0, rec.TotalAmount)
	assert.Equal(t, 700.0, rec.Balance)

	before := len(f.pub.keys)
	same, err := f.bookings.Update(ctx, rec.ID, lifecycle.UpdatePatch{}, admin)
	require.NoError(t, err)
	assert.Equal(t, rec.TotalAmount, same.TotalAmount)
	assert.Len(t, f.pub.keys, before)
}

func TestCancel_ClearsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec, err := f.bookings.Submit(ctx, "2026-03-02", aliKhan(), RequestMeta{})
	require.NoError(t, err)
	_, err = f.bookings.Approve(ctx, rec.ID, admin)
	require.NoError(t, err)

	rec, err = f.bookings.Cancel(ctx, rec.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, rec.BookingStatus)
	assert.Nil(t, rec.ApprovalStatus)
	assert.Nil(t, rec.ApprovedAt)

	stored, err := f.calendar.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ApprovedBy)
	assert.Nil(t, stored.SponsorEmail)
}

func TestBlockUnblock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.recordID(t, "2026-03-03")

	rec, err := f.bookings.SetBlocked(ctx, id, true, admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, rec.BookingStatus)

	rec, err = f.bookings.SetBlocked(ctx, id, false, admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, rec.BookingStatus)

	_, err = f.bookings.SetBlocked(ctx, "missing", true, admin)
	assert.True(t, errors.Is(err, lifecycle.ErrNotFound))
}

func TestBlock_RefusedWhileSponsored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.bookings.Submit(ctx, "2026-03-04", aliKhan(), RequestMeta{})
	require.NoError(t, err)
	_, err = f.bookings.SetBlocked(ctx, pending.ID, true, admin)
	assert.True(t, errors.Is(err, lifecycle.ErrConflict))

	stored, err := f.calendar.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, stored.BookingStatus)

	booked, err := f.bookings.Approve(ctx, pending.ID, admin)
	require.NoError(t, err)
	paid := 1500.0
	_, err = f.bookings.UpdatePayment(ctx, booked.ID, PaymentInput{Status: models.PaymentCompleted, AmountPaid: &paid}, admin)
	require.NoError(t, err)

	_, err = f.bookings.SetBlocked(ctx, booked.ID, false, admin)
	assert.True(t, errors.Is(err, lifecycle.ErrConflict))
	_, err = f.bookings.Submit(ctx, "2026-03-04", SubmitInput{Sponsor: lifecycle.SponsorInfo{Name: "Sara"}}, RequestMeta{})
	assert.True(t, errors.Is(err, lifecycle.ErrConflict))

	stored, err = f.calendar.GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, stored.BookingStatus)
	assert.Equal(t, "Ali Khan", *stored.SponsorName)
	assert.Equal(t, models.PaymentCompleted, stored.PaymentStatus)
	assert.Equal(t, 1500.0, stored.AmountPaid)
}

func TestCancel_RefusedOnClosedDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, date := range []string{"2026-02-18", "2026-02-21"} {
		id := f.recordID(t, date)
		before, err := f.calendar.GetByID(ctx, id)
		require.NoError(t, err)

		_, err = f.bookings.Cancel(ctx, id, admin)
		assert.True(t, errors.Is(err, lifecycle.ErrConflict), date)

		after, err := f.calendar.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, before.BookingStatus, after.BookingStatus, date)
		assert.Equal(t, before.SponsorName, after.SponsorName, date)
	}
	assert.Empty(t, f.pub.keys)
}

type failingAuditRepo struct {
	repository.AuditRepository
}

func (failingAuditRepo) Create(context.Context, *gorm.DB, *models.AuditEntry) error {
	return errors.New("disk full")
}

func TestAuditFailureRollsBackStateChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewBookingService(f.records, failingAuditRepo{f.audits}, testRules(), f.pub, nil)

	_, err := svc.Submit(ctx, "2026-03-04", aliKhan(), RequestMeta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	rec, err := f.calendar.GetByDate(ctx, "2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, rec.BookingStatus)
	assert.Nil(t, rec.SponsorName)
	assert.Equal(t, 1, rec.Version)
	assert.Empty(t, f.pub.keys)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	rec, err := f.bookings.Submit(context.Background(), "2026-03-05", aliKhan(), RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, rec.BookingStatus)
}

func TestAuditLog_UnknownRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.AuditLog(context.Background(), "missing")
	assert.True(t, errors.Is(err, lifecycle.ErrNotFound))
}
