package handler

import (
	"context"

	"github.com/amjkhan-git/HMCC-Calendar/config"
	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/internal/lifecycle"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

// --- Mock CalendarService ---

type mockCalendarService struct {
	listFn     func(ctx context.Context) ([]models.DateRecord, error)
	getByIDFn  func(ctx context.Context, id string) (*models.DateRecord, error)
	getByDtFn  func(ctx context.Context, date string) (*models.DateRecord, error)
	bookingsFn func(ctx context.Context, query string) ([]models.DateRecord, error)
	pendingFn  func(ctx context.Context) ([]models.DateRecord, error)
	statsFn    func(ctx context.Context) (*models.Statistics, error)
	exportFn   func(ctx context.Context) ([]models.ExportRow, error)
}

func (m *mockCalendarService) InitializeCalendar(ctx context.Context, defs []calendar.DateDefinition) (*service.InitResult, error) {
	return &service.InitResult{}, nil
}
func (m *mockCalendarService) ListCalendar(ctx context.Context) ([]models.DateRecord, error) {
	return m.listFn(ctx)
}
func (m *mockCalendarService) GetByID(ctx context.Context, id string) (*models.DateRecord, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockCalendarService) GetByDate(ctx context.Context, date string) (*models.DateRecord, error) {
	return m.getByDtFn(ctx, date)
}
func (m *mockCalendarService) ListBookings(ctx context.Context, query string) ([]models.DateRecord, error) {
	return m.bookingsFn(ctx, query)
}
func (m *mockCalendarService) PendingApprovals(ctx context.Context) ([]models.DateRecord, error) {
	return m.pendingFn(ctx)
}
func (m *mockCalendarService) Statistics(ctx context.Context) (*models.Statistics, error) {
	return m.statsFn(ctx)
}
func (m *mockCalendarService) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	return m.exportFn(ctx)
}
func (m *mockCalendarService) Rules() *calendar.Rules { return testRules() }

// --- Mock BookingService ---

type mockBookingService struct {
	submitFn  func(ctx context.Context, date string, in service.SubmitInput, meta service.RequestMeta) (*models.DateRecord, error)
	approveFn func(ctx context.Context, id string, meta service.RequestMeta) (*models.DateRecord, error)
	rejectFn  func(ctx context.Context, id, reason string, meta service.RequestMeta) (*models.DateRecord, error)
	updateFn  func(ctx context.Context, id string, patch lifecycle.UpdatePatch, meta service.RequestMeta) (*models.DateRecord, error)
	paymentFn func(ctx context.Context, id string, in service.PaymentInput, meta service.RequestMeta) (*models.DateRecord, error)
	cancelFn  func(ctx context.Context, id string, meta service.RequestMeta) (*models.DateRecord, error)
	blockFn   func(ctx context.Context, id string, blocked bool, meta service.RequestMeta) (*models.DateRecord, error)
	auditFn   func(ctx context.Context, id string) ([]models.AuditEntry, error)
}

func (m *mockBookingService) Submit(ctx context.Context, date string, in service.SubmitInput, meta service.RequestMeta) (*models.DateRecord, error) {
	return m.submitFn(ctx, date, in, meta)
}
func (m *mockBookingService) Approve(ctx context.Context, id string, meta service.RequestMeta) (*models.DateRecord, error) {
	return m.approveFn(ctx, id, meta)
}
func (m *mockBookingService) Reject(ctx context.Context, id, reason string, meta service.RequestMeta) (*models.DateRecord, error) {
	return m.rejectFn(ctx, id, reason, meta)
}
func (m *mockBookingService) Update(ctx context.Context, id string, patch lifecycle.UpdatePatch, meta service.RequestMeta) (*models.DateRecord, error) {
	return m.updateFn(ctx, id, patch, meta)
}
func (m *mockBookingService) UpdatePayment(ctx context.Context, id string, in service.PaymentInput, meta service.RequestMeta) (*models.DateRecord, error) {
	return m.paymentFn(ctx, id, in, meta)
}
func (m *mockBookingService) Cancel(ctx context.Context, id string, meta service.RequestMeta) (*models.DateRecord, error) {
	return m.cancelFn(ctx, id, meta)
}
func (m *mockBookingService) SetBlocked(ctx context.Context, id string, blocked bool, meta service.RequestMeta) (*models.DateRecord, error) {
	return m.blockFn(ctx, id, blocked, meta)
}
func (m *mockBookingService) AuditLog(ctx context.Context, id string) ([]models.AuditEntry, error) {
	return m.auditFn(ctx, id)
}

// --- Mock AuthService ---

type mockAuthService struct {
	loginFn      func(ctx context.Context, username, password string) (*service.LoginResult, error)
	invalidateFn func(ctx context.Context, token string) error
}

func (m *mockAuthService) Authenticate(username, password string) bool { return false }
func (m *mockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	return m.loginFn(ctx, username, password)
}
func (m *mockAuthService) CreateSession(ctx context.Context, username string) (*service.LoginResult, error) {
	return nil, nil
}
func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*service.Identity, error) {
	return nil, service.ErrUnauthorized
}
func (m *mockAuthService) InvalidateSession(ctx context.Context, token string) error {
	return m.invalidateFn(ctx, token)
}
func (m *mockAuthService) CleanupExpired(ctx context.Context) (int64, error) { return 0, nil }

func testRules() *calendar.Rules {
	rate := config.TierRate{Food: 1400, Cleaning: 100, Description: "Iftar Sponsorship"}
	return calendar.NewRules(config.CalendarConfig{
		Pricing:       config.PricingConfig{Weekday: rate, Weekend: rate, LastNights: rate},
		WeekdayGuests: 100,
		WeekendGuests: 100,
		LastNights:    []string{"2026-03-10", "2026-03-12", "2026-03-14", "2026-03-16", "2026-03-18"},
		ZelleAddress:  "pay@example.org",
		Year:          2026,
		ReligiousYear: 1447,
	})
}
