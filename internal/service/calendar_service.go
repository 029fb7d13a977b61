package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
	"github.com/amjkhan-git/HMCC-Calendar/internal/repository"
)

// InitResult reports what a seeding run changed.
type InitResult struct {
	Inserted int `json:"inserted"`
	Repaired int `json:"repaired"`
	Skipped  int `json:"skipped"`
}

type CalendarService interface {
	InitializeCalendar(ctx context.Context, defs []calendar.DateDefinition) (*InitResult, error)
	ListCalendar(ctx context.Context) ([]models.DateRecord, error)
	GetByID(ctx context.Context, id string) (*models.DateRecord, error)
	GetByDate(ctx context.Context, date string) (*models.DateRecord, error)
	// ListBookings returns booked and pending dates, or every match of query
	// when it is non-empty.
	ListBookings(ctx context.Context, query string) ([]models.DateRecord, error)
	PendingApprovals(ctx context.Context) ([]models.DateRecord, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
	ExportRows(ctx context.Context) ([]models.ExportRow, error)
	Rules() *calendar.Rules
}

type calendarService struct {
	records repository.DateRecordRepository
	rules   *calendar.Rules
	log     *zap.Logger
}

func NewCalendarService(records repository.DateRecordRepository, rules *calendar.Rules, log *zap.Logger) CalendarService {
	if log == nil {
		log = zap.NewNop()
	}
	return &calendarService{records: records, rules: rules, log: log}
}

func (s *calendarService) Rules() *calendar.Rules { return s.rules }

// InitializeCalendar inserts every missing date and repairs drifted labels on
// existing ones. Booking, sponsor and payment data of existing rows is never
// touched, so running it again is safe.
func (s *calendarService) InitializeCalendar(ctx context.Context, defs []calendar.DateDefinition) (*InitResult, error) {
	res := &InitResult{}
	err := s.records.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range defs {
			rec := s.seedRecord(def)
			inserted, err := s.records.InsertIfAbsent(ctx, tx, rec)
			if err != nil {
				return fmt.Errorf("seed %s: %w", def.Date, err)
			}
			if inserted {
				res.Inserted++
				continue
			}
			repaired, err := s.records.RepairLabels(ctx, tx, def.Date, def.ReligiousDate, def.ReligiousDay, def.Weekday)
			if err != nil {
				return fmt.Errorf("repair %s: %w", def.Date, err)
			}
			if repaired {
				res.Repaired++
			} else {
				res.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("calendar initialized",
		zap.Int("inserted", res.Inserted),
		zap.Int("repaired", res.Repaired),
		zap.Int("unchanged", res.Skipped),
	)
	return res, nil
}

func (s *calendarService) seedRecord(def calendar.DateDefinition) *models.DateRecord {
	quote := s.rules.DerivePricing(def.Date, def.Weekday)
	tier := quote.Tier
	rec := &models.DateRecord{
		ID:             uuid.NewString(),
		Date:           def.Date,
		ReligiousDate:  def.ReligiousDate,
		ReligiousDay:   def.ReligiousDay,
		Weekday:        def.Weekday,
		BookingStatus:  def.InitialStatus,
		ExpectedGuests: s.rules.DeriveExpectedGuests(def.Weekday),
		FoodAmount:     quote.FoodAmount,
		CleaningAmount: quote.CleaningAmount,
		TotalAmount:    quote.Total,
		PricingTier:    &tier,
		PaymentStatus:  models.PaymentPending,
		Version:        1,
	}
	if def.InitialStatus == models.StatusOrgSponsored {
		label := s.rules.Config().OrgSponsorLabel
		approved := models.ApprovalApproved
		rec.SponsorName = &label
		rec.ApprovalStatus = &approved
	}
	return rec
}

func (s *calendarService) ListCalendar(ctx context.Context) ([]models.DateRecord, error) {
	return s.records.FindAll(ctx)
}

func (s *calendarService) GetByID(ctx context.Context, id string) (*models.DateRecord, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "booking "+id)
	}
	return rec, nil
}

func (s *calendarService) GetByDate(ctx context.Context, date string) (*models.DateRecord, error) {
	rec, err := s.records.FindByDate(ctx, date)
	if err != nil {
		return nil, notFound(err, "date "+date+" in calendar")
	}
	return rec, nil
}

func (s *calendarService) ListBookings(ctx context.Context, query string) ([]models.DateRecord, error) {
	if query != "" {
		return s.records.Search(ctx, query)
	}
	return s.records.FindByBookingStatus(ctx, models.StatusBooked, models.StatusPendingApproval)
}

func (s *calendarService) PendingApprovals(ctx context.Context) ([]models.DateRecord, error) {
	return s.records.FindPendingApproval(ctx)
}

func (s *calendarService) Statistics(ctx context.Context) (*models.Statistics, error) {
	return s.records.Statistics(ctx)
}

func (s *calendarService) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	return s.records.ExportRows(ctx)
}
