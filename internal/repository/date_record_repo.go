package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

// ErrStaleRecord is returned by Save when the row changed after it was read.
var ErrStaleRecord = errors.New("record was modified concurrently")

type DateRecordRepository interface {
	FindAll(ctx context.Context) ([]models.DateRecord, error)
	FindByID(ctx context.Context, id string) (*models.DateRecord, error)
	FindByDate(ctx context.Context, date string) (*models.DateRecord, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.DateRecord, error)
	FindByDateForUpdate(ctx context.Context, tx *gorm.DB, date string) (*models.DateRecord, error)
	FindByBookingStatus(ctx context.Context, statuses ...models.BookingStatus) ([]models.DateRecord, error)
	FindPendingApproval(ctx context.Context) ([]models.DateRecord, error)
	Search(ctx context.Context, query string) ([]models.DateRecord, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
	ExportRows(ctx context.Context) ([]models.ExportRow, error)
	Save(ctx context.Context, tx *gorm.DB, rec *models.DateRecord) error
	InsertIfAbsent(ctx context.Context, tx *gorm.DB, rec *models.DateRecord) (bool, error)
	RepairLabels(ctx context.Context, tx *gorm.DB, date, religiousDate string, religiousDay int, weekday string) (bool, error)
	GetDB() *gorm.DB
}

type dateRecordRepository struct {
	db *gorm.DB
}

func NewDateRecordRepository(db *gorm.DB) DateRecordRepository {
	return &dateRecordRepository{db: db}
}

func (r *dateRecordRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *dateRecordRepository) FindAll(ctx context.Context) ([]models.DateRecord, error) {
	var recs []models.DateRecord
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *dateRecordRepository) FindByID(ctx context.Context, id string) (*models.DateRecord, error) {
	var rec models.DateRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *dateRecordRepository) FindByDate(ctx context.Context, date string) (*models.DateRecord, error) {
	var rec models.DateRecord
	if err := r.db.WithContext(ctx).Where("date = ?", date).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByIDForUpdate locks the row until tx ends. SQLite ignores the lock
// clause; there the single connection serializes writers.
func (r *dateRecordRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.DateRecord, error) {
	var rec models.DateRecord
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *dateRecordRepository) FindByDateForUpdate(ctx context.Context, tx *gorm.DB, date string) (*models.DateRecord, error) {
	var rec models.DateRecord
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("date = ?", date).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *dateRecordRepository) FindByBookingStatus(ctx context.Context, statuses ...models.BookingStatus) ([]models.DateRecord, error) {
	var recs []models.DateRecord
	err := r.db.WithContext(ctx).
		Where("booking_status IN ?", statuses).
		Order("date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *dateRecordRepository) FindPendingApproval(ctx context.Context) ([]models.DateRecord, error) {
	var recs []models.DateRecord
	err := r.db.WithContext(ctx).
		Where("approval_status = ?", models.ApprovalPending).
		Order("date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Search matches query case-insensitively against sponsor contact fields and
// the vendor name.
func (r *dateRecordRepository) Search(ctx context.Context, query string) ([]models.DateRecord, error) {
	term := "%" + escapeLike(strings.ToLower(query)) + "%"
	var recs []models.DateRecord
	err := r.db.WithContext(ctx).
		Where(`LOWER(sponsor_name) LIKE ? ESCAPE '\' OR LOWER(sponsor_email) LIKE ? ESCAPE '\'
			OR LOWER(sponsor_phone) LIKE ? ESCAPE '\' OR LOWER(vendor_name) LIKE ? ESCAPE '\'`,
			term, term, term, term).
		Order("date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type statusCount struct {
	Status string
	Count  int64
}

func (r *dateRecordRepository) Statistics(ctx context.Context) (*models.Statistics, error) {
	db := r.db.WithContext(ctx)
	stats := &models.Statistics{
		ByBookingStatus: make(map[models.BookingStatus]int64),
		ByPaymentStatus: make(map[models.PaymentStatus]int64),
	}

	var byBooking []statusCount
	err := db.Model(&models.DateRecord{}).
		Select("booking_status AS status, COUNT(*) AS count").
		Group("booking_status").
		Scan(&byBooking).Error
	if err != nil {
		return nil, err
	}
	for _, s := range byBooking {
		stats.ByBookingStatus[models.BookingStatus(s.Status)] = s.Count
		stats.TotalDates += s.Count
	}
	stats.AvailableDates = stats.ByBookingStatus[models.StatusAvailable]
	stats.BookedDates = stats.ByBookingStatus[models.StatusBooked]
	stats.PendingDates = stats.ByBookingStatus[models.StatusPendingApproval]
	stats.BlockedDates = stats.ByBookingStatus[models.StatusBlocked]
	stats.OrgSponsoredDates = stats.ByBookingStatus[models.StatusOrgSponsored]
	stats.HolidayDates = stats.ByBookingStatus[models.StatusHoliday]

	var byPayment []statusCount
	err = db.Model(&models.DateRecord{}).
		Select("payment_status AS status, COUNT(*) AS count").
		Group("payment_status").
		Scan(&byPayment).Error
	if err != nil {
		return nil, err
	}
	for _, s := range byPayment {
		stats.ByPaymentStatus[models.PaymentStatus(s.Status)] = s.Count
	}
	stats.PaymentsCompleted = stats.ByPaymentStatus[models.PaymentCompleted]
	stats.PaymentsPartial = stats.ByPaymentStatus[models.PaymentPartial]

	err = db.Model(&models.DateRecord{}).
		Where("payment_status = ? AND booking_status = ?", models.PaymentPending, models.StatusBooked).
		Count(&stats.PaymentsPending).Error
	if err != nil {
		return nil, err
	}

	var sums struct {
		Expected  float64
		Collected float64
	}
	err = db.Model(&models.DateRecord{}).
		Select("COALESCE(SUM(total_amount), 0) AS expected, COALESCE(SUM(amount_paid), 0) AS collected").
		Where("booking_status IN ?", []models.BookingStatus{models.StatusBooked, models.StatusPendingApproval}).
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	stats.TotalExpected = sums.Expected
	stats.TotalCollected = sums.Collected

	return stats, nil
}

func (r *dateRecordRepository) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	var rows []models.ExportRow
	err := r.db.WithContext(ctx).
		Model(&models.DateRecord{}).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Save writes every mutable column of rec if its version still matches the
// stored one, then bumps the version. id, date and created_at are never written.
func (r *dateRecordRepository) Save(ctx context.Context, tx *gorm.DB, rec *models.DateRecord) error {
	prev := rec.Version
	rec.Version = prev + 1

	res := tx.WithContext(ctx).
		Model(rec).
		Where("version = ?", prev).
		Select("*").
		Omit("id", "date", "created_at").
		Updates(rec)
	if res.Error != nil {
		rec.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		rec.Version = prev
		return ErrStaleRecord
	}
	return nil
}

// InsertIfAbsent creates rec unless a row with the same date exists. It
// reports whether a row was inserted.
func (r *dateRecordRepository) InsertIfAbsent(ctx context.Context, tx *gorm.DB, rec *models.DateRecord) (bool, error) {
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "date"}}, DoNothing: true}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RepairLabels rewrites the descriptive labels of an existing date when they
// drift from the definition. No other column is touched.
func (r *dateRecordRepository) RepairLabels(ctx context.Context, tx *gorm.DB, date, religiousDate string, religiousDay int, weekday string) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.DateRecord{}).
		Where("date = ? AND (religious_date <> ? OR religious_day <> ? OR weekday <> ?)",
			date, religiousDate, religiousDay, weekday).
		UpdateColumns(map[string]any{
			"religious_date": religiousDate,
			"religious_day":  religiousDay,
			"weekday":        weekday,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
