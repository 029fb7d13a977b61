package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/internal/lifecycle"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
	"github.com/amjkhan-git/HMCC-Calendar/internal/repository"
)

// EventPublisher fans lifecycle events out to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// RequestMeta identifies who triggered an operation and from where. Actor is
// empty for public requests.
type RequestMeta struct {
	Actor     string
	IPAddress string
	UserAgent string
}

type SubmitInput struct {
	Sponsor        lifecycle.SponsorInfo
	Vendor         lifecycle.VendorInfo
	ExpectedGuests *int
	SpecialNotes   string
	PaymentMethod  *models.PaymentMethod
}

type PaymentInput struct {
	Status            models.PaymentStatus
	AmountPaid        *float64
	Method            *models.PaymentMethod
	CheckNumber       string
	ExternalReference string
}

type BookingService interface {
	Submit(ctx context.Context, date string, in SubmitInput, meta RequestMeta) (*models.DateRecord, error)
	Approve(ctx context.Context, id string, meta RequestMeta) (*models.DateRecord, error)
	Reject(ctx context.Context, id, reason string, meta RequestMeta) (*models.DateRecord, error)
	Update(ctx context.Context, id string, patch lifecycle.UpdatePatch, meta RequestMeta) (*models.DateRecord, error)
	UpdatePayment(ctx context.Context, id string, in PaymentInput, meta RequestMeta) (*models.DateRecord, error)
	Cancel(ctx context.Context, id string, meta RequestMeta) (*models.DateRecord, error)
	SetBlocked(ctx context.Context, id string, blocked bool, meta RequestMeta) (*models.DateRecord, error)
	AuditLog(ctx context.Context, id string) ([]models.AuditEntry, error)
}

type bookingService struct {
	records   repository.DateRecordRepository
	audits    repository.AuditRepository
	rules     *calendar.Rules
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewBookingService wires the lifecycle engine. publisher may be nil, in which
// case no events are sent.
func NewBookingService(
	records repository.DateRecordRepository,
	audits repository.AuditRepository,
	rules *calendar.Rules,
	publisher EventPublisher,
	log *zap.Logger,
) BookingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &bookingService{
		records:   records,
		audits:    audits,
		rules:     rules,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type locator func(ctx context.Context, tx *gorm.DB) (*models.DateRecord, error)

func (s *bookingService) byID(id string) locator {
	return func(ctx context.Context, tx *gorm.DB) (*models.DateRecord, error) {
		return s.records.FindByIDForUpdate(ctx, tx, id)
	}
}

func (s *bookingService) Submit(ctx context.Context, date string, in SubmitInput, meta RequestMeta) (*models.DateRecord, error) {
	find := func(ctx context.Context, tx *gorm.DB) (*models.DateRecord, error) {
		return s.records.FindByDateForUpdate(ctx, tx, date)
	}
	build := func(cur models.DateRecord) lifecycle.Command {
		return lifecycle.Submit{
			Quote:          s.rules.DerivePricing(cur.Date, cur.Weekday),
			DefaultGuests:  s.rules.DeriveExpectedGuests(cur.Weekday),
			Sponsor:        in.Sponsor,
			Vendor:         in.Vendor,
			ExpectedGuests: in.ExpectedGuests,
			SpecialNotes:   in.SpecialNotes,
			PaymentMethod:  in.PaymentMethod,
		}
	}
	// Submissions are anonymous even when an admin session is present.
	meta.Actor = ""
	return s.transition(ctx, "date "+date, find, build, meta)
}

func (s *bookingService) Approve(ctx context.Context, id string, meta RequestMeta) (*models.DateRecord, error) {
	return s.transition(ctx, "booking "+id, s.byID(id), func(models.DateRecord) lifecycle.Command {
		return lifecycle.Approve{By: meta.Actor}
	}, meta)
}

func (s *bookingService) Reject(ctx context.Context, id, reason string, meta RequestMeta) (*models.DateRecord, error) {
	return s.transition(ctx, "booking "+id, s.byID(id), func(models.DateRecord) lifecycle.Command {
		return lifecycle.Reject{By: meta.Actor, Reason: reason}
	}, meta)
}

func (s *bookingService) Update(ctx context.Context, id string, patch lifecycle.UpdatePatch, meta RequestMeta) (*models.DateRecord, error) {
	return s.transition(ctx, "booking "+id, s.byID(id), func(models.DateRecord) lifecycle.Command {
		return lifecycle.AdminUpdate{By: meta.Actor, Patch: patch}
	}, meta)
}

func (s *bookingService) UpdatePayment(ctx context.Context, id string, in PaymentInput, meta RequestMeta) (*models.DateRecord, error) {
	return s.transition(ctx, "booking "+id, s.byID(id), func(models.DateRecord) lifecycle.Command {
		return lifecycle.UpdatePayment{
			By:                meta.Actor,
			Status:            in.Status,
			AmountPaid:        in.AmountPaid,
			Method:            in.Method,
			CheckNumber:       in.CheckNumber,
			ExternalReference: in.ExternalReference,
		}
	}, meta)
}

func (s *bookingService) Cancel(ctx context.Context, id string, meta RequestMeta) (*models.DateRecord, error) {
	return s.transition(ctx, "booking "+id, s.byID(id), func(models.DateRecord) lifecycle.Command {
		return lifecycle.Cancel{By: meta.Actor}
	}, meta)
}

func (s *bookingService) SetBlocked(ctx context.Context, id string, blocked bool, meta RequestMeta) (*models.DateRecord, error) {
	return s.transition(ctx, "date "+id, s.byID(id), func(models.DateRecord) lifecycle.Command {
		return lifecycle.SetBlocked{By: meta.Actor, Blocked: blocked}
	}, meta)
}

func (s *bookingService) AuditLog(ctx context.Context, id string) ([]models.AuditEntry, error) {
	if _, err := s.records.FindByID(ctx, id); err != nil {
		return nil, notFound(err, "booking "+id)
	}
	return s.audits.ListByDateRecord(ctx, id)
}

// transition runs one read-validate-write-audit unit. The row is locked for
// the whole transaction and the audit entry commits or rolls back with the
// state change. Events go out only after commit.
func (s *bookingService) transition(
	ctx context.Context,
	subject string,
	find locator,
	build func(cur models.DateRecord) lifecycle.Command,
	meta RequestMeta,
) (*models.DateRecord, error) {
	var (
		result *models.DateRecord
		event  *models.LifecycleEvent
	)

	err := s.records.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := find(ctx, tx)
		if err != nil {
			return notFound(err, subject)
		}

		now := s.now()
		out, err := lifecycle.Apply(*cur, build(*cur), now)
		if err != nil {
			return err
		}
		if !out.Changed {
			result = cur
			return nil
		}

		rec := out.Record
		if err := s.records.Save(ctx, tx, &rec); err != nil {
			if errors.Is(err, repository.ErrStaleRecord) {
				return fmt.Errorf("%w: %s was modified concurrently, retry", lifecycle.ErrConflict, subject)
			}
			return fmt.Errorf("save %s: %w", subject, err)
		}

		entry, err := auditEntry(rec.ID, out, meta, now)
		if err != nil {
			return err
		}
		if err := s.audits.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("write audit entry: %w", err)
		}

		result = &rec
		event = &models.LifecycleEvent{
			Action:       out.Action,
			DateRecordID: rec.ID,
			Date:         rec.Date,
			Actor:        out.Actor,
			OldValues:    out.Old,
			NewValues:    out.New,
			OccurredAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event != nil {
		s.log.Info("booking transition",
			zap.String("action", string(event.Action)),
			zap.String("date", event.Date),
			zap.String("actor", meta.Actor),
		)
		s.publish(ctx, event)
	}
	return result, nil
}

func (s *bookingService) publish(ctx context.Context, event *models.LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.Action.RoutingKey(), event); err != nil {
		s.log.Error("publish lifecycle event",
			zap.String("action", string(event.Action)),
			zap.String("date", event.Date),
			zap.Error(err),
		)
	}
}

func auditEntry(recordID string, out lifecycle.Outcome, meta RequestMeta, now time.Time) (*models.AuditEntry, error) {
	oldJSON, err := snapshotJSON(out.Old)
	if err != nil {
		return nil, err
	}
	newJSON, err := snapshotJSON(out.New)
	if err != nil {
		return nil, err
	}
	return &models.AuditEntry{
		DateRecordID: recordID,
		Action:       out.Action,
		OldValues:    oldJSON,
		NewValues:    newJSON,
		PerformedBy:  out.Actor,
		IPAddress:    nonEmpty(meta.IPAddress),
		UserAgent:    nonEmpty(meta.UserAgent),
		CreatedAt:    now,
	}, nil
}

func snapshotJSON(s lifecycle.Snapshot) (datatypes.JSON, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode audit snapshot: %w", err)
	}
	return datatypes.JSON(b), nil
}

func notFound(err error, subject string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", lifecycle.ErrNotFound, subject)
	}
	return err
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
