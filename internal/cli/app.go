package cli

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amjkhan-git/HMCC-Calendar/config"
	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/internal/repository"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/database"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/jwt"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/logger"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/rabbitmq"
)

// app is the wired object graph shared by the commands.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	db        *gorm.DB
	publisher *rabbitmq.Publisher

	calendar service.CalendarService
	bookings service.BookingService
	auth     service.AuthService
}

// newApp loads config, connects to the database and builds the services.
// With withPublisher set and a broker URL configured, lifecycle events are
// published to RabbitMQ.
func newApp(opts *RootOptions, withPublisher bool) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(&cfg.DB)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, db: db}

	var publisher service.EventPublisher
	if withPublisher && cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect event publisher: %w", err)
		}
		a.publisher = p
		publisher = p
	}

	rules := calendar.NewRules(cfg.Calendar)
	records := repository.NewDateRecordRepository(db)

	a.calendar = service.NewCalendarService(records, rules, log.Named("calendar"))
	a.bookings = service.NewBookingService(records, repository.NewAuditRepository(db), rules, publisher, log.Named("booking"))
	a.auth = service.NewAuthService(cfg.Auth, repository.NewSessionRepository(db),
		jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL), log.Named("auth"))

	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.log.Sync()
}
