package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

// BindingKeys are the routing keys the notification queue subscribes to.
var BindingKeys = []string{"booking.*", "date.*"}

var (
	errMalformed   = errors.New("malformed lifecycle event")
	errNoRecipient = errors.New("event carries no sponsor email")
)

// Notification is what a sponsor or the admin team is told about a transition.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers a notification. The default implementation only logs.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type LogNotifier struct {
	Log *zap.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	l.Log.Info("notification",
		zap.String("to", n.To),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body),
	)
	return nil
}

// NotificationConsumer turns lifecycle events into sponsor notifications. It
// reads contact details from the snapshot carried in the event, never from
// the live record, which may have been cleared by the time the event arrives.
type NotificationConsumer struct {
	notifier Notifier
	log      *zap.Logger
}

func NewNotificationConsumer(notifier Notifier, log *zap.Logger) *NotificationConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationConsumer{notifier: notifier, log: log}
}

// Start drains msgs until the channel closes and then closes done.
func (nc *NotificationConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			nc.handleMessage(ctx, msg)
		}
		nc.log.Info("notification consumer stopped: channel closed")
	}()
	return done
}

func (nc *NotificationConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	err := nc.Handle(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, errMalformed):
		nc.log.Warn("dropping malformed event", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		_ = msg.Nack(false, false)
	default:
		nc.log.Error("notification failed, requeueing", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		_ = msg.Nack(false, true)
	}
}

// Handle decodes one event body and sends the matching notification. Events
// that need no notification are accepted silently.
func (nc *NotificationConsumer) Handle(ctx context.Context, body []byte) error {
	var ev models.LifecycleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}

	n, err := Compose(ev)
	if errors.Is(err, errNoRecipient) {
		nc.log.Debug("no recipient for event", zap.String("action", string(ev.Action)), zap.String("date", ev.Date))
		return nil
	}
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}
	return nc.notifier.Notify(ctx, *n)
}

// Compose builds the notification for ev, or nil when the action is not
// sponsor-facing.
func Compose(ev models.LifecycleEvent) (*Notification, error) {
	switch ev.Action {
	case models.ActionBookingCreated:
		to := field(ev.NewValues, "sponsor_email")
		if to == "" {
			return nil, errNoRecipient
		}
		return &Notification{
			To:      to,
			Subject: "Iftar sponsorship request received for " + ev.Date,
			Body: fmt.Sprintf("Dear %s, we received your request to sponsor iftar on %s. It is pending approval by HMCC admin.",
				field(ev.NewValues, "sponsor_name"), ev.Date),
		}, nil

	case models.ActionBookingApproved:
		to := field(ev.OldValues, "sponsor_email")
		if to == "" {
			return nil, errNoRecipient
		}
		return &Notification{
			To:      to,
			Subject: "Iftar sponsorship approved for " + ev.Date,
			Body: fmt.Sprintf("Dear %s, your iftar sponsorship on %s has been approved.",
				field(ev.OldValues, "sponsor_name"), ev.Date),
		}, nil

	case models.ActionBookingRejected:
		to := field(ev.NewValues, "sponsor_email")
		if to == "" {
			return nil, errNoRecipient
		}
		return &Notification{
			To:      to,
			Subject: "Iftar sponsorship request for " + ev.Date,
			Body: fmt.Sprintf("Dear %s, we are unable to accept your sponsorship request for %s. Reason: %s",
				field(ev.NewValues, "sponsor_name"), ev.Date, field(ev.NewValues, "rejection_reason")),
		}, nil

	case models.ActionBookingCancelled:
		to := field(ev.OldValues, "sponsor_email")
		if to == "" {
			return nil, errNoRecipient
		}
		return &Notification{
			To:      to,
			Subject: "Iftar sponsorship cancelled for " + ev.Date,
			Body: fmt.Sprintf("Dear %s, your iftar sponsorship on %s has been cancelled.",
				field(ev.OldValues, "sponsor_name"), ev.Date),
		}, nil
	}
	return nil, nil
}

func field(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
