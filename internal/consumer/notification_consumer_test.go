package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func eventBody(t *testing.T, ev models.LifecycleEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestHandle_RejectionUsesSnapshot(t *testing.T) {
	n := &recordingNotifier{}
	c := NewNotificationConsumer(n, nil)

	body := eventBody(t, models.LifecycleEvent{
		Action: models.ActionBookingRejected,
		Date:   "2026-03-16",
		NewValues: map[string]any{
			"sponsor_name":     "Ali Khan",
			"sponsor_email":    "ali@example.com",
			"rejection_reason": "Date reserved for community iftar",
		},
		OccurredAt: time.Now(),
	})

	require.NoError(t, c.Handle(context.Background(), body))
	require.Len(t, n.sent, 1)
	assert.Equal(t, "ali@example.com", n.sent[0].To)
	assert.Contains(t, n.sent[0].Body, "Date reserved for community iftar")
}

func TestHandle_ApprovalReadsOldValues(t *testing.T) {
	n := &recordingNotifier{}
	body := eventBody(t, models.LifecycleEvent{
		Action:    models.ActionBookingApproved,
		Date:      "2026-03-16",
		OldValues: map[string]any{"sponsor_name": "Ali Khan", "sponsor_email": "ali@example.com"},
		NewValues: map[string]any{"approved_by": "hmcc_admin"},
	})

	require.NoError(t, NewNotificationConsumer(n, nil).Handle(context.Background(), body))
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0].Subject, "approved")
}

func TestHandle_IgnoresNonSponsorEvents(t *testing.T) {
	n := &recordingNotifier{}
	body := eventBody(t, models.LifecycleEvent{
		Action:    models.ActionDateBlocked,
		Date:      "2026-02-22",
		NewValues: map[string]any{"booking_status": "blocked"},
	})

	require.NoError(t, NewNotificationConsumer(n, nil).Handle(context.Background(), body))
	assert.Empty(t, n.sent)
}

func TestHandle_MissingRecipientIsAccepted(t *testing.T) {
	n := &recordingNotifier{}
	body := eventBody(t, models.LifecycleEvent{Action: models.ActionBookingCancelled, Date: "2026-03-01"})

	require.NoError(t, NewNotificationConsumer(n, nil).Handle(context.Background(), body))
	assert.Empty(t, n.sent)
}

func TestHandle_Malformed(t *testing.T) {
	err := NewNotificationConsumer(&recordingNotifier{}, nil).Handle(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, errMalformed)
}

func TestHandle_NotifierFailurePropagates(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	body := eventBody(t, models.LifecycleEvent{
		Action:    models.ActionBookingCreated,
		Date:      "2026-03-16",
		NewValues: map[string]any{"sponsor_name": "Ali Khan", "sponsor_email": "ali@example.com"},
	})

	err := NewNotificationConsumer(n, nil).Handle(context.Background(), body)
	assert.EqualError(t, err, "smtp down")
}
