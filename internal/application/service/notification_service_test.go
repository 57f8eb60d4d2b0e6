package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/perdin-approval/internal/application/dispatcher"
	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/domain/event"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
)

type mockNotifier struct {
	notifyFunc func(ctx context.Context, trip *entity.TripView) error
	sent       []*entity.TripView
}

func (m *mockNotifier) NotifyDecision(ctx context.Context, trip *entity.TripView) error {
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, trip)
	}
	m.sent = append(m.sent, trip)
	return nil
}

type kvLogger struct {
	values map[string]interface{}
}

func (l *kvLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.values == nil {
		l.values = map[string]interface{}{}
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			l.values[k] = keysAndValues[i+1]
		}
	}
}

func (l *kvLogger) Error(msg string, keysAndValues ...interface{}) {}

func TestNotificationService(t *testing.T) {
	approved := pendingTrip(1, jakarta.ID, bandung.ID, 2)
	approved.Status = workflow.StateApproved

	t.Run("subscribes to decisions only", func(t *testing.T) {
		d := dispatcher.NewDispatcher()
		NewNotificationService(newMockTripRepo(), &mockNotifier{}, &mockLogger{}).Register(d)

		assert.Equal(t, []string{"decision-notifier"}, d.Handlers(event.TypeTripApproved))
		assert.Equal(t, []string{"decision-notifier"}, d.Handlers(event.TypeTripRejected))
		assert.Empty(t, d.Handlers(event.TypeTripCreated))
	})

	t.Run("sends the decided trip", func(t *testing.T) {
		notifier := &mockNotifier{}
		logger := &kvLogger{}
		d := dispatcher.NewDispatcher()
		NewNotificationService(newMockTripRepo(approved), notifier, logger).Register(d)

		d.DispatchAsync(context.Background(), event.NewEvent(event.TypeTripApproved, 1, map[string]interface{}{
			event.KeyActorUserID: int64(9),
			event.KeyStatus:      string(workflow.StateApproved),
		}))
		require.NoError(t, d.Close())
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, workflow.StateApproved, notifier.sent[0].Status)
		assert.Equal(t, "approved", logger.values["status"])
		assert.Equal(t, int64(9), logger.values["decided_by"])
	})

	t.Run("missing trip", func(t *testing.T) {
		svc := NewNotificationService(newMockTripRepo(), &mockNotifier{}, &mockLogger{})
		err := svc.HandleDecision(context.Background(), event.NewEvent(event.TypeTripRejected, 5, nil))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("notifier failure", func(t *testing.T) {
		notifier := &mockNotifier{notifyFunc: func(ctx context.Context, trip *entity.TripView) error {
			return errors.New("lark 500")
		}}
		svc := NewNotificationService(newMockTripRepo(approved), notifier, &mockLogger{})
		err := svc.HandleDecision(context.Background(), event.NewEvent(event.TypeTripApproved, 1, nil))
		assert.ErrorContains(t, err, "lark 500")
	})
}
