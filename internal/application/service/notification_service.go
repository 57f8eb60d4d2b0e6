package service

import (
	"context"
	"fmt"

	"github.com/garyjia/perdin-approval/internal/application/dispatcher"
	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/event"
)

// NotificationService forwards trip decisions to an external channel
type NotificationService interface {
	// Register subscribes the service to decision events
	Register(d dispatcher.Dispatcher)

	// HandleDecision loads the decided trip and notifies the channel
	HandleDecision(ctx context.Context, evt *event.Event) error
}

type notificationServiceImpl struct {
	tripRepo port.TripRepository
	notifier port.DecisionNotifier
	logger   Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(tripRepo port.TripRepository, notifier port.DecisionNotifier, logger Logger) NotificationService {
	return &notificationServiceImpl{
		tripRepo: tripRepo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeTripApproved, "decision-notifier", s.HandleDecision)
	d.Subscribe(event.TypeTripRejected, "decision-notifier", s.HandleDecision)
}

func (s *notificationServiceImpl) HandleDecision(ctx context.Context, evt *event.Event) error {
	view, err := s.tripRepo.GetView(ctx, evt.TripID)
	if err != nil {
		return fmt.Errorf("get trip: %w", err)
	}

	if err := s.notifier.NotifyDecision(ctx, view); err != nil {
		s.logger.Error("Failed to send decision notification", "error", err, "trip_id", evt.TripID)
		return fmt.Errorf("notify decision: %w", err)
	}

	s.logger.Info("Decision notification sent",
		"trip_id", evt.TripID,
		"status", evt.GetPayloadString(event.KeyStatus),
		"decided_by", evt.GetPayloadInt(event.KeyActorUserID),
	)
	return nil
}
