package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/perdin-approval/internal/application/dispatcher"
	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/auth"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/domain/event"
	"github.com/garyjia/perdin-approval/internal/domain/geo"
	"github.com/garyjia/perdin-approval/internal/domain/policy"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
)

// CreateTripInput carries the fields of a new trip request.
// Dates use entity.DateLayout.
type CreateTripInput struct {
	Purpose           string `json:"maksud_tujuan"`
	DepartureDate     string `json:"tanggal_berangkat"`
	ReturnDate        string `json:"tanggal_pulang"`
	OriginCityID      int64  `json:"kota_asal_id"`
	DestinationCityID int64  `json:"kota_tujuan_id"`
}

// CostBreakdown is the result of a cost computation
type CostBreakdown struct {
	TripID       int64       `json:"id"`
	Amount       int64       `json:"total_uang"`
	DistanceKm   float64     `json:"jarak_km"`
	DurationDays int         `json:"durasi"`
	SameProvince bool        `json:"sama_provinsi"`
	SameIsland   bool        `json:"sama_pulau"`
	AnyForeign   bool        `json:"luar_negeri"`
	Tier         policy.Tier `json:"tier"`
}

// TripService manages the trip request lifecycle
type TripService interface {
	Create(ctx context.Context, principal *auth.Principal, input CreateTripInput) (*entity.TripRequest, error)
	ComputeAndStoreCost(ctx context.Context, principal *auth.Principal, id int64) (*CostBreakdown, error)
	Approve(ctx context.Context, principal *auth.Principal, id int64) (*entity.TripRequest, error)
	Reject(ctx context.Context, principal *auth.Principal, id int64) (*entity.TripRequest, error)
	Get(ctx context.Context, principal *auth.Principal, id int64) (*entity.TripView, error)
	List(ctx context.Context, principal *auth.Principal) ([]*entity.TripView, error)
	ListByStatus(ctx context.Context, principal *auth.Principal, status workflow.State) ([]*entity.TripView, error)
	History(ctx context.Context, principal *auth.Principal, id int64) ([]*entity.TripHistory, error)
}

// TripServiceConfig holds optional lifecycle behaviour
type TripServiceConfig struct {
	// SnapshotCostOnApprove recomputes and stores the amount inside Approve
	SnapshotCostOnApprove bool
}

type tripServiceImpl struct {
	tripRepo    port.TripRepository
	cityRepo    port.CityRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	gate        *auth.Gate
	policy      *policy.CostPolicy
	dispatcher  dispatcher.Dispatcher
	lifecycle   workflow.StateMachineBuilder
	cfg         TripServiceConfig
	logger      Logger
	now         func() time.Time
}

// NewTripService creates a new TripService
func NewTripService(
	tripRepo port.TripRepository,
	cityRepo port.CityRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	gate *auth.Gate,
	costPolicy *policy.CostPolicy,
	eventDispatcher dispatcher.Dispatcher,
	cfg TripServiceConfig,
	logger Logger,
) TripService {
	return &tripServiceImpl{
		tripRepo:    tripRepo,
		cityRepo:    cityRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		gate:        gate,
		policy:      costPolicy,
		dispatcher:  eventDispatcher,
		lifecycle:   workflow.TripLifecycle(),
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Create validates and stores a new pending trip for the calling employee
func (s *tripServiceImpl) Create(ctx context.Context, principal *auth.Principal, input CreateTripInput) (*entity.TripRequest, error) {
	if err := s.gate.Require(principal, auth.RolePegawai); err != nil {
		return nil, err
	}

	trip, err := s.buildTrip(ctx, principal, input)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.tripRepo.Create(txCtx, trip); err != nil {
			return fmt.Errorf("create trip: %w", err)
		}
		return s.historyRepo.Create(txCtx, &entity.TripHistory{
			TripID:         trip.ID,
			ActorUserID:    principal.UserID,
			PreviousStatus: "",
			NewStatus:      string(workflow.StatePending),
			Action:         entity.ActionCreate,
			CreatedAt:      trip.CreatedAt,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create trip", "error", err, "user_id", principal.UserID)
		return nil, err
	}

	s.logger.Info("Trip created", "trip_id", trip.ID, "user_id", principal.UserID, "duration_days", trip.DurationDays)
	s.publish(ctx, event.NewEvent(event.TypeTripCreated, trip.ID, map[string]interface{}{
		event.KeyActorUserID: principal.UserID,
		event.KeyPurpose:     trip.Purpose,
		event.KeyOrigin:      trip.OriginCityID,
		event.KeyDestination: trip.DestinationCityID,
	}))
	return trip, nil
}

func (s *tripServiceImpl) buildTrip(ctx context.Context, principal *auth.Principal, input CreateTripInput) (*entity.TripRequest, error) {
	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		return nil, apperr.Validation("maksud_tujuan is required")
	}
	if input.DepartureDate == "" || input.ReturnDate == "" {
		return nil, apperr.Validation("tanggal_berangkat and tanggal_pulang are required")
	}
	if input.OriginCityID <= 0 || input.DestinationCityID <= 0 {
		return nil, apperr.Validation("kota_asal_id and kota_tujuan_id are required")
	}

	departure, err := time.Parse(entity.DateLayout, input.DepartureDate)
	if err != nil {
		return nil, apperr.Validation("tanggal_berangkat %q is not a valid date", input.DepartureDate)
	}
	ret, err := time.Parse(entity.DateLayout, input.ReturnDate)
	if err != nil {
		return nil, apperr.Validation("tanggal_pulang %q is not a valid date", input.ReturnDate)
	}

	duration := entity.DurationDays(departure, ret)
	if duration < 1 {
		return nil, apperr.Validation("tanggal_pulang must not be before tanggal_berangkat")
	}

	for _, id := range []int64{input.OriginCityID, input.DestinationCityID} {
		if _, err := s.cityRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("city %d does not exist", id)
			}
			return nil, err
		}
	}

	now := s.now()
	return &entity.TripRequest{
		Purpose:           purpose,
		DepartureDate:     departure,
		ReturnDate:        ret,
		OriginCityID:      input.OriginCityID,
		DestinationCityID: input.DestinationCityID,
		DurationDays:      duration,
		Status:            workflow.StatePending,
		RequesterID:       principal.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ComputeAndStoreCost recomputes the reimbursement amount and overwrites the stored value
func (s *tripServiceImpl) ComputeAndStoreCost(ctx context.Context, principal *auth.Principal, id int64) (*CostBreakdown, error) {
	if err := s.gate.Require(principal, auth.RolePegawai); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.computeCost(ctx, trip)
	if err != nil {
		return nil, err
	}

	if err := s.tripRepo.UpdateAmount(ctx, id, breakdown.Amount); err != nil {
		s.logger.Error("Failed to store trip cost", "error", err, "trip_id", id)
		return nil, err
	}

	s.logger.Info("Trip cost computed", "trip_id", id, "amount", breakdown.Amount, "tier", breakdown.Tier)
	s.publish(ctx, event.NewEvent(event.TypeTripCostComputed, id, map[string]interface{}{
		event.KeyActorUserID: principal.UserID,
		event.KeyAmount:      breakdown.Amount,
		event.KeyDistanceKm:  breakdown.DistanceKm,
	}))
	return breakdown, nil
}

func (s *tripServiceImpl) computeCost(ctx context.Context, trip *entity.TripRequest) (*CostBreakdown, error) {
	origin, err := s.cityRepo.GetByID(ctx, trip.OriginCityID)
	if err != nil {
		return nil, err
	}
	dest, err := s.cityRepo.GetByID(ctx, trip.DestinationCityID)
	if err != nil {
		return nil, err
	}

	in := policy.Input{
		DistanceKm:   geo.Between(origin.Point(), dest.Point()),
		SameProvince: origin.Province == dest.Province,
		SameIsland:   origin.Island == dest.Island,
		AnyForeign:   origin.IsForeign || dest.IsForeign,
		DurationDays: trip.DurationDays,
	}
	amount, tier := s.policy.Evaluate(in)

	return &CostBreakdown{
		TripID:       trip.ID,
		Amount:       amount,
		DistanceKm:   in.DistanceKm,
		DurationDays: in.DurationDays,
		SameProvince: in.SameProvince,
		SameIsland:   in.SameIsland,
		AnyForeign:   in.AnyForeign,
		Tier:         tier,
	}, nil
}

// Approve moves a pending trip to approved
func (s *tripServiceImpl) Approve(ctx context.Context, principal *auth.Principal, id int64) (*entity.TripRequest, error) {
	return s.decide(ctx, principal, id, workflow.TriggerApprove)
}

// Reject moves a pending trip to rejected
func (s *tripServiceImpl) Reject(ctx context.Context, principal *auth.Principal, id int64) (*entity.TripRequest, error) {
	return s.decide(ctx, principal, id, workflow.TriggerReject)
}

func (s *tripServiceImpl) decide(ctx context.Context, principal *auth.Principal, id int64, trigger workflow.Trigger) (*entity.TripRequest, error) {
	if err := s.gate.Require(principal, auth.RoleSDM); err != nil {
		return nil, err
	}

	var trip *entity.TripRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		trip, err = s.tripRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		previous := trip.Status
		if previous.IsTerminal() {
			return apperr.Conflict("trip %d is already %s", id, previous)
		}
		machine := s.lifecycle.Build(previous)
		if !machine.CanFire(trigger) {
			return apperr.Conflict("cannot %s a trip that is %s", strings.ToLower(string(trigger)), previous)
		}
		if err := machine.Fire(txCtx, trigger); err != nil {
			return apperr.Internal("state machine failure", err)
		}

		if trigger == workflow.TriggerApprove && s.cfg.SnapshotCostOnApprove {
			breakdown, err := s.computeCost(txCtx, trip)
			if err != nil {
				return err
			}
			if err := s.tripRepo.UpdateAmount(txCtx, id, breakdown.Amount); err != nil {
				return err
			}
			trip.ReimbursementAmount = breakdown.Amount
		}

		decidedAt := s.now()
		ok, err := s.tripRepo.CompareAndSetStatus(txCtx, id, previous, machine.State(), principal.UserID, decidedAt)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("trip %d was decided concurrently", id)
		}

		trip.Status = machine.State()
		trip.DecidedBy = &principal.UserID
		trip.DecidedAt = &decidedAt
		trip.UpdatedAt = decidedAt

		return s.historyRepo.Create(txCtx, &entity.TripHistory{
			TripID:         id,
			ActorUserID:    principal.UserID,
			PreviousStatus: string(previous),
			NewStatus:      string(trip.Status),
			Action:         string(trigger),
			CreatedAt:      decidedAt,
		})
	})
	if err != nil {
		s.logger.Error("Failed to decide trip", "error", err, "trip_id", id, "trigger", trigger)
		return nil, err
	}

	s.logger.Info("Trip decided", "trip_id", id, "status", trip.Status, "decided_by", principal.UserID)

	eventType := event.TypeTripApproved
	if trigger == workflow.TriggerReject {
		eventType = event.TypeTripRejected
	}
	s.publish(ctx, event.NewEvent(eventType, id, map[string]interface{}{
		event.KeyActorUserID: principal.UserID,
		event.KeyStatus:      string(trip.Status),
		event.KeyAmount:      trip.ReimbursementAmount,
	}))
	return trip, nil
}

// Get returns a single trip to any authenticated caller
func (s *tripServiceImpl) Get(ctx context.Context, principal *auth.Principal, id int64) (*entity.TripView, error) {
	if err := s.gate.Authenticated(principal); err != nil {
		return nil, err
	}
	return s.tripRepo.GetView(ctx, id)
}

// List returns every trip; restricted to employees
func (s *tripServiceImpl) List(ctx context.Context, principal *auth.Principal) ([]*entity.TripView, error) {
	if err := s.gate.Require(principal, auth.RolePegawai); err != nil {
		return nil, err
	}
	return s.tripRepo.ListViews(ctx, "")
}

// ListByStatus is the staff review queue
func (s *tripServiceImpl) ListByStatus(ctx context.Context, principal *auth.Principal, status workflow.State) ([]*entity.TripView, error) {
	if err := s.gate.Require(principal, auth.RoleSDM); err != nil {
		return nil, err
	}
	if status != "" && !status.IsValid() {
		return nil, apperr.Validation("unknown status %q", status)
	}
	return s.tripRepo.ListViews(ctx, status)
}

// History returns the audit trail of a trip
func (s *tripServiceImpl) History(ctx context.Context, principal *auth.Principal, id int64) ([]*entity.TripHistory, error) {
	if err := s.gate.Authenticated(principal); err != nil {
		return nil, err
	}
	if _, err := s.tripRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.GetByTripID(ctx, id)
}

func (s *tripServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.dispatcher == nil {
		return
	}
	// Async handlers keep running after the request returns
	s.dispatcher.DispatchAsync(context.WithoutCancel(ctx), evt)
}
