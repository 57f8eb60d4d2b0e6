package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
	"github.com/garyjia/perdin-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// TripRepository implements port.TripRepository
type TripRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB, logger *zap.Logger) port.TripRepository {
	return &TripRepository{
		db:     db,
		logger: logger,
	}
}

const tripColumns = `
	t.id, t.purpose, t.departure_date, t.return_date, t.origin_city_id, t.destination_city_id,
	t.duration_days, t.reimbursement_amount, t.status, t.requester_id, t.decided_by, t.decided_at,
	t.created_at, t.updated_at`

const tripViewQuery = `
	SELECT ` + tripColumns + `, o.name, d.name, u.username
	FROM trip_requests t
	JOIN cities o ON o.id = t.origin_city_id
	JOIN cities d ON d.id = t.destination_city_id
	JOIN users u ON u.id = t.requester_id`

// Create inserts a new trip request
func (r *TripRepository) Create(ctx context.Context, trip *entity.TripRequest) error {
	query := `
		INSERT INTO trip_requests (
			purpose, departure_date, return_date, origin_city_id, destination_city_id,
			duration_days, reimbursement_amount, status, requester_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		trip.Purpose,
		trip.DepartureDate,
		trip.ReturnDate,
		trip.OriginCityID,
		trip.DestinationCityID,
		trip.DurationDays,
		trip.ReimbursementAmount,
		string(trip.Status),
		trip.RequesterID,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Validation("trip references an unknown city or user")
		}
		r.logger.Error("Failed to create trip", zap.Int64("requester_id", trip.RequesterID), zap.Error(err))
		return fmt.Errorf("failed to create trip: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	trip.ID = id
	return nil
}

// GetByID retrieves a trip request by ID
func (r *TripRepository) GetByID(ctx context.Context, id int64) (*entity.TripRequest, error) {
	query := `SELECT ` + tripColumns + ` FROM trip_requests t WHERE t.id = ?`

	var trip entity.TripRequest
	err := scanTrip(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id), &trip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("trip %d not found", id)
	}
	if err != nil {
		r.logger.Error("Failed to get trip by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

// GetView retrieves a trip with city and requester names
func (r *TripRepository) GetView(ctx context.Context, id int64) (*entity.TripView, error) {
	query := tripViewQuery + ` WHERE t.id = ?`

	view, err := scanTripView(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("trip %d not found", id)
	}
	if err != nil {
		r.logger.Error("Failed to get trip view", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return view, nil
}

// ListViews lists trips newest first, optionally filtered by status
func (r *TripRepository) ListViews(ctx context.Context, status workflow.State) ([]*entity.TripView, error) {
	query := tripViewQuery
	var args []interface{}
	if status != "" {
		query += ` WHERE t.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list trips", zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	views := make([]*entity.TripView, 0)
	for rows.Next() {
		view, err := scanTripView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// UpdateAmount overwrites the reimbursement amount
func (r *TripRepository) UpdateAmount(ctx context.Context, id int64, amount int64) error {
	query := `UPDATE trip_requests SET reimbursement_amount = ?, updated_at = ? WHERE id = ?`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, amount, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update trip amount", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update trip amount: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("trip %d not found", id)
	}
	return nil
}

// CompareAndSetStatus updates the status only while it still equals from
func (r *TripRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, decidedBy int64, decidedAt time.Time) (bool, error) {
	query := `
		UPDATE trip_requests
		SET status = ?, decided_by = ?, decided_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		string(to), decidedBy, decidedAt, decidedAt, id, string(from))
	if err != nil {
		r.logger.Error("Failed to update trip status", zap.Int64("id", id), zap.String("to", string(to)), zap.Error(err))
		return false, fmt.Errorf("failed to update trip status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

func tripScanTargets(trip *entity.TripRequest, decidedBy *sql.NullInt64, decidedAt *sql.NullTime) []interface{} {
	return []interface{}{
		&trip.ID,
		&trip.Purpose,
		&trip.DepartureDate,
		&trip.ReturnDate,
		&trip.OriginCityID,
		&trip.DestinationCityID,
		&trip.DurationDays,
		&trip.ReimbursementAmount,
		&trip.Status,
		&trip.RequesterID,
		decidedBy,
		decidedAt,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	}
}

func applyDecision(trip *entity.TripRequest, decidedBy sql.NullInt64, decidedAt sql.NullTime) {
	if decidedBy.Valid {
		trip.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		trip.DecidedAt = &decidedAt.Time
	}
}

func scanTrip(row rowScanner, trip *entity.TripRequest) error {
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime
	if err := row.Scan(tripScanTargets(trip, &decidedBy, &decidedAt)...); err != nil {
		return err
	}
	applyDecision(trip, decidedBy, decidedAt)
	return nil
}

func scanTripView(row rowScanner) (*entity.TripView, error) {
	var view entity.TripView
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	targets := tripScanTargets(&view.TripRequest, &decidedBy, &decidedAt)
	targets = append(targets, &view.OriginCityName, &view.DestinationCityName, &view.RequesterName)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	applyDecision(&view.TripRequest, decidedBy, decidedAt)
	return &view, nil
}

// Verify interface compliance
var _ port.TripRepository = (*TripRepository)(nil)
