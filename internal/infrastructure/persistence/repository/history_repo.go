package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new history record
func (r *HistoryRepository) Create(ctx context.Context, history *entity.TripHistory) error {
	query := `
		INSERT INTO trip_history (
			trip_id, actor_user_id, previous_status, new_status, action, note, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		history.TripID,
		history.ActorUserID,
		history.PreviousStatus,
		history.NewStatus,
		history.Action,
		history.Note,
		history.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Int64("trip_id", history.TripID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// GetByTripID retrieves all history records for a trip, oldest first
func (r *HistoryRepository) GetByTripID(ctx context.Context, tripID int64) ([]*entity.TripHistory, error) {
	query := `
		SELECT id, trip_id, actor_user_id, previous_status, new_status, action, note, created_at
		FROM trip_history
		WHERE trip_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, tripID)
	if err != nil {
		r.logger.Error("Failed to get history by trip ID", zap.Int64("trip_id", tripID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	records := make([]*entity.TripHistory, 0)
	for rows.Next() {
		var record entity.TripHistory
		err := rows.Scan(
			&record.ID,
			&record.TripID,
			&record.ActorUserID,
			&record.PreviousStatus,
			&record.NewStatus,
			&record.Action,
			&record.Note,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
