package port

import (
	"context"
	"time"

	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
)

// CityRepository defines persistence operations for City reference data
type CityRepository interface {
	// Create inserts a city; a duplicate name is an apperr.Conflict
	Create(ctx context.Context, city *entity.City) error

	// GetByID returns apperr.NotFound when the city does not exist
	GetByID(ctx context.Context, id int64) (*entity.City, error)

	List(ctx context.Context) ([]*entity.City, error)
}

// TripRepository defines persistence operations for TripRequest
type TripRepository interface {
	Create(ctx context.Context, trip *entity.TripRequest) error

	// GetByID returns apperr.NotFound when the trip does not exist
	GetByID(ctx context.Context, id int64) (*entity.TripRequest, error)

	// GetView returns the trip joined with city and requester names
	GetView(ctx context.Context, id int64) (*entity.TripView, error)

	// ListViews returns trips newest first; an empty status means all
	ListViews(ctx context.Context, status workflow.State) ([]*entity.TripView, error)

	// UpdateAmount overwrites the stored reimbursement amount
	UpdateAmount(ctx context.Context, id int64, amount int64) error

	// CompareAndSetStatus moves a trip from one status to another.
	// It reports false when the trip was no longer in the expected status.
	CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, decidedBy int64, decidedAt time.Time) (bool, error)
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	// Create inserts a user; a duplicate username is an apperr.Conflict
	Create(ctx context.Context, user *entity.User) error

	// GetByUsername returns apperr.NotFound when no user matches
	GetByUsername(ctx context.Context, username string) (*entity.User, error)

	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

// HistoryRepository defines persistence operations for TripHistory
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.TripHistory) error
	GetByTripID(ctx context.Context, tripID int64) ([]*entity.TripHistory, error)
}

// TransactionManager manages database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
