package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
	"github.com/garyjia/perdin-approval/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/perdin-approval/migrations"
	"github.com/garyjia/perdin-approval/pkg/database"
)

// Seeded by 002_seed_cities.sql
const (
	jakartaID   int64 = 1
	bandungID   int64 = 2
	singaporeID int64 = 5
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: database.MemoryPath}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run(context.Background(), migrations.FS))
	return db.DB
}

func createUser(t *testing.T, db *sql.DB, username, role string) *entity.User {
	t.Helper()
	user := &entity.User{Username: username, PasswordHash: "x", Role: role, CreatedAt: time.Now()}
	require.NoError(t, NewUserRepository(db, zap.NewNop()).Create(context.Background(), user))
	return user
}

func newTrip(requesterID int64) *entity.TripRequest {
	dep := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	return &entity.TripRequest{
		Purpose:           "Audit cabang",
		DepartureDate:     dep,
		ReturnDate:        dep.AddDate(0, 0, 2),
		OriginCityID:      jakartaID,
		DestinationCityID: bandungID,
		DurationDays:      3,
		Status:            workflow.StatePending,
		RequesterID:       requesterID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestCityRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCityRepository(db, zap.NewNop())

	t.Run("seeded cities", func(t *testing.T) {
		cities, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, cities, 11)

		jakarta, err := repo.GetByID(ctx, jakartaID)
		require.NoError(t, err)
		assert.Equal(t, "Jakarta", jakarta.Name)
		assert.Equal(t, "DKI Jakarta", jakarta.Province)
		assert.False(t, jakarta.IsForeign)

		singapore, err := repo.GetByID(ctx, singaporeID)
		require.NoError(t, err)
		assert.True(t, singapore.IsForeign)
		assert.Empty(t, singapore.Island)
	})

	t.Run("create and duplicate", func(t *testing.T) {
		city := &entity.City{Name: "Medan", Latitude: 3.5952, Longitude: 98.67222, Province: "Sumatera Utara", Island: "Sumatera", CreatedAt: time.Now()}
		require.NoError(t, repo.Create(ctx, city))
		assert.NotZero(t, city.ID)

		dup := *city
		dup.ID = 0
		err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("missing city", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	user := createUser(t, db, "budi", "pegawai")

	got, err := repo.GetByUsername(ctx, "budi")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "pegawai", got.Role)

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "budi", got.Username)

	err = repo.Create(ctx, &entity.User{Username: "budi", PasswordHash: "y", Role: "sdm", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTripRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTripRepository(db, zap.NewNop())
	budi := createUser(t, db, "budi", "pegawai")
	sari := createUser(t, db, "sari", "sdm")

	trip := newTrip(budi.ID)
	require.NoError(t, repo.Create(ctx, trip))
	require.NotZero(t, trip.ID)

	t.Run("get round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "Audit cabang", got.Purpose)
		assert.True(t, got.DepartureDate.Equal(trip.DepartureDate))
		assert.True(t, got.ReturnDate.Equal(trip.ReturnDate))
		assert.Equal(t, 3, got.DurationDays)
		assert.Equal(t, workflow.StatePending, got.Status)
		assert.Equal(t, int64(0), got.ReimbursementAmount)
		assert.Nil(t, got.DecidedBy)
		assert.Nil(t, got.DecidedAt)
	})

	t.Run("view joins names", func(t *testing.T) {
		view, err := repo.GetView(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jakarta", view.OriginCityName)
		assert.Equal(t, "Bandung", view.DestinationCityName)
		assert.Equal(t, "budi", view.RequesterName)
	})

	t.Run("update amount overwrites", func(t *testing.T) {
		require.NoError(t, repo.UpdateAmount(ctx, trip.ID, 750000))
		require.NoError(t, repo.UpdateAmount(ctx, trip.ID, 750000))

		got, err := repo.GetByID(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(750000), got.ReimbursementAmount)

		assert.ErrorIs(t, repo.UpdateAmount(ctx, 999, 1), apperr.ErrNotFound)
	})

	t.Run("compare and set has one winner", func(t *testing.T) {
		now := time.Now().UTC()
		ok, err := repo.CompareAndSetStatus(ctx, trip.ID, workflow.StatePending, workflow.StateApproved, sari.ID, now)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.CompareAndSetStatus(ctx, trip.ID, workflow.StatePending, workflow.StateRejected, sari.ID, now)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := repo.GetByID(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StateApproved, got.Status)
		require.NotNil(t, got.DecidedBy)
		assert.Equal(t, sari.ID, *got.DecidedBy)
		assert.NotNil(t, got.DecidedAt)
	})

	t.Run("list by status", func(t *testing.T) {
		second := newTrip(budi.ID)
		second.DestinationCityID = singaporeID
		require.NoError(t, repo.Create(ctx, second))

		all, err := repo.ListViews(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		pending, err := repo.ListViews(ctx, workflow.StatePending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "Singapore", pending[0].DestinationCityName)
	})

	t.Run("unknown city violates foreign key", func(t *testing.T) {
		bad := newTrip(budi.ID)
		bad.OriginCityID = 999
		err := repo.Create(ctx, bad)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("missing trip", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = repo.GetView(ctx, 999)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestHistoryRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	budi := createUser(t, db, "budi", "pegawai")
	trip := newTrip(budi.ID)
	require.NoError(t, NewTripRepository(db, zap.NewNop()).Create(ctx, trip))

	repo := NewHistoryRepository(db, zap.NewNop())
	tx := sqlite.NewTxManager(db, zap.NewNop())

	err := tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, &entity.TripHistory{TripID: trip.ID, ActorUserID: budi.ID, NewStatus: "pending", Action: entity.ActionCreate, CreatedAt: time.Now()}); err != nil {
			return err
		}
		return repo.Create(txCtx, &entity.TripHistory{TripID: trip.ID, ActorUserID: budi.ID, PreviousStatus: "pending", NewStatus: "approved", Action: entity.ActionApprove, CreatedAt: time.Now().Add(time.Second)})
	})
	require.NoError(t, err)

	records, err := repo.GetByTripID(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entity.ActionCreate, records[0].Action)
	assert.Equal(t, entity.ActionApprove, records[1].Action)

	t.Run("rolled back writes are discarded", func(t *testing.T) {
		err := tx.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := repo.Create(txCtx, &entity.TripHistory{TripID: trip.ID, ActorUserID: budi.ID, NewStatus: "rejected", Action: entity.ActionReject, CreatedAt: time.Now()}); err != nil {
				return err
			}
			return errors.New("abort")
		})
		require.Error(t, err)

		records, err := repo.GetByTripID(ctx, trip.ID)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestRepositories_DatabaseFailures(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New("disk I/O error")

	mock.ExpectQuery("SELECT (.+) FROM cities WHERE id = ?").WithArgs(jakartaID).WillReturnError(dbErr)
	_, err = NewCityRepository(db, zap.NewNop()).GetByID(ctx, jakartaID)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)

	mock.ExpectExec("UPDATE trip_requests").WillReturnError(dbErr)
	_, err = NewTripRepository(db, zap.NewNop()).CompareAndSetStatus(ctx, 1, workflow.StatePending, workflow.StateApproved, 2, time.Now())
	assert.ErrorIs(t, err, dbErr)

	mock.ExpectQuery("SELECT (.+) FROM trip_history").WillReturnError(dbErr)
	_, err = NewHistoryRepository(db, zap.NewNop()).GetByTripID(ctx, 1)
	assert.ErrorIs(t, err, dbErr)

	mock.ExpectExec("INSERT INTO users").WillReturnError(dbErr)
	err = NewUserRepository(db, zap.NewNop()).Create(ctx, &entity.User{Username: "budi"})
	assert.ErrorIs(t, err, dbErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}
