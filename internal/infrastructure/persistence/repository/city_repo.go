package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// CityRepository implements port.CityRepository
type CityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCityRepository creates a new city repository
func NewCityRepository(db *sql.DB, logger *zap.Logger) port.CityRepository {
	return &CityRepository{
		db:     db,
		logger: logger,
	}
}

const cityColumns = `id, name, latitude, longitude, province, island, is_foreign, created_at`

// Create inserts a new city
func (r *CityRepository) Create(ctx context.Context, city *entity.City) error {
	query := `
		INSERT INTO cities (name, latitude, longitude, province, island, is_foreign, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		city.Name,
		city.Latitude,
		city.Longitude,
		city.Province,
		city.Island,
		city.IsForeign,
		city.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("City already exists")
		}
		r.logger.Error("Failed to create city", zap.String("name", city.Name), zap.Error(err))
		return fmt.Errorf("failed to create city: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	city.ID = id
	return nil
}

// GetByID retrieves a city by ID
func (r *CityRepository) GetByID(ctx context.Context, id int64) (*entity.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities WHERE id = ?`

	city, err := scanCity(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("city %d not found", id)
	}
	if err != nil {
		r.logger.Error("Failed to get city by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return city, nil
}

// List returns all cities ordered by name
func (r *CityRepository) List(ctx context.Context) ([]*entity.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities ORDER BY name ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list cities", zap.Error(err))
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	cities := make([]*entity.City, 0)
	for rows.Next() {
		city, err := scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCity(row rowScanner) (*entity.City, error) {
	var city entity.City
	err := row.Scan(
		&city.ID,
		&city.Name,
		&city.Latitude,
		&city.Longitude,
		&city.Province,
		&city.Island,
		&city.IsForeign,
		&city.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// Verify interface compliance
var _ port.CityRepository = (*CityRepository)(nil)
