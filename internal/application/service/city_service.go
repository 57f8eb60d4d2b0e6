package service

import (
	"context"
	"strings"
	"time"

	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/auth"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/pkg/utils"
)

// CreateCityInput carries the fields of a new reference city
type CreateCityInput struct {
	Name      string  `json:"nama" validate:"required,max=100"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Province  string  `json:"provinsi" validate:"max=100"`
	Island    string  `json:"pulau" validate:"max=100"`
	IsForeign bool    `json:"luar_negeri"`
}

// CityService manages city reference data
type CityService interface {
	Create(ctx context.Context, principal *auth.Principal, input CreateCityInput) (*entity.City, error)
	List(ctx context.Context, principal *auth.Principal) ([]*entity.City, error)
}

type cityServiceImpl struct {
	cityRepo port.CityRepository
	gate     *auth.Gate
	logger   Logger
}

// NewCityService creates a new CityService
func NewCityService(cityRepo port.CityRepository, gate *auth.Gate, logger Logger) CityService {
	return &cityServiceImpl{
		cityRepo: cityRepo,
		gate:     gate,
		logger:   logger,
	}
}

// Create adds a city; names are unique
func (s *cityServiceImpl) Create(ctx context.Context, principal *auth.Principal, input CreateCityInput) (*entity.City, error) {
	if err := s.gate.Require(principal, auth.RoleSDM); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	city := &entity.City{
		Name:      input.Name,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Province:  strings.TrimSpace(input.Province),
		Island:    strings.TrimSpace(input.Island),
		IsForeign: input.IsForeign,
		CreatedAt: time.Now(),
	}
	if err := s.cityRepo.Create(ctx, city); err != nil {
		s.logger.Error("Failed to create city", "error", err, "name", city.Name)
		return nil, err
	}

	s.logger.Info("City created", "city_id", city.ID, "name", city.Name)
	return city, nil
}

// List returns all cities to any authenticated caller
func (s *cityServiceImpl) List(ctx context.Context, principal *auth.Principal) ([]*entity.City, error) {
	if err := s.gate.Authenticated(principal); err != nil {
		return nil, err
	}
	return s.cityRepo.List(ctx)
}
