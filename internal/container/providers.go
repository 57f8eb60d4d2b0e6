// Package container provides dependency injection and lifecycle management
// for the perdin approval service.
package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/perdin-approval/internal/application/dispatcher"
	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/application/service"
	"github.com/garyjia/perdin-approval/internal/config"
	"github.com/garyjia/perdin-approval/internal/domain/auth"
	"github.com/garyjia/perdin-approval/internal/domain/policy"
	"github.com/garyjia/perdin-approval/internal/infrastructure/export"
	infraLark "github.com/garyjia/perdin-approval/internal/infrastructure/external/lark"
	"github.com/garyjia/perdin-approval/internal/infrastructure/persistence/repository"
	"github.com/garyjia/perdin-approval/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/perdin-approval/internal/infrastructure/security"
	"github.com/garyjia/perdin-approval/migrations"
	"github.com/garyjia/perdin-approval/pkg/database"
	"github.com/garyjia/perdin-approval/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB        *database.DB
	TxManager *sqlite.TxManager
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	City    port.CityRepository
	Trip    port.TripRepository
	User    port.UserRepository
	History port.HistoryRepository
}

// SecurityBundle holds token and password collaborators.
type SecurityBundle struct {
	Tokens *security.JWTManager
	Hasher *security.BcryptHasher
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Auth         service.AuthService
	City         service.CityService
	Trip         service.TripService
	Report       service.ReportService
	Notification service.NotificationService
}

// ServiceDeps holds dependencies needed to create services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Security   *SecurityBundle
	Policy     *policy.CostPolicy
	Dispatcher dispatcher.Dispatcher
	Notifier   port.DecisionNotifier
	Exporter   port.TripExporter
	TripCfg    config.TripConfig
	Logger     *zap.Logger
}

// ProvideDatabase opens the database and applies the embedded migrations.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(context.Background(), migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:        db,
		TxManager: sqlite.NewTxManager(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		City:    repository.NewCityRepository(db.DB, logger),
		Trip:    repository.NewTripRepository(db.DB, logger),
		User:    repository.NewUserRepository(db.DB, logger),
		History: repository.NewHistoryRepository(db.DB, logger),
	}, nil
}

// ProvideSecurity creates the token manager and password hasher.
func ProvideSecurity(cfg *config.AuthConfig) (*SecurityBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config is required")
	}
	return &SecurityBundle{
		Tokens: security.NewJWTManager(cfg.JWTSecret, cfg.Issuer, cfg.TokenTTL),
		Hasher: security.NewBcryptHasher(cfg.BcryptCost),
	}, nil
}

// ProvideNotifier returns the Lark decision notifier, or a no-op when Lark is disabled.
func ProvideNotifier(cfg *config.LarkConfig, logger *zap.Logger) port.DecisionNotifier {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Lark notifications disabled")
		return infraLark.NoopNotifier{}
	}

	api := infraLark.NewMessageAPI(infraLark.Config{
		Enabled:   cfg.Enabled,
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		ChatID:    cfg.ChatID,
	}, logger)
	return infraLark.NewDecisionNotifier(api, cfg.ChatID, logger)
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return dispatcher.NewDispatcher(dispatcher.WithLogger(utils.NewKVLogger(logger))), nil
}

// ProvideServices creates all application services and subscribes the
// notification handlers to the dispatcher.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil || deps.TxManager == nil || deps.Security == nil {
		return nil, fmt.Errorf("repositories, transaction manager and security are required")
	}
	if deps.Dispatcher == nil || deps.Policy == nil {
		return nil, fmt.Errorf("dispatcher and cost policy are required")
	}

	logger := utils.NewKVLogger(deps.Logger)
	gate := auth.NewGate()

	trips := service.NewTripService(
		deps.Repos.Trip,
		deps.Repos.City,
		deps.Repos.History,
		deps.TxManager,
		gate,
		deps.Policy,
		deps.Dispatcher,
		service.TripServiceConfig{SnapshotCostOnApprove: deps.TripCfg.SnapshotCostOnApprove},
		logger,
	)

	notifications := service.NewNotificationService(deps.Repos.Trip, deps.Notifier, logger)
	notifications.Register(deps.Dispatcher)

	return &ServiceBundle{
		Auth:         service.NewAuthService(deps.Repos.User, deps.Security.Hasher, deps.Security.Tokens, logger),
		City:         service.NewCityService(deps.Repos.City, gate, logger),
		Trip:         trips,
		Report:       service.NewReportService(trips, deps.Exporter, logger),
		Notification: notifications,
	}, nil
}

// ProvideExporter creates the xlsx recap exporter.
func ProvideExporter(logger *zap.Logger) port.TripExporter {
	return export.NewExcelExporter(logger)
}
