package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/auth"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
)

// ReportService produces recap downloads for staff
type ReportService interface {
	// ExportTrips writes the recap and returns the suggested file name
	ExportTrips(ctx context.Context, principal *auth.Principal, status workflow.State, w io.Writer) (string, error)
	ContentType() string
}

type reportServiceImpl struct {
	trips    TripService
	exporter port.TripExporter
	logger   Logger
}

// NewReportService creates a new ReportService
func NewReportService(trips TripService, exporter port.TripExporter, logger Logger) ReportService {
	return &reportServiceImpl{
		trips:    trips,
		exporter: exporter,
		logger:   logger,
	}
}

func (s *reportServiceImpl) ExportTrips(ctx context.Context, principal *auth.Principal, status workflow.State, w io.Writer) (string, error) {
	views, err := s.trips.ListByStatus(ctx, principal, status)
	if err != nil {
		return "", err
	}

	if err := s.exporter.Export(ctx, w, views); err != nil {
		s.logger.Error("Failed to export trips", "error", err, "count", len(views))
		return "", fmt.Errorf("export trips: %w", err)
	}

	label := "all"
	if status != "" {
		label = string(status)
	}
	name := fmt.Sprintf("rekap-perdin-%s-%s%s", label, time.Now().Format("20060102"), s.exporter.FileExtension())
	s.logger.Info("Trips exported", "count", len(views), "status", label)
	return name, nil
}

func (s *reportServiceImpl) ContentType() string {
	return s.exporter.ContentType()
}
