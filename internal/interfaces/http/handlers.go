package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/perdin-approval/internal/application/service"
	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Pinger checks storage availability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	authService   service.AuthService
	cityService   service.CityService
	tripService   service.TripService
	reportService service.ReportService
	db            Pinger
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	authService service.AuthService,
	cityService service.CityService,
	tripService service.TripService,
	reportService service.ReportService,
	db Pinger,
	logger Logger,
) *Handlers {
	return &Handlers{
		authService:   authService,
		cityService:   cityService,
		tripService:   tripService,
		reportService: reportService,
		db:            db,
		logger:        logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Checks:    map[string]string{"database": "healthy"},
	}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("Health check failed", "error", err)
			resp.Status = "unhealthy"
			resp.Checks["database"] = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{Success: status == http.StatusOK, Data: resp})
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "User registered successfully", user)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Login successful", result)
}

// ListCities handles GET /api/cities
func (h *Handlers) ListCities(c *gin.Context) {
	cities, err := h.cityService.List(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", cities)
}

// CreateCity handles POST /api/cities
func (h *Handlers) CreateCity(c *gin.Context) {
	var req service.CreateCityInput
	if !bindJSON(c, &req) {
		return
	}

	city, err := h.cityService.Create(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "City added successfully", city)
}

// CreateTrip handles POST /api/perdin
func (h *Handlers) CreateTrip(c *gin.Context) {
	var req service.CreateTripInput
	if !bindJSON(c, &req) {
		return
	}

	trip, err := h.tripService.Create(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Perdin created successfully", trip)
}

// ListTrips handles GET /api/perdin
func (h *Handlers) ListTrips(c *gin.Context) {
	trips, err := h.tripService.List(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", trips)
}

// ReviewQueue handles GET /api/perdin/review?status=pending
func (h *Handlers) ReviewQueue(c *gin.Context) {
	status := workflow.State(c.DefaultQuery("status", string(workflow.StatePending)))
	if status == "all" {
		status = ""
	}

	trips, err := h.tripService.ListByStatus(c.Request.Context(), principalFrom(c), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", trips)
}

// ExportTrips handles GET /api/perdin/export?status=approved
func (h *Handlers) ExportTrips(c *gin.Context) {
	status := workflow.State(c.Query("status"))

	var buf bytes.Buffer
	name, err := h.reportService.ExportTrips(c.Request.Context(), principalFrom(c), status, &buf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, h.reportService.ContentType(), buf.Bytes())
}

// GetTrip handles GET /api/perdin/:id
func (h *Handlers) GetTrip(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}

	trip, err := h.tripService.Get(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", trip)
}

// TripCost handles GET /api/perdin/:id/biaya
func (h *Handlers) TripCost(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}

	breakdown, err := h.tripService.ComputeAndStoreCost(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", breakdown)
}

// TripHistory handles GET /api/perdin/:id/history
func (h *Handlers) TripHistory(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}

	records, err := h.tripService.History(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", records)
}

// ApproveTrip handles PUT /api/perdin/:id/approve
func (h *Handlers) ApproveTrip(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}

	trip, err := h.tripService.Approve(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Perdin approved", trip)
}

// RejectTrip handles PUT /api/perdin/:id/reject
func (h *Handlers) RejectTrip(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}

	trip, err := h.tripService.Reject(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Perdin rejected", trip)
}

func tripID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.Validation("invalid perdin id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return false
	}
	return true
}
