package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	eligibilityapp "github.com/dropship/backend/internal/application/eligibility"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SystemHandler handles liveness, health and snapshot endpoints
type SystemHandler struct {
	BaseHandler
	service   *eligibilityapp.Service
	checks    []HealthCheck
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(service *eligibilityapp.Service, version string, checks ...HealthCheck) *SystemHandler {
	return &SystemHandler{
		service:   service,
		checks:    checks,
		version:   version,
		startTime: time.Now(),
	}
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping handles GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Snapshot handles GET /system/snapshot
func (h *SystemHandler) Snapshot(c *gin.Context) {
	h.Success(c, h.service.CurrentSnapshotInfo())
}

// HealthResponse reports the state of the process and its dependencies
type HealthResponse struct {
	Status          string            `json:"status"`
	Version         string            `json:"version"`
	GoVersion       string            `json:"go_version"`
	Uptime          string            `json:"uptime"`
	InstanceID      string            `json:"instance_id"`
	SnapshotVersion uint64            `json:"snapshot_version"`
	Checks          map[string]string `json:"checks"`
}

// Health handles GET /health. Any failing check answers 503.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:          "healthy",
		Version:         h.version,
		GoVersion:       runtime.Version(),
		Uptime:          time.Since(h.startTime).Round(time.Second).String(),
		InstanceID:      h.service.InstanceID(),
		SnapshotVersion: h.service.CurrentSnapshotInfo().Version,
		Checks:          make(map[string]string, len(h.checks)),
	}

	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			resp.Checks[check.Name] = "unhealthy: " + err.Error()
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "healthy"
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
