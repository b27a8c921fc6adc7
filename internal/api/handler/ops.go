// Package handler provides HTTP handlers for the VoltRoute API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/api/response"
	"github.com/voltroute/voltroute/internal/featureflags"
	"github.com/voltroute/voltroute/internal/provider/resilience"
)

// SubsystemCheck probes an internal dependency for the readiness endpoint.
type SubsystemCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsHandlerConfig holds configuration for the OpsHandler.
type OpsHandlerConfig struct {
	Version   string
	BuildTime string

	// Registry reports upstream provider health. Optional.
	Registry *resilience.Registry

	// Checks are probed by the readiness endpoint.
	Checks []SubsystemCheck

	// Flags surfaces active degradation flags in the status response. Optional.
	Flags *featureflags.Service
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	checks    []SubsystemCheck
	flags     *featureflags.Service
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		checks:    cfg.Checks,
		flags:     cfg.Flags,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// Fails when any registered subsystem check fails.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := models.HealthStatusOK
	details := make(map[string]interface{}, len(h.checks))
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			status = models.HealthStatusFail
			details[c.Name] = err.Error()
		} else {
			details[c.Name] = "ok"
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	if len(details) > 0 {
		health.Details = details
	}

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := models.Timestamp(time.Now())
	overall := models.HealthStatusOK

	subsystems := make([]models.SubsystemStatus, 0, len(h.checks))
	for _, c := range h.checks {
		sub := models.SubsystemStatus{Name: c.Name, Status: models.HealthStatusOK}
		if err := c.Check(ctx); err != nil {
			msg := err.Error()
			sub.Status = models.HealthStatusFail
			sub.Message = &msg
			overall = models.HealthStatusFail
		}
		subsystems = append(subsystems, sub)
	}

	var providers []models.ProviderStatus
	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			providers = append(providers, providerStatus(ph))
		}
		sort.Slice(providers, func(i, j int) bool {
			return providers[i].Provider < providers[j].Provider
		})
		for _, p := range providers {
			if p.Status == models.HealthStatusDegraded && overall == models.HealthStatusOK {
				overall = models.HealthStatusDegraded
			}
			if p.Status == models.HealthStatusFail && overall != models.HealthStatusFail {
				overall = models.HealthStatusDegraded
			}
		}
	}

	status := models.SystemStatus{
		Status:                 overall,
		Time:                   now,
		Subsystems:             subsystems,
		Providers:              providers,
		ActiveDegradationFlags: h.degradationFlags(ctx),
	}
	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) degradationFlags(ctx context.Context) []string {
	if h.flags == nil {
		return nil
	}
	var active []string
	for _, key := range []string{
		featureflags.FlagCachedOnlyWeather,
		featureflags.FlagDisableTrailerPlanning,
	} {
		if h.flags.Enabled(ctx, key) {
			active = append(active, key)
		}
	}
	return active
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	status := models.HealthStatusOK
	switch {
	case ph.IsUnhealthy():
		status = models.HealthStatusFail
	case ph.IsDegraded():
		status = models.HealthStatusDegraded
	}

	ps := models.ProviderStatus{
		Provider: ph.Name,
		Status:   status,
	}
	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}
