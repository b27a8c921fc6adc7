package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/api/response"
	"github.com/voltroute/voltroute/internal/vehicle"
)

// VehicleHandler handles vehicle catalog endpoints.
type VehicleHandler struct {
	vehicleService *vehicle.Service
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// ListVehicles handles GET /v1/vehicles - list the vehicle catalog.
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	specs, err := h.vehicleService.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to load vehicle catalog")
		return
	}

	items := make([]models.Vehicle, 0, len(specs))
	for _, spec := range specs {
		items = append(items, toAPIVehicle(spec))
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, models.VehicleList{Items: items})
}

// GetVehicle handles GET /v1/vehicles/{vehicleId} - get a catalog entry.
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleId")
	if vehicleID == "" {
		response.BadRequest(w, r, "vehicleId is required", nil)
		return
	}

	spec, err := h.vehicleService.Get(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle not found")
			return
		}
		response.InternalError(w, r, "failed to load vehicle")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, toAPIVehicle(spec))
}

func toAPIVehicle(spec *vehicle.Spec) models.Vehicle {
	return models.Vehicle{
		ID:                     spec.ID,
		Brand:                  spec.Brand,
		Model:                  spec.Model,
		DisplayName:            spec.DisplayName(),
		BatteryCapacityKwh:     spec.BatteryCapacityKwh,
		RatedRangeKm:           spec.RatedRangeKm,
		ConsumptionKwhPer100Km: spec.ConsumptionKwhPer100Km,
	}
}
