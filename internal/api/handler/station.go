package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/api/response"
	"github.com/voltroute/voltroute/internal/station"
)

// DefaultStationRadiusKm bounds the nearby-station query when the client
// does not specify a radius.
const DefaultStationRadiusKm = 25.0

// MaxStationRadiusKm caps the nearby-station query radius.
const MaxStationRadiusKm = 200.0

// StationHandler handles charging-station metadata endpoints.
type StationHandler struct {
	stationService *station.Service
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(stationService *station.Service) *StationHandler {
	return &StationHandler{stationService: stationService}
}

// ListStations handles GET /v1/stations - stations near a point.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	lat, ok := parseFloatParam(w, r, "lat")
	if !ok {
		return
	}
	lon, ok := parseFloatParam(w, r, "lon")
	if !ok {
		return
	}

	radiusKm := DefaultStationRadiusKm
	if raw := r.URL.Query().Get("radiusKm"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed > MaxStationRadiusKm {
			response.BadRequest(w, r, "radiusKm must be a number between 0 and 200", nil)
			return
		}
		radiusKm = parsed
	}

	stations, err := h.stationService.Near(r.Context(), lat, lon, radiusKm)
	if err != nil {
		if errors.Is(err, station.ErrNoStationsNearby) {
			response.JSON(w, r, http.StatusOK, models.StationList{
				Items: []models.Station{},
				AsOf:  h.snapshotFetchedAt(r),
			})
			return
		}
		if errors.Is(err, station.ErrProviderUnavailable) {
			response.ServiceUnavailable(w, r, "station directory is unavailable")
			return
		}
		response.InternalError(w, r, "failed to load stations")
		return
	}

	items := make([]models.Station, 0, len(stations))
	for _, st := range stations {
		items = append(items, toAPIStation(st))
	}

	response.JSON(w, r, http.StatusOK, models.StationList{
		Items: items,
		AsOf:  h.snapshotFetchedAt(r),
	})
}

// GetStation handles GET /v1/stations/{stationId} - a single station.
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationId")
	if stationID == "" {
		response.BadRequest(w, r, "stationId is required", nil)
		return
	}

	st, err := h.stationService.Get(r.Context(), stationID)
	if err != nil {
		if errors.Is(err, station.ErrStationNotFound) {
			response.NotFound(w, r, "station not found")
			return
		}
		if errors.Is(err, station.ErrProviderUnavailable) {
			response.ServiceUnavailable(w, r, "station directory is unavailable")
			return
		}
		response.InternalError(w, r, "failed to load station")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIStation(st))
}

func (h *StationHandler) snapshotFetchedAt(r *http.Request) models.Timestamp {
	snapshot, err := h.stationService.GetSnapshot(r.Context())
	if err != nil || snapshot == nil {
		return models.Timestamp{}
	}
	return models.Timestamp(snapshot.FetchedAt)
}

func parseFloatParam(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		response.BadRequest(w, r, name+" is required", []models.FieldError{
			{Field: name, Message: "required", Code: "REQUIRED"},
		})
		return 0, false
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		response.BadRequest(w, r, name+" must be a number", []models.FieldError{
			{Field: name, Message: "must be a number", Code: "INVALID"},
		})
		return 0, false
	}
	return parsed, true
}

func toAPIStation(st *station.Station) models.Station {
	return models.Station{
		ID:                  st.ID,
		Name:                st.Name,
		Operator:            st.Operator,
		Point:               models.Point{Lat: st.Lat, Lon: st.Lon},
		AvailableConnectors: st.AvailableConnectors,
		TotalConnectors:     st.TotalConnectors,
		PowerKW:             st.PowerKW,
		IsFastCharger:       st.IsFastCharger,
		PricePerKwh:         st.PricePerKwh,
	}
}
