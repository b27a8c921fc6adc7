package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/api/response"
	"github.com/voltroute/voltroute/internal/entitlement"
)

// EntitlementHandler handles subscription entitlement endpoints.
type EntitlementHandler struct {
	entitlementService *entitlement.Service
}

// NewEntitlementHandler creates a new EntitlementHandler.
func NewEntitlementHandler(entitlementService *entitlement.Service) *EntitlementHandler {
	return &EntitlementHandler{entitlementService: entitlementService}
}

// GetMyEntitlement handles GET /v1/me/entitlement - the caller's tier and quota.
func (h *EntitlementHandler) GetMyEntitlement(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	ent, err := h.entitlementService.Get(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to load entitlement")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIEntitlement(ent))
}

// SetTier handles PUT /v1/admin/entitlements/{userId} - set a user's tier.
func (h *EntitlementHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		response.BadRequest(w, r, "userId is required", nil)
		return
	}

	var req models.EntitlementUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	ent, err := h.entitlementService.SetTier(r.Context(), userID, entitlement.Tier(req.Tier))
	if err != nil {
		if errors.Is(err, entitlement.ErrUnknownTier) {
			response.BadRequest(w, r, "tier must be FREE or PREMIUM", []models.FieldError{
				{Field: "tier", Message: "must be FREE or PREMIUM", Code: "INVALID"},
			})
			return
		}
		response.InternalError(w, r, "failed to update entitlement")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIEntitlement(ent))
}

func toAPIEntitlement(ent *entitlement.Entitlement) models.EntitlementResponse {
	return models.EntitlementResponse{
		Tier:           string(ent.Tier),
		RouteQuota:     ent.RouteQuota,
		RoutesUsed:     ent.RoutesUsed,
		RemainingQuota: ent.RemainingQuota(),
		PeriodStart:    models.Timestamp(ent.PeriodStart),
	}
}
