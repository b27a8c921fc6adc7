package models

// EntitlementResponse describes the caller's subscription tier and quota.
type EntitlementResponse struct {
	Tier           string    `json:"tier"`
	RouteQuota     int       `json:"routeQuota"`
	RoutesUsed     int       `json:"routesUsed"`
	RemainingQuota int       `json:"remainingQuota"`
	PeriodStart    Timestamp `json:"periodStart"`
}

// EntitlementUpdateRequest sets a user's subscription tier.
type EntitlementUpdateRequest struct {
	Tier string `json:"tier" validate:"required,oneof=FREE PREMIUM"`
}
