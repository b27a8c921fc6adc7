// Package entitlement maps user identities to subscription tiers and route
// planning quotas.
package entitlement

import "time"

// Tier is a subscription tier.
type Tier string

const (
	// TierFree is the default tier for every new account.
	TierFree Tier = "FREE"
	// TierPremium unlocks trailer planning, forecast-dated routes and the
	// standard safety margin.
	TierPremium Tier = "PREMIUM"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

// Default route quotas per quota period.
const (
	// FreeRouteQuota is the number of route plans a free account may run
	// per quota period.
	FreeRouteQuota = 10

	// PremiumRouteQuota is the number of route plans a premium account may
	// run per quota period.
	PremiumRouteQuota = 500

	// QuotaPeriod is the rolling window after which usage resets.
	QuotaPeriod = 24 * time.Hour
)

// Entitlement describes what a user account may do.
type Entitlement struct {
	UserID      string    `json:"userId"`
	Tier        Tier      `json:"tier"`
	RouteQuota  int       `json:"routeQuota"`
	RoutesUsed  int       `json:"routesUsed"`
	PeriodStart time.Time `json:"periodStart"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RemainingQuota returns the number of route plans left in the current period.
func (e *Entitlement) RemainingQuota() int {
	remaining := e.RouteQuota - e.RoutesUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ConservativeMargin reports whether range planning must use the
// conservative safety margin for this account.
func (e *Entitlement) ConservativeMargin() bool {
	return e.Tier == TierFree
}

// AllowsTrailer reports whether the account may plan routes with a trailer.
func (e *Entitlement) AllowsTrailer() bool {
	return e.Tier == TierPremium
}

// AllowsForecast reports whether the account may plan future-dated routes
// that need weather forecasts.
func (e *Entitlement) AllowsForecast() bool {
	return e.Tier == TierPremium
}

// quotaFor returns the route quota for a tier.
func quotaFor(tier Tier) int {
	if tier == TierPremium {
		return PremiumRouteQuota
	}
	return FreeRouteQuota
}
