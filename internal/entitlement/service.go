package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Predefined service errors.
var (
	// ErrQuotaExceeded indicates the account used all route plans for the
	// current period.
	ErrQuotaExceeded = errors.New("route plan quota exceeded")
	// ErrUnknownTier indicates an unrecognized tier value.
	ErrUnknownTier = errors.New("unknown subscription tier")
)

// ServiceConfig holds configuration for the entitlement service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service answers entitlement questions for user accounts. Accounts without
// a stored record are treated as free tier.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new entitlement service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger.With().Str("component", "entitlement_service").Logger(),
	}
}

// Get returns the entitlement for a user, defaulting to a fresh free-tier
// record when none is stored.
func (s *Service) Get(ctx context.Context, userID string) (*Entitlement, error) {
	e, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.defaultEntitlement(userID), nil
		}
		return nil, fmt.Errorf("loading entitlement: %w", err)
	}

	s.rollPeriod(e)
	return e, nil
}

// ConsumeRouteCredit records one route plan against the user's quota.
// Returns ErrQuotaExceeded when the period's quota is used up.
func (s *Service) ConsumeRouteCredit(ctx context.Context, userID string) (*Entitlement, error) {
	e, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("loading entitlement: %w", err)
		}
		e = s.defaultEntitlement(userID)
	}

	s.rollPeriod(e)

	if e.RemainingQuota() <= 0 {
		return nil, fmt.Errorf("%w: %d used of %d", ErrQuotaExceeded, e.RoutesUsed, e.RouteQuota)
	}

	e.RoutesUsed++
	e.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("saving entitlement: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("tier", string(e.Tier)).
		Int("remaining", e.RemainingQuota()).
		Msg("route credit consumed")

	return e, nil
}

// SetTier changes a user's subscription tier. Usage carries over into the
// new tier's quota.
func (s *Service) SetTier(ctx context.Context, userID string, tier Tier) (*Entitlement, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}

	e, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("loading entitlement: %w", err)
		}
		e = s.defaultEntitlement(userID)
	}

	e.Tier = tier
	e.RouteQuota = quotaFor(tier)
	e.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("saving entitlement: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("tier", string(tier)).
		Msg("subscription tier changed")

	return e, nil
}

func (s *Service) defaultEntitlement(userID string) *Entitlement {
	now := time.Now()
	return &Entitlement{
		UserID:      userID,
		Tier:        TierFree,
		RouteQuota:  FreeRouteQuota,
		PeriodStart: now,
		UpdatedAt:   now,
	}
}

// rollPeriod resets usage when the quota period has elapsed.
func (s *Service) rollPeriod(e *Entitlement) {
	if time.Since(e.PeriodStart) >= QuotaPeriod {
		e.PeriodStart = time.Now()
		e.RoutesUsed = 0
	}
}
