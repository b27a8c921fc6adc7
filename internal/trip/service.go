package trip

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/consumption"
)

// Service errors.
var (
	ErrNotAuthorized = errors.New("not authorized to access this trip")
)

// Validation constants.
const (
	MaxLabelLength = 80
	MaxNotesLength = 500
)

// Service provides saved trip operations.
type Service struct {
	repo Repository
}

// NewService creates a new trip service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all trips for a user.
func (s *Service) List(ctx context.Context, userID string, limit int) (*models.PagedTrips, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.Trip, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, s.toAPITrip(t))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedTrips{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a trip by ID for a user.
func (s *Service) Get(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.repo.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	result := s.toAPITrip(trip)
	return &result, nil
}

// Create creates a new trip for a user.
func (s *Service) Create(ctx context.Context, userID string, input *models.TripCreateRequest) (*models.Trip, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	tripID := "trp_" + uuid.New().String()[:22]

	trip := &Trip{
		ID:     tripID,
		UserID: userID,
		Label:  input.Label,
		Origin: Location{
			Point: Point{Lat: input.Origin.Point.Lat, Lon: input.Origin.Point.Lon},
			Name:  input.Origin.Name,
		},
		Destination: Location{
			Point: Point{Lat: input.Destination.Point.Lat, Lon: input.Destination.Point.Lon},
			Name:  input.Destination.Name,
		},
		VehicleID:       input.VehicleID,
		BatteryPercent:  input.BatteryPercent,
		TrailerWeightKg: input.TrailerWeightKg,
		TravelDate:      input.TravelDate,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	result := s.toAPITrip(trip)
	return &result, nil
}

// Update updates an existing trip for a user.
func (s *Service) Update(ctx context.Context, userID, tripID string, input *models.TripUpdateRequest) (*models.Trip, error) {
	trip, err := s.repo.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Label != nil {
		trip.Label = *input.Label
	}
	if input.Origin != nil {
		trip.Origin = Location{
			Point: Point{Lat: input.Origin.Point.Lat, Lon: input.Origin.Point.Lon},
			Name:  input.Origin.Name,
		}
	}
	if input.Destination != nil {
		trip.Destination = Location{
			Point: Point{Lat: input.Destination.Point.Lat, Lon: input.Destination.Point.Lon},
			Name:  input.Destination.Name,
		}
	}
	if input.VehicleID != nil {
		trip.VehicleID = *input.VehicleID
	}
	if input.BatteryPercent != nil {
		trip.BatteryPercent = *input.BatteryPercent
	}
	if input.TrailerWeightKg != nil {
		trip.TrailerWeightKg = *input.TrailerWeightKg
	}
	if input.TravelDate != nil {
		trip.TravelDate = input.TravelDate
	}
	if input.Notes != nil {
		trip.Notes = input.Notes
	}
	trip.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, trip); err != nil {
		return nil, err
	}

	result := s.toAPITrip(trip)
	return &result, nil
}

// Delete deletes a trip for a user.
func (s *Service) Delete(ctx context.Context, userID, tripID string) error {
	// Verify ownership
	_, err := s.repo.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			return ErrTripNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, tripID)
}

// validateCreateInput validates the create trip input.
func (s *Service) validateCreateInput(input *models.TripCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Label == "" {
		errs = append(errs, models.FieldError{Field: "label", Message: "is required"})
	} else if len(input.Label) > MaxLabelLength {
		errs = append(errs, models.FieldError{Field: "label", Message: "must be at most 80 characters"})
	}

	errs = append(errs, s.validateLocation(&input.Origin, "origin")...)
	errs = append(errs, s.validateLocation(&input.Destination, "destination")...)

	if input.VehicleID == "" {
		errs = append(errs, models.FieldError{Field: "vehicleId", Message: "is required"})
	}

	errs = append(errs, s.validateBatteryPercent(input.BatteryPercent)...)
	errs = append(errs, s.validateTrailerWeight(input.TrailerWeightKg)...)

	if input.Notes != nil && len(*input.Notes) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "notes", Message: "must be at most 500 characters"})
	}

	return errs
}

// validateUpdateInput validates the update trip input.
func (s *Service) validateUpdateInput(input *models.TripUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Label != nil {
		if *input.Label == "" {
			errs = append(errs, models.FieldError{Field: "label", Message: "cannot be empty"})
		} else if len(*input.Label) > MaxLabelLength {
			errs = append(errs, models.FieldError{Field: "label", Message: "must be at most 80 characters"})
		}
	}

	if input.Origin != nil {
		errs = append(errs, s.validateLocation(input.Origin, "origin")...)
	}
	if input.Destination != nil {
		errs = append(errs, s.validateLocation(input.Destination, "destination")...)
	}

	if input.VehicleID != nil && *input.VehicleID == "" {
		errs = append(errs, models.FieldError{Field: "vehicleId", Message: "cannot be empty"})
	}

	if input.BatteryPercent != nil {
		errs = append(errs, s.validateBatteryPercent(*input.BatteryPercent)...)
	}
	if input.TrailerWeightKg != nil {
		errs = append(errs, s.validateTrailerWeight(*input.TrailerWeightKg)...)
	}

	if input.Notes != nil && len(*input.Notes) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "notes", Message: "must be at most 500 characters"})
	}

	return errs
}

// validateBatteryPercent validates a departure battery level.
func (s *Service) validateBatteryPercent(pct float64) []models.FieldError {
	if pct < 0 || pct > 100 {
		return []models.FieldError{{Field: "batteryPercent", Message: "must be between 0 and 100"}}
	}
	return nil
}

// validateTrailerWeight validates a trailer weight.
func (s *Service) validateTrailerWeight(weightKg float64) []models.FieldError {
	if weightKg < 0 {
		return []models.FieldError{{Field: "trailerWeightKg", Message: "cannot be negative"}}
	}
	if weightKg > consumption.MaxTrailerWeightKg {
		return []models.FieldError{{Field: "trailerWeightKg", Message: "must be at most 3500 kg"}}
	}
	return nil
}

// validateLocation validates a trip location.
func (s *Service) validateLocation(loc *models.TripLocation, prefix string) []models.FieldError {
	var errs []models.FieldError

	if loc.Point.Lat < -90 || loc.Point.Lat > 90 {
		errs = append(errs, models.FieldError{
			Field:   prefix + ".point.lat",
			Message: "must be between -90 and 90",
		})
	}

	if loc.Point.Lon < -180 || loc.Point.Lon > 180 {
		errs = append(errs, models.FieldError{
			Field:   prefix + ".point.lon",
			Message: "must be between -180 and 180",
		})
	}

	return errs
}

// toAPITrip converts a domain Trip to an API Trip.
func (s *Service) toAPITrip(t *Trip) models.Trip {
	return models.Trip{
		ID:    t.ID,
		Label: t.Label,
		Origin: models.TripLocation{
			Point: models.Point{Lat: t.Origin.Point.Lat, Lon: t.Origin.Point.Lon},
			Name:  t.Origin.Name,
		},
		Destination: models.TripLocation{
			Point: models.Point{Lat: t.Destination.Point.Lat, Lon: t.Destination.Point.Lon},
			Name:  t.Destination.Name,
		},
		VehicleID:       t.VehicleID,
		BatteryPercent:  t.BatteryPercent,
		TrailerWeightKg: t.TrailerWeightKg,
		TravelDate:      t.TravelDate,
		Notes:           t.Notes,
		CreatedAt:       models.Timestamp(t.CreatedAt),
		UpdatedAt:       models.Timestamp(t.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
