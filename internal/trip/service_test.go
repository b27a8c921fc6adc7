package trip_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/trip"
)

func validCreateInput() *models.TripCreateRequest {
	return &models.TripCreateRequest{
		Label: "Amsterdam to Cologne",
		Origin: models.TripLocation{
			Point: models.Point{Lat: 52.370216, Lon: 4.895168},
		},
		Destination: models.TripLocation{
			Point: models.Point{Lat: 50.937531, Lon: 6.960279},
		},
		VehicleID:      "tesla-model-3-lr",
		BatteryPercent: 80,
	}
}

func TestService_Create(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	input := validCreateInput()

	result, err := service.Create(ctx, "user123", input)
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	if result.ID == "" {
		t.Error("expected trip ID to be set")
	}
	if !strings.HasPrefix(result.ID, "trp_") {
		t.Errorf("expected trip ID to start with 'trp_', got %q", result.ID)
	}
	if result.Label != input.Label {
		t.Errorf("expected label %q, got %q", input.Label, result.Label)
	}
	if result.VehicleID != input.VehicleID {
		t.Errorf("expected vehicle ID %q, got %q", input.VehicleID, result.VehicleID)
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(*models.TripCreateRequest)
		wantField string
	}{
		{
			name:      "empty label",
			mutate:    func(in *models.TripCreateRequest) { in.Label = "" },
			wantField: "label",
		},
		{
			name:      "label too long",
			mutate:    func(in *models.TripCreateRequest) { in.Label = strings.Repeat("a", 81) },
			wantField: "label",
		},
		{
			name:      "invalid latitude",
			mutate:    func(in *models.TripCreateRequest) { in.Origin.Point.Lat = 91.0 },
			wantField: "origin.point.lat",
		},
		{
			name:      "invalid longitude",
			mutate:    func(in *models.TripCreateRequest) { in.Destination.Point.Lon = 181.0 },
			wantField: "destination.point.lon",
		},
		{
			name:      "missing vehicle",
			mutate:    func(in *models.TripCreateRequest) { in.VehicleID = "" },
			wantField: "vehicleId",
		},
		{
			name:      "battery above 100",
			mutate:    func(in *models.TripCreateRequest) { in.BatteryPercent = 120 },
			wantField: "batteryPercent",
		},
		{
			name:      "trailer too heavy",
			mutate:    func(in *models.TripCreateRequest) { in.TrailerWeightKg = 4000 },
			wantField: "trailerWeightKg",
		},
		{
			name: "notes too long",
			mutate: func(in *models.TripCreateRequest) {
				notes := strings.Repeat("n", 501)
				in.Notes = &notes
			},
			wantField: "notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateInput()
			tt.mutate(input)

			_, err := service.Create(ctx, "user123", input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var valErr *trip.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			found := false
			for _, fe := range valErr.Errors {
				if fe.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected field error on %q, got %+v", tt.wantField, valErr.Errors)
			}
		})
	}
}

func TestService_Get(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateInput())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	got, err := service.Get(ctx, "user123", created.ID)
	if err != nil {
		t.Fatalf("failed to get trip: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected ID %q, got %q", created.ID, got.ID)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	_, err := service.Get(ctx, "user123", "trp_missing")
	if !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestService_Get_WrongUser(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateInput())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	_, err = service.Get(ctx, "other-user", created.ID)
	if !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound for another user's trip, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateInput())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	newLabel := "Weekend trip"
	newBattery := 65.0
	updated, err := service.Update(ctx, "user123", created.ID, &models.TripUpdateRequest{
		Label:          &newLabel,
		BatteryPercent: &newBattery,
	})
	if err != nil {
		t.Fatalf("failed to update trip: %v", err)
	}

	if updated.Label != newLabel {
		t.Errorf("expected label %q, got %q", newLabel, updated.Label)
	}
	if updated.BatteryPercent != newBattery {
		t.Errorf("expected battery %v, got %v", newBattery, updated.BatteryPercent)
	}
	if updated.VehicleID != created.VehicleID {
		t.Errorf("vehicle ID should be unchanged, got %q", updated.VehicleID)
	}
}

func TestService_Update_ValidationError(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateInput())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	badBattery := -5.0
	_, err = service.Update(ctx, "user123", created.ID, &models.TripUpdateRequest{
		BatteryPercent: &badBattery,
	})

	var valErr *trip.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateInput())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	if err := service.Delete(ctx, "user123", created.ID); err != nil {
		t.Fatalf("failed to delete trip: %v", err)
	}

	_, err = service.Get(ctx, "user123", created.ID)
	if !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound after delete, got %v", err)
	}
}

func TestService_Delete_WrongUser(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateInput())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	if err := service.Delete(ctx, "other-user", created.ID); !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound for another user's trip, got %v", err)
	}

	// The trip still exists for its owner.
	if _, err := service.Get(ctx, "user123", created.ID); err != nil {
		t.Errorf("trip should survive another user's delete attempt: %v", err)
	}
}

func TestService_List(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := service.Create(ctx, "user123", validCreateInput()); err != nil {
			t.Fatalf("failed to create trip: %v", err)
		}
	}
	if _, err := service.Create(ctx, "other-user", validCreateInput()); err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	result, err := service.List(ctx, "user123", 50)
	if err != nil {
		t.Fatalf("failed to list trips: %v", err)
	}
	if len(result.Items) != 3 {
		t.Errorf("expected 3 trips, got %d", len(result.Items))
	}
}

func TestService_List_Pagination(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := service.Create(ctx, "user123", validCreateInput()); err != nil {
			t.Fatalf("failed to create trip: %v", err)
		}
	}

	result, err := service.List(ctx, "user123", 2)
	if err != nil {
		t.Fatalf("failed to list trips: %v", err)
	}
	if len(result.Items) != 2 {
		t.Errorf("expected 2 trips, got %d", len(result.Items))
	}
	if result.Meta.NextCursor == nil {
		t.Error("expected a next cursor when more trips remain")
	}
}
