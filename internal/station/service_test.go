package station_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltroute/voltroute/internal/station"
)

// mockProvider is a mock station directory provider for testing.
type mockProvider struct {
	mu        sync.Mutex
	callCount int
	stations  []*station.Station
	err       error
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) FetchSnapshot(_ context.Context) (*station.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if m.err != nil {
		return nil, m.err
	}

	snapshot := station.NewSnapshot("mock")
	for _, st := range m.stations {
		snapshot.Stations[st.ID] = st
	}
	return snapshot, nil
}

func (m *mockProvider) getCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *mockProvider) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// mockRepository is an in-memory station repository for testing.
type mockRepository struct {
	mu       sync.Mutex
	stations []*station.Station
	err      error
}

func (m *mockRepository) List(_ context.Context) ([]*station.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.stations, nil
}

func (m *mockRepository) ReplaceAll(_ context.Context, stations []*station.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.stations = stations
	return nil
}

func testStations() []*station.Station {
	return []*station.Station{
		{ID: "st_ams", Name: "Amsterdam Hub", Lat: 52.370, Lon: 4.895,
			AvailableConnectors: 4, TotalConnectors: 6, PowerKW: 300, IsFastCharger: true},
		{ID: "st_utr", Name: "Utrecht Plaza", Lat: 52.090, Lon: 5.121,
			AvailableConnectors: 2, TotalConnectors: 4, PowerKW: 150, IsFastCharger: true},
		{ID: "st_rtm", Name: "Rotterdam South", Lat: 51.880, Lon: 4.480,
			AvailableConnectors: 1, TotalConnectors: 2, PowerKW: 50, IsFastCharger: true},
	}
}

func newTestService(provider *mockProvider, repo station.Repository) *station.Service {
	return station.NewService(station.ServiceConfig{
		Provider:   provider,
		Repository: repo,
		Logger:     zerolog.Nop(),
	})
}

func TestService_GetSnapshotCaches(t *testing.T) {
	provider := &mockProvider{stations: testStations()}
	service := newTestService(provider, nil)

	snapshot, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Stations, 3)
	assert.Equal(t, 1, provider.getCallCount())

	_, err = service.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, provider.getCallCount(), "second read served from cache")
}

func TestService_Near(t *testing.T) {
	provider := &mockProvider{stations: testStations()}
	service := newTestService(provider, nil)

	// Near Amsterdam: Amsterdam itself plus Utrecht within 50 km.
	nearby, err := service.Near(context.Background(), 52.37, 4.89, 50)
	require.NoError(t, err)
	require.Len(t, nearby, 2)
	assert.Equal(t, "st_ams", nearby[0].ID, "closest first")
	assert.Equal(t, "st_utr", nearby[1].ID)

	// Tiny radius matches nothing.
	_, err = service.Near(context.Background(), 48.85, 2.35, 5)
	assert.ErrorIs(t, err, station.ErrNoStationsNearby)
}

func TestService_Get(t *testing.T) {
	provider := &mockProvider{stations: testStations()}
	service := newTestService(provider, nil)

	st, err := service.Get(context.Background(), "st_utr")
	require.NoError(t, err)
	assert.Equal(t, "Utrecht Plaza", st.Name)

	_, err = service.Get(context.Background(), "st_nope")
	assert.ErrorIs(t, err, station.ErrStationNotFound)
}

func TestService_StaleIfError(t *testing.T) {
	provider := &mockProvider{stations: testStations()}
	service := station.NewService(station.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: 1 * time.Nanosecond,
	})

	first, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	provider.setError(errors.New("boom"))
	stale, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.FetchedAt, stale.FetchedAt, "previous snapshot served")
}

func TestService_ColdStartFromRepository(t *testing.T) {
	provider := &mockProvider{}
	provider.setError(errors.New("boom"))
	repo := &mockRepository{stations: testStations()}
	service := newTestService(provider, repo)

	snapshot, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Stations, 3)
	assert.Equal(t, "repository", snapshot.Source)
}

func TestService_PersistsFreshSnapshot(t *testing.T) {
	provider := &mockProvider{stations: testStations()}
	repo := &mockRepository{}
	service := newTestService(provider, repo)

	_, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, repo.stations, 3)
}

func TestService_RefreshSnapshotBypassesCache(t *testing.T) {
	provider := &mockProvider{stations: testStations()}
	service := newTestService(provider, nil)

	_, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)
	_, err = service.RefreshSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.getCallCount())
}

func TestService_ProviderDownNoFallback(t *testing.T) {
	provider := &mockProvider{}
	provider.setError(errors.New("boom"))
	service := newTestService(provider, nil)

	_, err := service.GetSnapshot(context.Background())
	assert.ErrorIs(t, err, station.ErrProviderUnavailable)
}

func TestStation_Normalize(t *testing.T) {
	st := &station.Station{
		ID:                  "st_x",
		PowerKW:             150,
		AvailableConnectors: 9,
		TotalConnectors:     4,
		PricePerKwh:         -1,
	}
	st.Normalize()

	assert.True(t, st.IsFastCharger, "derived from power rating")
	assert.Equal(t, 4, st.AvailableConnectors, "clamped to total")
	assert.Zero(t, st.PricePerKwh, "negative price treated as unknown")

	slow := &station.Station{ID: "st_y", PowerKW: 22}
	slow.Normalize()
	assert.False(t, slow.IsFastCharger)
}
