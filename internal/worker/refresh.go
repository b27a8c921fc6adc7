package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/station"
	"github.com/voltroute/voltroute/internal/weather"
)

// RefreshJob handles provider cache refresh operations.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	stationService *station.Service
	weatherService *weather.Service

	// Metrics
	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	WeatherRefresh    int64
	ForecastRefresh   int64
	StationRefresh    int64

	// Timings
	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration

	// Last station snapshot
	LastSnapshotStations int64
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config         RefreshConfig
	Logger         zerolog.Logger
	StationService *station.Service
	WeatherService *weather.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultRefreshConfig()
	}

	return &RefreshJob{
		config:         config,
		logger:         cfg.Logger,
		stationService: cfg.StationService,
		weatherService: cfg.WeatherService,
		metrics:        &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	Successful  int
	Failed      int
	Errors      []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	Provider string
	Point    Point
	Error    string
}

// Run executes the weather warm-up for all configured corridor waypoints.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:   startTime,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting corridor warm-up job")

	points := j.config.AllPoints()

	pointsChan := make(chan Point, len(points))
	resultsChan := make(chan pointResult, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			j.refreshWorker(ctx, workerID, pointsChan, resultsChan)
		}(i)
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		if pr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, pr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("corridor warm-up job completed")

	return result
}

type pointResult struct {
	point   Point
	success bool
	errors  []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, _ int, points <-chan Point, results chan<- pointResult) {
	for point := range points {
		select {
		case <-ctx.Done():
			return
		default:
			result := j.refreshPoint(ctx, point)
			results <- result
		}
	}
}

func (j *RefreshJob) refreshPoint(ctx context.Context, point Point) pointResult {
	result := pointResult{
		point:   point,
		success: true,
	}

	pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if j.config.RefreshWeather && j.weatherService != nil {
		if _, err := j.weatherService.GetCurrentWeather(pointCtx, point.Lat, point.Lon); err != nil {
			result.errors = append(result.errors, RefreshError{
				Provider: "weather",
				Point:    point,
				Error:    err.Error(),
			})
			result.success = false
		} else {
			atomic.AddInt64(&j.metrics.WeatherRefresh, 1)
		}
	}

	if j.config.RefreshForecast && j.weatherService != nil {
		if _, err := j.weatherService.GetForecast(pointCtx, point.Lat, point.Lon); err != nil {
			result.errors = append(result.errors, RefreshError{
				Provider: "forecast",
				Point:    point,
				Error:    err.Error(),
			})
			// Forecast misses are non-fatal, the planner falls back to
			// current conditions.
		} else {
			atomic.AddInt64(&j.metrics.ForecastRefresh, 1)
		}
	}

	return result
}

// RefreshStations refreshes the charging station snapshot.
// Station data is network-wide rather than per-point, so a single
// provider fetch replaces the whole snapshot.
func (j *RefreshJob) RefreshStations(ctx context.Context) error {
	if !j.config.RefreshStations || j.stationService == nil {
		return nil
	}

	j.logger.Debug().Msg("refreshing station snapshot")

	snap, err := j.stationService.RefreshSnapshot(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to refresh station snapshot")
		return err
	}

	atomic.AddInt64(&j.metrics.StationRefresh, 1)
	atomic.StoreInt64(&j.metrics.LastSnapshotStations, int64(len(snap.Stations)))

	j.logger.Info().
		Int("stations", len(snap.Stations)).
		Str("source", snap.Source).
		Msg("station snapshot refreshed")

	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:       j.metrics.TotalRefreshes,
		SuccessfulRefresh:    j.metrics.SuccessfulRefresh,
		FailedRefreshes:      j.metrics.FailedRefreshes,
		WeatherRefresh:       j.metrics.WeatherRefresh,
		ForecastRefresh:      j.metrics.ForecastRefresh,
		StationRefresh:       j.metrics.StationRefresh,
		LastRefreshAt:        j.metrics.LastRefreshAt,
		LastRefreshDuration:  j.metrics.LastRefreshDuration,
		TotalDuration:        j.metrics.TotalDuration,
		LastSnapshotStations: j.metrics.LastSnapshotStations,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":        m.TotalRefreshes,
		"successful_refreshes":   m.SuccessfulRefresh,
		"failed_refreshes":       m.FailedRefreshes,
		"weather_refreshes":      m.WeatherRefresh,
		"forecast_refreshes":     m.ForecastRefresh,
		"station_refreshes":      m.StationRefresh,
		"last_refresh_at":        m.LastRefreshAt,
		"last_refresh_duration":  m.LastRefreshDuration.String(),
		"total_duration":         m.TotalDuration.String(),
		"last_snapshot_stations": m.LastSnapshotStations,
	}
}
