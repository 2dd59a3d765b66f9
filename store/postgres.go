package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ridevalue/dlv"
	"ridevalue/models"
)

// Store is the analyzer's write path into Postgres. The API tier reads the
// same tables through GORM, so column names here must match the model tags.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db pool init failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ride_donations (
		id BIGSERIAL PRIMARY KEY,
		driver_id TEXT NOT NULL,
		donation_amount NUMERIC(10, 2) NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ride_donations_driver ON ride_donations (driver_id, occurred_at)`,
	`CREATE TABLE IF NOT EXISTS driver_summaries (
		driver_id TEXT PRIMARY KEY,
		num_rides INT NOT NULL,
		first_ride_date DATE NOT NULL,
		last_ride_date DATE NOT NULL,
		duration_days INT NOT NULL,
		still_active BOOLEAN NOT NULL,
		unique_active_days INT NOT NULL,
		fraction_worked DOUBLE PRECISION NOT NULL,
		rides_per_active_day DOUBLE PRECISION NOT NULL,
		max_break_days INT NOT NULL,
		total_donations NUMERIC(12, 2) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dlv_estimates (
		id UUID PRIMARY KEY,
		run_at TIMESTAMPTZ NOT NULL,
		source TEXT NOT NULL,
		total_drivers INT NOT NULL,
		active_drivers INT NOT NULL,
		recorded_rides INT NOT NULL,
		mean_rides_per_active_day DOUBLE PRECISION NOT NULL,
		mean_fraction_worked DOUBLE PRECISION NOT NULL,
		projected_future_rides DOUBLE PRECISION NOT NULL,
		avg_rides_per_driver DOUBLE PRECISION NOT NULL,
		mean_donation NUMERIC(10, 2) NOT NULL,
		decay_rate DOUBLE PRECISION NOT NULL,
		expected_remaining_days DOUBLE PRECISION NOT NULL,
		revenue_share DOUBLE PRECISION NOT NULL,
		dlv_per_driver NUMERIC(12, 2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dlv_estimates_run_at ON dlv_estimates (run_at DESC)`,
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// LoadRides pulls the full donation log. The amount travels as text so the
// decimal arrives exactly as stored.
func (s *Store) LoadRides(ctx context.Context, loc *time.Location) (*dlv.Dataset, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT driver_id, donation_amount::text, extract(epoch FROM occurred_at)::bigint
		FROM ride_donations
	`)
	if err != nil {
		return nil, fmt.Errorf("query ride_donations failed: %w", err)
	}
	defer rows.Close()

	var records []dlv.RideRecord
	for rows.Next() {
		var driverID, amount string
		var epoch int64
		if err := rows.Scan(&driverID, &amount, &epoch); err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		donation, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("driver %s: bad donation %q: %w", driverID, amount, dlv.ErrMalformedRecord)
		}
		records = append(records, dlv.RideRecord{
			DriverID:   driverID,
			Donation:   donation,
			OccurredAt: time.Unix(epoch, 0).UTC(),
		})
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return dlv.BuildDataset(records, loc)
}

// SaveSummaries upserts one row per driver, the newest run winning, and
// returns how many rows landed. Failed rows are logged and skipped.
func (s *Store) SaveSummaries(ctx context.Context, summaries []dlv.DriverSummary, at time.Time) int {
	stored := 0
	for _, sum := range summaries {
		row := models.NewDriverSummary(sum, at)
		_, err := s.pool.Exec(ctx, `
			INSERT INTO driver_summaries (driver_id, num_rides, first_ride_date, last_ride_date,
				duration_days, still_active, unique_active_days, fraction_worked,
				rides_per_active_day, max_break_days, total_donations, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (driver_id) DO UPDATE SET
				num_rides = EXCLUDED.num_rides,
				first_ride_date = EXCLUDED.first_ride_date,
				last_ride_date = EXCLUDED.last_ride_date,
				duration_days = EXCLUDED.duration_days,
				still_active = EXCLUDED.still_active,
				unique_active_days = EXCLUDED.unique_active_days,
				fraction_worked = EXCLUDED.fraction_worked,
				rides_per_active_day = EXCLUDED.rides_per_active_day,
				max_break_days = EXCLUDED.max_break_days,
				total_donations = EXCLUDED.total_donations,
				updated_at = EXCLUDED.updated_at
		`, row.DriverID, row.NumRides, row.FirstRideDate, row.LastRideDate,
			row.DurationDays, row.StillActive, row.UniqueActiveDays, row.FractionWorked,
			row.RidesPerActiveDay, row.MaxBreakDays, row.TotalDonations, row.UpdatedAt)
		if err != nil {
			log.Printf("db upsert failed for driver=%s: %v", row.DriverID, err)
			continue
		}
		stored++
	}
	return stored
}

func (s *Store) SaveEstimate(ctx context.Context, est models.Estimate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO dlv_estimates (id, run_at, source, total_drivers, active_drivers,
			recorded_rides, mean_rides_per_active_day, mean_fraction_worked,
			projected_future_rides, avg_rides_per_driver, mean_donation, decay_rate,
			expected_remaining_days, revenue_share, dlv_per_driver)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, est.ID, est.RunAt, est.Source, est.TotalDrivers, est.ActiveDrivers,
		est.RecordedRides, est.MeanRidesPerActiveDay, est.MeanFractionWorked,
		est.ProjectedFutureRides, est.AvgRidesPerDriver, est.MeanDonation, est.DecayRate,
		est.ExpectedRemainingDays, est.RevenueShare, est.DLVPerDriver)
	if err != nil {
		return fmt.Errorf("estimate insert failed: %w", err)
	}
	return nil
}
