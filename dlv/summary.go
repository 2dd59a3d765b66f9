package dlv

import (
	"runtime"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DriverSummary reduces one driver's ride history to the fixed tuple the
// survival and value stages consume.
//
// Invariants: DurationDays >= 1, 1 <= UniqueActiveDays <= DurationDays,
// FractionWorked in (0, 1]. MaxBreakDays is 0 for a single-ride driver.
type DriverSummary struct {
	DriverID          string
	NumRides          int
	FirstRideDate     time.Time
	LastRideDate      time.Time
	DurationDays      int
	StillActive       bool
	UniqueActiveDays  int
	FractionWorked    float64
	RidesPerActiveDay float64
	MaxBreakDays      int
	TotalDonations    decimal.Decimal
}

// SummarizeDriver computes the summary for one driver's chronologically
// sorted records. A driver is still active when their last ride is at most
// activeWindowDays before the dataset's last date, boundary inclusive.
func SummarizeDriver(driverID string, records []RideRecord, datasetMax time.Time, activeWindowDays int) DriverSummary {
	first := records[0].Date
	last := records[len(records)-1].Date

	uniqueDays := 0
	maxBreak := 0
	total := decimal.Zero
	var prev time.Time
	for _, rec := range records {
		total = total.Add(rec.Donation)
		if !prev.IsZero() && !rec.Date.After(prev) {
			continue // another ride on an already-counted day
		}
		if !prev.IsZero() {
			if gap := DaysBetween(prev, rec.Date); gap > maxBreak {
				maxBreak = gap
			}
		}
		uniqueDays++
		prev = rec.Date
	}

	duration := DaysBetween(first, last) + 1
	return DriverSummary{
		DriverID:          driverID,
		NumRides:          len(records),
		FirstRideDate:     first,
		LastRideDate:      last,
		DurationDays:      duration,
		StillActive:       DaysBetween(last, datasetMax) <= activeWindowDays,
		UniqueActiveDays:  uniqueDays,
		FractionWorked:    float64(uniqueDays) / float64(duration),
		RidesPerActiveDay: float64(len(records)) / float64(uniqueDays),
		MaxBreakDays:      maxBreak,
		TotalDonations:    total,
	}
}

// Summarize computes one summary per driver, in DriverIDs order. Drivers are
// independent, so the reduction fans out over a small worker pool; each
// worker writes to its own slot, which keeps the output deterministic.
func Summarize(ds *Dataset, activeWindowDays int) []DriverSummary {
	out := make([]DriverSummary, len(ds.DriverIDs))

	workers := runtime.NumCPU()
	if workers > len(ds.DriverIDs) {
		workers = len(ds.DriverIDs)
	}
	if workers < 1 {
		workers = 1
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				id := ds.DriverIDs[i]
				out[i] = SummarizeDriver(id, ds.ByDriver[id], ds.MaxDate, activeWindowDays)
			}
		}()
	}
	for i := range ds.DriverIDs {
		idx <- i
	}
	close(idx)
	wg.Wait()

	return out
}
