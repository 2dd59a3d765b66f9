package dlv

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testDate(d int) time.Time {
	return time.Date(2023, time.January, d, 0, 0, 0, 0, time.UTC)
}

// testRides builds a chronological record slice with one ride per listed
// day (repeat a day for multiple rides), $10 donation each.
func testRides(days ...int) []RideRecord {
	recs := make([]RideRecord, len(days))
	for i, d := range days {
		ts := time.Date(2023, time.January, d, 12, 0, 0, 0, time.UTC)
		recs[i] = RideRecord{
			DriverID:   "x",
			Donation:   decimal.NewFromInt(10),
			OccurredAt: ts,
			Date:       DateOf(ts, time.UTC),
		}
	}
	return recs
}

func TestSummarizeDriver(t *testing.T) {
	tests := []struct {
		name         string
		days         []int
		maxDay       int
		wantRides    int
		wantDuration int
		wantUnique   int
		wantFraction float64
		wantRate     float64
		wantBreak    int
		wantActive   bool
	}{
		{"sparse history", []int{1, 3, 3, 10}, 10, 4, 10, 3, 0.3, 4.0 / 3.0, 7, true},
		{"single ride", []int{4}, 5, 1, 1, 1, 1.0, 1.0, 0, true},
		{"all rides one day", []int{2, 2, 2}, 20, 3, 1, 1, 1.0, 3.0, 0, false},
		{"consecutive days", []int{1, 2, 3, 4}, 4, 4, 4, 4, 1.0, 1.0, 1, true},
		{"long gap dominates", []int{1, 2, 10, 11}, 11, 4, 11, 4, 4.0 / 11.0, 1.0, 8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeDriver("x", testRides(tt.days...), testDate(tt.maxDay), 7)
			if got.NumRides != tt.wantRides {
				t.Errorf("NumRides = %d, want %d", got.NumRides, tt.wantRides)
			}
			if got.DurationDays != tt.wantDuration {
				t.Errorf("DurationDays = %d, want %d", got.DurationDays, tt.wantDuration)
			}
			if got.UniqueActiveDays != tt.wantUnique {
				t.Errorf("UniqueActiveDays = %d, want %d", got.UniqueActiveDays, tt.wantUnique)
			}
			if math.Abs(got.FractionWorked-tt.wantFraction) > 0.0001 {
				t.Errorf("FractionWorked = %v, want %v", got.FractionWorked, tt.wantFraction)
			}
			if math.Abs(got.RidesPerActiveDay-tt.wantRate) > 0.0001 {
				t.Errorf("RidesPerActiveDay = %v, want %v", got.RidesPerActiveDay, tt.wantRate)
			}
			if got.MaxBreakDays != tt.wantBreak {
				t.Errorf("MaxBreakDays = %d, want %d", got.MaxBreakDays, tt.wantBreak)
			}
			if got.StillActive != tt.wantActive {
				t.Errorf("StillActive = %t, want %t", got.StillActive, tt.wantActive)
			}
		})
	}
}

func TestSummarizeDriverActiveBoundary(t *testing.T) {
	tests := []struct {
		name    string
		lastDay int
		maxDay  int
		window  int
		want    bool
	}{
		{"rode on the last day", 10, 10, 7, true},
		{"exactly window days ago", 3, 10, 7, true},
		{"one past the window", 2, 10, 7, false},
		{"narrow window", 9, 10, 1, true},
		{"narrow window exceeded", 8, 10, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeDriver("x", testRides(tt.lastDay), testDate(tt.maxDay), tt.window)
			if got.StillActive != tt.want {
				t.Errorf("StillActive = %t, want %t", got.StillActive, tt.want)
			}
		})
	}
}

func TestSummarizeDriverDonations(t *testing.T) {
	recs := testRides(1, 2, 3)
	recs[1].Donation = decimal.RequireFromString("7.25")
	got := SummarizeDriver("x", recs, testDate(3), 7)
	want := decimal.RequireFromString("27.25")
	if !got.TotalDonations.Equal(want) {
		t.Errorf("TotalDonations = %s, want %s", got.TotalDonations, want)
	}
}

func TestSummarize(t *testing.T) {
	records := append(testRides(1, 2, 3), testRides(5)...)
	records[3].DriverID = "z"
	records = append(records, RideRecord{
		DriverID:   "m",
		Donation:   decimal.NewFromInt(10),
		OccurredAt: time.Date(2023, time.January, 8, 12, 0, 0, 0, time.UTC),
	})
	ds, err := BuildDataset(records, time.UTC)
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	t.Run("output follows sorted driver order", func(t *testing.T) {
		got := Summarize(ds, 7)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		ids := []string{got[0].DriverID, got[1].DriverID, got[2].DriverID}
		if !reflect.DeepEqual(ids, []string{"m", "x", "z"}) {
			t.Errorf("order = %v, want [m x z]", ids)
		}
	})

	t.Run("repeated runs agree", func(t *testing.T) {
		first := Summarize(ds, 7)
		second := Summarize(ds, 7)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("summaries differ between runs")
		}
	})
}
