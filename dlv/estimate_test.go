package dlv

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeEstimate(t *testing.T) {
	t.Run("formula over known inputs", func(t *testing.T) {
		ds := &Dataset{TotalRides: 40, TotalDonations: decimal.NewFromInt(400)}
		summaries := []DriverSummary{
			{DriverID: "a", StillActive: true, RidesPerActiveDay: 3, FractionWorked: 0.5},
			{DriverID: "b", StillActive: true, RidesPerActiveDay: 5, FractionWorked: 1.0},
			{DriverID: "c", StillActive: false, RidesPerActiveDay: 2, FractionWorked: 0.9},
			{DriverID: "d", StillActive: false, RidesPerActiveDay: 1, FractionWorked: 0.1},
		}
		fit := SurvivalFit{Lambda: 0.1, ExpectedRemainingDays: 10}

		est := ComputeEstimate(ds, summaries, fit, 0.20)

		if est.TotalDrivers != 4 || est.ActiveDrivers != 2 {
			t.Errorf("drivers = %d/%d, want 2/4", est.ActiveDrivers, est.TotalDrivers)
		}
		if est.MeanRidesPerActiveDay != 4.0 {
			t.Errorf("MeanRidesPerActiveDay = %v, want 4", est.MeanRidesPerActiveDay)
		}
		if est.MeanFractionWorked != 0.75 {
			t.Errorf("MeanFractionWorked = %v, want 0.75", est.MeanFractionWorked)
		}
		// 4 rides/day x 0.75 of days x 10 days left x 2 drivers
		if est.ProjectedFutureRides != 60.0 {
			t.Errorf("ProjectedFutureRides = %v, want 60", est.ProjectedFutureRides)
		}
		if est.AvgRidesPerDriver != 25.0 {
			t.Errorf("AvgRidesPerDriver = %v, want 25", est.AvgRidesPerDriver)
		}
		if want := decimal.NewFromInt(10); !est.MeanDonation.Equal(want) {
			t.Errorf("MeanDonation = %s, want %s", est.MeanDonation, want)
		}
		if want := decimal.NewFromInt(50); !est.DLV.Equal(want) {
			t.Errorf("DLV = %s, want %s", est.DLV, want)
		}
	})

	t.Run("no active drivers drops the projection term", func(t *testing.T) {
		ds := &Dataset{TotalRides: 12, TotalDonations: decimal.NewFromInt(120)}
		summaries := []DriverSummary{
			{DriverID: "a", StillActive: false, RidesPerActiveDay: 4, FractionWorked: 1.0},
			{DriverID: "b", StillActive: false, RidesPerActiveDay: 2, FractionWorked: 0.5},
			{DriverID: "c", StillActive: false, RidesPerActiveDay: 1, FractionWorked: 0.2},
		}
		fit := SurvivalFit{Lambda: 0.05, ExpectedRemainingDays: 20}

		est := ComputeEstimate(ds, summaries, fit, 0.20)

		if est.ProjectedFutureRides != 0 {
			t.Errorf("ProjectedFutureRides = %v, want 0", est.ProjectedFutureRides)
		}
		if est.AvgRidesPerDriver != 4.0 {
			t.Errorf("AvgRidesPerDriver = %v, want 4", est.AvgRidesPerDriver)
		}
		if want := decimal.NewFromInt(8); !est.DLV.Equal(want) {
			t.Errorf("DLV = %s, want %s", est.DLV, want)
		}
	})

	t.Run("mean donation carries exact cents", func(t *testing.T) {
		ds := &Dataset{TotalRides: 4, TotalDonations: decimal.NewFromInt(39)}
		summaries := []DriverSummary{
			{DriverID: "a", StillActive: false, RidesPerActiveDay: 4, FractionWorked: 1.0},
		}
		est := ComputeEstimate(ds, summaries, SurvivalFit{}, 0.20)
		if want := decimal.RequireFromString("9.75"); !est.MeanDonation.Equal(want) {
			t.Errorf("MeanDonation = %s, want %s", est.MeanDonation, want)
		}
	})
}
