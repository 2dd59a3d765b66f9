package dlv

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// Three drivers over an 11-day window, every donation $10:
//   alfa rode days 1-3 and quit, bravo rode days 1 and 11, carol rode day 5.
// With the 7-day window alfa is churned and bravo and carol are active.
const trioCSV = `alfa,10.00,1672574400
alfa,10.00,1672660800
alfa,10.00,1672747200
bravo,10.00,1672574400
bravo,10.00,1673438400
carol,10.00,1672920000
`

func TestRun(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(trioCSV), time.UTC)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	res, err := Run(ds, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	est := res.Estimate

	t.Run("population counts", func(t *testing.T) {
		if est.TotalDrivers != 3 || est.ActiveDrivers != 2 || est.RecordedRides != 6 {
			t.Errorf("got %d drivers, %d active, %d rides; want 3, 2, 6",
				est.TotalDrivers, est.ActiveDrivers, est.RecordedRides)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		if res.Options.ActiveWindowDays != DefaultActiveWindowDays {
			t.Errorf("ActiveWindowDays = %d, want %d", res.Options.ActiveWindowDays, DefaultActiveWindowDays)
		}
		if res.Options.RevenueShare != DefaultRevenueShare {
			t.Errorf("RevenueShare = %v, want %v", res.Options.RevenueShare, DefaultRevenueShare)
		}
	})

	t.Run("survival fit", func(t *testing.T) {
		// curve is 1.0 on days 1-2 and 2/3 on days 3-11, fitted through the origin
		wantLambda := math.Log(1.5) * 63.0 / 506.0
		if math.Abs(est.Lambda-wantLambda) > 1e-12 {
			t.Errorf("Lambda = %v, want %v", est.Lambda, wantLambda)
		}
		if math.Abs(est.ExpectedRemainingDays-1/wantLambda) > 1e-9 {
			t.Errorf("ExpectedRemainingDays = %v, want %v", est.ExpectedRemainingDays, 1/wantLambda)
		}
		if res.Fit.Points != 11 {
			t.Errorf("Points = %d, want 11", res.Fit.Points)
		}
	})

	t.Run("value estimate", func(t *testing.T) {
		tenure := 506.0 / (63.0 * math.Log(1.5))
		// both active drivers ride once per active day; fractions 2/11 and 1
		projected := 1.0 * (2.0/11.0 + 1.0) / 2.0 * tenure * 2.0
		avg := (6.0 + projected) / 3.0
		dlv := avg * 10.0 * 0.20

		if math.Abs(est.ProjectedFutureRides-projected) > 1e-9 {
			t.Errorf("ProjectedFutureRides = %v, want %v", est.ProjectedFutureRides, projected)
		}
		if math.Abs(est.AvgRidesPerDriver-avg) > 1e-9 {
			t.Errorf("AvgRidesPerDriver = %v, want %v", est.AvgRidesPerDriver, avg)
		}
		if got := est.DLV.InexactFloat64(); math.Abs(got-dlv) > 1e-9 {
			t.Errorf("DLV = %v, want %v", got, dlv)
		}
	})

	t.Run("same input gives same estimate", func(t *testing.T) {
		again, err := Run(ds, Options{})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !again.Estimate.DLV.Equal(est.DLV) {
			t.Errorf("DLV differs between runs: %s vs %s", again.Estimate.DLV, est.DLV)
		}
		if again.Estimate.Lambda != est.Lambda {
			t.Errorf("Lambda differs between runs: %v vs %v", again.Estimate.Lambda, est.Lambda)
		}
	})
}

func TestRunErrors(t *testing.T) {
	t.Run("nil dataset", func(t *testing.T) {
		_, err := Run(nil, Options{})
		if !errors.Is(err, ErrEmptyPopulation) {
			t.Errorf("err = %v, want ErrEmptyPopulation", err)
		}
	})

	t.Run("every driver still active", func(t *testing.T) {
		input := "a,10.00,1672574400\nb,10.00,1672660800\n"
		ds, err := LoadCSV(strings.NewReader(input), time.UTC)
		if err != nil {
			t.Fatalf("LoadCSV failed: %v", err)
		}
		_, err = Run(ds, Options{})
		if !errors.Is(err, ErrDegenerateRegression) {
			t.Errorf("err = %v, want ErrDegenerateRegression", err)
		}
	})
}

func TestRunCustomWindow(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(trioCSV), time.UTC)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	// a 9-day window keeps alfa active too, so no driver ever churns
	_, err = Run(ds, Options{ActiveWindowDays: 9})
	if !errors.Is(err, ErrDegenerateRegression) {
		t.Errorf("err = %v, want ErrDegenerateRegression", err)
	}
}
