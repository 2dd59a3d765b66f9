package dlv

import (
	"github.com/shopspring/decimal"
)

// Estimate is the final driver-lifetime-value computation: every input the
// formula consumed plus the resulting dollar figure.
type Estimate struct {
	TotalDrivers          int
	ActiveDrivers         int
	RecordedRides         int
	MeanRidesPerActiveDay float64
	MeanFractionWorked    float64
	ProjectedFutureRides  float64
	AvgRidesPerDriver     float64
	MeanDonation          decimal.Decimal
	Lambda                float64
	ExpectedRemainingDays float64
	RevenueShare          float64
	DLV                   decimal.Decimal
}

// ComputeEstimate combines recorded ride volume, the projected future volume
// of still-active drivers, the average donation, and the platform's revenue
// share into one dollar value per driver:
//
//	projected = meanRidesPerActiveDay * meanFractionWorked * remainingTenure * activeDrivers
//	avgRides  = (recordedRides + projected) / totalDrivers
//	DLV       = avgRides * meanDonation * revenueShare
//
// With no still-active drivers the projection term is zero and the estimate
// degrades to the historical average.
func ComputeEstimate(ds *Dataset, summaries []DriverSummary, fit SurvivalFit, revenueShare float64) Estimate {
	activeCount := 0
	var sumRate, sumFraction float64
	for _, s := range summaries {
		if !s.StillActive {
			continue
		}
		activeCount++
		sumRate += s.RidesPerActiveDay
		sumFraction += s.FractionWorked
	}

	var meanRate, meanFraction, projected float64
	if activeCount > 0 {
		meanRate = sumRate / float64(activeCount)
		meanFraction = sumFraction / float64(activeCount)
		projected = meanRate * meanFraction * fit.ExpectedRemainingDays * float64(activeCount)
	}

	avgRides := (float64(ds.TotalRides) + projected) / float64(len(summaries))
	meanDonation := ds.MeanDonation()
	value := decimal.NewFromFloat(avgRides).
		Mul(meanDonation).
		Mul(decimal.NewFromFloat(revenueShare))

	return Estimate{
		TotalDrivers:          len(summaries),
		ActiveDrivers:         activeCount,
		RecordedRides:         ds.TotalRides,
		MeanRidesPerActiveDay: meanRate,
		MeanFractionWorked:    meanFraction,
		ProjectedFutureRides:  projected,
		AvgRidesPerDriver:     avgRides,
		MeanDonation:          meanDonation,
		Lambda:                fit.Lambda,
		ExpectedRemainingDays: fit.ExpectedRemainingDays,
		RevenueShare:          revenueShare,
		DLV:                   value,
	}
}
