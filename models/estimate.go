package models

import (
	"time"

	"github.com/google/uuid"

	"ridevalue/dlv"
)

// Estimate is one stored run of the value pipeline: the inputs the formula
// consumed and the resulting dollar value per driver.
type Estimate struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RunAt                 time.Time `gorm:"column:run_at" json:"run_at"`
	Source                string    `gorm:"column:source" json:"source"`
	TotalDrivers          int       `gorm:"column:total_drivers" json:"total_drivers"`
	ActiveDrivers         int       `gorm:"column:active_drivers" json:"active_drivers"`
	RecordedRides         int       `gorm:"column:recorded_rides" json:"recorded_rides"`
	MeanRidesPerActiveDay float64   `gorm:"column:mean_rides_per_active_day" json:"mean_rides_per_active_day"`
	MeanFractionWorked    float64   `gorm:"column:mean_fraction_worked" json:"mean_fraction_worked"`
	ProjectedFutureRides  float64   `gorm:"column:projected_future_rides" json:"projected_future_rides"`
	AvgRidesPerDriver     float64   `gorm:"column:avg_rides_per_driver" json:"avg_rides_per_driver"`
	MeanDonation          float64   `gorm:"column:mean_donation" json:"mean_donation"`
	DecayRate             float64   `gorm:"column:decay_rate" json:"decay_rate"`
	ExpectedRemainingDays float64   `gorm:"column:expected_remaining_days" json:"expected_remaining_days"`
	RevenueShare          float64   `gorm:"column:revenue_share" json:"revenue_share"`
	DLVPerDriver          float64   `gorm:"column:dlv_per_driver" json:"dlv_per_driver"`
}

func (Estimate) TableName() string { return "dlv_estimates" }

func NewEstimate(res *dlv.Result, runID uuid.UUID, at time.Time, source string) Estimate {
	est := res.Estimate
	return Estimate{
		ID:                    runID,
		RunAt:                 at,
		Source:                source,
		TotalDrivers:          est.TotalDrivers,
		ActiveDrivers:         est.ActiveDrivers,
		RecordedRides:         est.RecordedRides,
		MeanRidesPerActiveDay: est.MeanRidesPerActiveDay,
		MeanFractionWorked:    est.MeanFractionWorked,
		ProjectedFutureRides:  est.ProjectedFutureRides,
		AvgRidesPerDriver:     est.AvgRidesPerDriver,
		MeanDonation:          est.MeanDonation.InexactFloat64(),
		DecayRate:             est.Lambda,
		ExpectedRemainingDays: est.ExpectedRemainingDays,
		RevenueShare:          est.RevenueShare,
		DLVPerDriver:          est.DLV.InexactFloat64(),
	}
}
