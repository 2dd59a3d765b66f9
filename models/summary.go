package models

import (
	"time"

	"ridevalue/dlv"
)

// DriverSummary is the stored row for one driver's reduced history. The
// analyzer upserts it after every run; the API reads it back.
type DriverSummary struct {
	DriverID          string    `gorm:"column:driver_id;primaryKey" json:"driver_id"`
	NumRides          int       `gorm:"column:num_rides" json:"num_rides"`
	FirstRideDate     time.Time `gorm:"column:first_ride_date" json:"first_ride_date"`
	LastRideDate      time.Time `gorm:"column:last_ride_date" json:"last_ride_date"`
	DurationDays      int       `gorm:"column:duration_days" json:"duration_days"`
	StillActive       bool      `gorm:"column:still_active" json:"still_active"`
	UniqueActiveDays  int       `gorm:"column:unique_active_days" json:"unique_active_days"`
	FractionWorked    float64   `gorm:"column:fraction_worked" json:"fraction_worked"`
	RidesPerActiveDay float64   `gorm:"column:rides_per_active_day" json:"rides_per_active_day"`
	MaxBreakDays      int       `gorm:"column:max_break_days" json:"max_break_days"`
	TotalDonations    float64   `gorm:"column:total_donations" json:"total_donations"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DriverSummary) TableName() string { return "driver_summaries" }

func NewDriverSummary(s dlv.DriverSummary, at time.Time) DriverSummary {
	return DriverSummary{
		DriverID:          s.DriverID,
		NumRides:          s.NumRides,
		FirstRideDate:     s.FirstRideDate,
		LastRideDate:      s.LastRideDate,
		DurationDays:      s.DurationDays,
		StillActive:       s.StillActive,
		UniqueActiveDays:  s.UniqueActiveDays,
		FractionWorked:    s.FractionWorked,
		RidesPerActiveDay: s.RidesPerActiveDay,
		MaxBreakDays:      s.MaxBreakDays,
		TotalDonations:    s.TotalDonations.InexactFloat64(),
		UpdatedAt:         at,
	}
}
