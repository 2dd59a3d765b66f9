package dlv

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SurvivalPoint is the empirical probability that a driver is still active
// t days after their first ride.
type SurvivalPoint struct {
	Day    int     `json:"day"`
	Active float64 `json:"active"`
}

// SurvivalFit is the exponential decay S(t) = exp(-lambda*t) fitted to the
// empirical curve.
type SurvivalFit struct {
	Lambda                float64 // decay rate per day
	ExpectedRemainingDays float64 // 1/lambda: mean remaining tenure of an active driver
	Points                int     // curve points the regression used
}

// SurvivalCurve builds activeAtT for t = 1..T, T being the longest observed
// duration. A still-active driver is right-censored (true tenure unknown,
// bounded below by current tenure) and counts as surviving at every t; an
// inactive driver survives only while t is inside their recorded duration.
// The series stops at the first zero value, whose logarithm the fit could
// not take.
func SurvivalCurve(summaries []DriverSummary) []SurvivalPoint {
	if len(summaries) == 0 {
		return nil
	}

	maxDuration := 0
	activeCount := 0
	var inactiveDurations []int
	for _, s := range summaries {
		if s.DurationDays > maxDuration {
			maxDuration = s.DurationDays
		}
		if s.StillActive {
			activeCount++
		} else {
			inactiveDurations = append(inactiveDurations, s.DurationDays)
		}
	}

	total := float64(len(summaries))
	points := make([]SurvivalPoint, 0, maxDuration)
	for t := 1; t <= maxDuration; t++ {
		surviving := activeCount
		for _, d := range inactiveDurations {
			if d > t {
				surviving++
			}
		}
		p := float64(surviving) / total
		if p <= 0 {
			break
		}
		points = append(points, SurvivalPoint{Day: t, Active: p})
	}
	return points
}

// FitSurvival regresses ln(activeAtT) on t through the origin and reads the
// decay rate off the slope; S(0) = 1 by construction, so the fit gets no
// intercept. Expected remaining tenure is 1/lambda: the exponential is
// memoryless, so an active driver's remaining life does not depend on the
// tenure already served.
//
// The fit needs at least two points strictly between 0 and 1; points at
// exactly 1 stay in the regression (ln 1 = 0) but carry no decay signal.
func FitSurvival(points []SurvivalPoint) (SurvivalFit, error) {
	informative := 0
	for _, p := range points {
		if p.Active < 1 {
			informative++
		}
	}
	if informative < 2 {
		return SurvivalFit{}, ErrDegenerateRegression
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Day)
		ys[i] = math.Log(p.Active)
	}

	_, slope := stat.LinearRegression(xs, ys, nil, true)
	lambda := -slope
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) || lambda <= 0 {
		return SurvivalFit{}, ErrDegenerateRegression
	}

	return SurvivalFit{
		Lambda:                lambda,
		ExpectedRemainingDays: 1 / lambda,
		Points:                len(points),
	}, nil
}
