package dlv

const (
	// DefaultActiveWindowDays is how recently a driver must have ridden,
	// relative to the newest ride in the dataset, to count as still active.
	DefaultActiveWindowDays = 7

	// DefaultRevenueShare is the platform's cut of each donation.
	DefaultRevenueShare = 0.20
)

// Options tune a pipeline run. The zero value is replaced with the defaults
// above.
type Options struct {
	ActiveWindowDays int
	RevenueShare     float64
}

func (o Options) withDefaults() Options {
	if o.ActiveWindowDays <= 0 {
		o.ActiveWindowDays = DefaultActiveWindowDays
	}
	if o.RevenueShare <= 0 {
		o.RevenueShare = DefaultRevenueShare
	}
	return o
}

// Result carries every stage's output for one pipeline run, plus the
// effective options it ran with.
type Result struct {
	Options   Options
	Summaries []DriverSummary
	Curve     []SurvivalPoint
	Fit       SurvivalFit
	Estimate  Estimate
}

// Run executes the full pipeline over an already-loaded dataset: per-driver
// summaries, the empirical survival curve, the exponential fit, and the
// final value estimate. Runs over the same dataset always produce the same
// result.
func Run(ds *Dataset, opts Options) (*Result, error) {
	if ds == nil || len(ds.DriverIDs) == 0 {
		return nil, ErrEmptyPopulation
	}
	opts = opts.withDefaults()

	summaries := Summarize(ds, opts.ActiveWindowDays)
	curve := SurvivalCurve(summaries)
	fit, err := FitSurvival(curve)
	if err != nil {
		return nil, err
	}
	est := ComputeEstimate(ds, summaries, fit, opts.RevenueShare)

	return &Result{
		Options:   opts,
		Summaries: summaries,
		Curve:     curve,
		Fit:       fit,
		Estimate:  est,
	}, nil
}
