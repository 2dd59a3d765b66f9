package dlv

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// RenderReport formats a pipeline result as the human-readable text report
// printed after each run.
func RenderReport(ds *Dataset, res *Result) string {
	var b strings.Builder
	est := res.Estimate

	fmt.Fprintf(&b, "dataset: %d rides from %d drivers, %s to %s\n",
		ds.TotalRides, len(ds.DriverIDs),
		ds.MinDate.Format("2006-01-02"), ds.MaxDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "active drivers: %d of %d (window %d days)\n",
		est.ActiveDrivers, est.TotalDrivers, res.Options.ActiveWindowDays)
	fmt.Fprintf(&b, "mean donation: $%s\n", est.MeanDonation.StringFixed(2))
	fmt.Fprintf(&b, "survival fit: lambda=%.6f expected remaining tenure=%.2f days (%d points)\n",
		est.Lambda, est.ExpectedRemainingDays, res.Fit.Points)
	fmt.Fprintf(&b, "projected future rides: %.2f\n", est.ProjectedFutureRides)
	fmt.Fprintf(&b, "avg rides per driver: %.2f\n", est.AvgRidesPerDriver)
	fmt.Fprintf(&b, "driver lifetime value: $%s\n", est.DLV.StringFixed(2))

	b.WriteString("\n")
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "driver\trides\tfirst\tlast\tdays\tactive\tfraction\trate\tmax break")
	for _, s := range res.Summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%t\t%.3f\t%.3f\t%d\n",
			s.DriverID, s.NumRides,
			s.FirstRideDate.Format("2006-01-02"), s.LastRideDate.Format("2006-01-02"),
			s.DurationDays, s.StillActive,
			s.FractionWorked, s.RidesPerActiveDay, s.MaxBreakDays)
	}
	tw.Flush()

	return b.String()
}
