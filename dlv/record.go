package dlv

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RideRecord is one ride-donation row: who drove, what the rider donated,
// and when the ride happened. Date is OccurredAt collapsed to a calendar
// date in the platform's zone; BuildDataset fills it in.
type RideRecord struct {
	DriverID   string
	Donation   decimal.Decimal
	OccurredAt time.Time
	Date       time.Time
}

// Dataset is the full record set grouped per driver, plus the population
// aggregates every downstream stage reads. Nothing in it is mutated after
// BuildDataset returns.
type Dataset struct {
	ByDriver       map[string][]RideRecord // each slice sorted by OccurredAt ascending
	DriverIDs      []string                // sorted, for deterministic iteration
	MinDate        time.Time
	MaxDate        time.Time
	TotalRides     int
	TotalDonations decimal.Decimal
}

// MeanDonation is the average donation across all records, exact to
// decimal precision (mean of {9, 10, 9, 11} is exactly 9.75).
func (d *Dataset) MeanDonation() decimal.Decimal {
	if d.TotalRides == 0 {
		return decimal.Zero
	}
	return d.TotalDonations.Div(decimal.NewFromInt(int64(d.TotalRides)))
}

// FixedZone builds the calendar zone for a whole-hour UTC offset.
func FixedZone(offsetHours int) *time.Location {
	if offsetHours == 0 {
		return time.UTC
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// DateOf collapses a timestamp to its calendar date in loc. The result is
// anchored at UTC midnight so day arithmetic stays exact.
func DateOf(ts time.Time, loc *time.Location) time.Time {
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from one calendar date to another. Both
// arguments must come from DateOf.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// LoadCSV reads positional (driver_id, donation_amount, unix_timestamp)
// rows. There is no header row; every row must carry exactly three fields
// and parse, or the whole load fails with a line-numbered ParseError.
func LoadCSV(r io.Reader, loc *time.Location) (*Dataset, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = 3
	rd.TrimLeadingSpace = true

	var records []RideRecord
	line := 0
	for {
		line++
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Line: line, Reason: "expected driver_id, donation_amount, timestamp"}
		}
		rec, perr := parseRow(row, line)
		if perr != nil {
			return nil, perr
		}
		records = append(records, rec)
	}
	return BuildDataset(records, loc)
}

func parseRow(row []string, line int) (RideRecord, *ParseError) {
	driverID := strings.TrimSpace(row[0])
	if driverID == "" {
		return RideRecord{}, &ParseError{Line: line, Reason: "empty driver id"}
	}
	donation, err := decimal.NewFromString(strings.TrimSpace(row[1]))
	if err != nil {
		return RideRecord{}, &ParseError{Line: line, Reason: fmt.Sprintf("non-numeric donation %q", row[1])}
	}
	epoch, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if err != nil {
		return RideRecord{}, &ParseError{Line: line, Reason: fmt.Sprintf("non-numeric timestamp %q", row[2])}
	}
	return RideRecord{
		DriverID:   driverID,
		Donation:   donation,
		OccurredAt: time.Unix(epoch, 0).UTC(),
	}, nil
}

// BuildDataset normalizes every record to its calendar date in loc, groups
// records per driver, orders each driver's rides chronologically, and
// computes the population aggregates. Zero records means zero drivers and
// fails with ErrEmptyPopulation.
func BuildDataset(records []RideRecord, loc *time.Location) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyPopulation
	}
	if loc == nil {
		loc = time.UTC
	}

	ds := &Dataset{
		ByDriver:       make(map[string][]RideRecord),
		TotalDonations: decimal.Zero,
	}
	for _, rec := range records {
		rec.Date = DateOf(rec.OccurredAt, loc)
		ds.ByDriver[rec.DriverID] = append(ds.ByDriver[rec.DriverID], rec)
		if ds.MinDate.IsZero() || rec.Date.Before(ds.MinDate) {
			ds.MinDate = rec.Date
		}
		if rec.Date.After(ds.MaxDate) {
			ds.MaxDate = rec.Date
		}
		ds.TotalRides++
		ds.TotalDonations = ds.TotalDonations.Add(rec.Donation)
	}

	ds.DriverIDs = make([]string, 0, len(ds.ByDriver))
	for id, recs := range ds.ByDriver {
		sort.Slice(recs, func(i, j int) bool { return recs[i].OccurredAt.Before(recs[j].OccurredAt) })
		ds.DriverIDs = append(ds.DriverIDs, id)
	}
	sort.Strings(ds.DriverIDs)

	return ds, nil
}
