package report

import (
	"time"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

// DateLayout is the calendar date format used by the Data API.
const DateLayout = "2006-01-02"

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Names of the suggested date ranges.
const (
	RangeToday      = "today"
	RangeYesterday  = "yesterday"
	RangeLast7Days  = "last_7_days"
	RangeLast30Days = "last_30_days"
	RangeLastYear   = "last_year"
	RangeThisMonth  = "this_month"
	RangeLastMonth  = "last_month"
)

// CommonDateRanges returns the named date ranges relative to now, evaluated in
// now's location. The trailing windows end yesterday so they only cover
// complete days.
func CommonDateRanges(now time.Time) map[string]DateRange {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	lastOfPrevMonth := firstOfMonth.AddDate(0, 0, -1)
	firstOfPrevMonth := time.Date(lastOfPrevMonth.Year(), lastOfPrevMonth.Month(), 1, 0, 0, 0, 0, today.Location())

	return map[string]DateRange{
		RangeToday:      span(today, today),
		RangeYesterday:  span(yesterday, yesterday),
		RangeLast7Days:  span(today.AddDate(0, 0, -7), yesterday),
		RangeLast30Days: span(today.AddDate(0, 0, -30), yesterday),
		RangeLastYear:   span(today.AddDate(0, 0, -365), yesterday),
		RangeThisMonth:  span(firstOfMonth, today),
		RangeLastMonth:  span(firstOfPrevMonth, lastOfPrevMonth),
	}
}

func span(start, end time.Time) DateRange {
	return DateRange{StartDate: start.Format(DateLayout), EndDate: end.Format(DateLayout)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.New(apperrors.KindInvalidArgument, "report.ParseDate",
			"%s must be a valid date in YYYY-MM-DD format, got %q", field, value).WithField(field)
	}
	return t, nil
}

// ValidateDateRange checks both dates and that start is not after end.
func ValidateDateRange(start, end string) error {
	s, err := ParseDate("start_date", start)
	if err != nil {
		return err
	}
	e, err := ParseDate("end_date", end)
	if err != nil {
		return err
	}
	if s.After(e) {
		return apperrors.New(apperrors.KindInvalidArgument, "report.ValidateDateRange",
			"start_date %s is after end_date %s", start, end).WithField("start_date")
	}
	return nil
}
