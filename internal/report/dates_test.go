package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t.Add(15 * time.Hour)
}

func TestCommonDateRanges(t *testing.T) {
	got := CommonDateRanges(day("2025-03-15"))

	assert.Equal(t, map[string]DateRange{
		RangeToday:      {"2025-03-15", "2025-03-15"},
		RangeYesterday:  {"2025-03-14", "2025-03-14"},
		RangeLast7Days:  {"2025-03-08", "2025-03-14"},
		RangeLast30Days: {"2025-02-13", "2025-03-14"},
		RangeLastYear:   {"2024-03-15", "2025-03-14"},
		RangeThisMonth:  {"2025-03-01", "2025-03-15"},
		RangeLastMonth:  {"2025-02-01", "2025-02-28"},
	}, got)
}

func TestCommonDateRanges_LastMonth(t *testing.T) {
	tests := []struct {
		now  string
		want DateRange
	}{
		{"2025-03-01", DateRange{"2025-02-01", "2025-02-28"}},
		{"2024-03-01", DateRange{"2024-02-01", "2024-02-29"}},
		{"2025-01-10", DateRange{"2024-12-01", "2024-12-31"}},
		{"2025-05-31", DateRange{"2025-04-01", "2025-04-30"}},
		{"2025-12-31", DateRange{"2025-11-01", "2025-11-30"}},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			assert.Equal(t, tt.want, CommonDateRanges(day(tt.now))[RangeLastMonth])
		})
	}
}

func TestCommonDateRanges_FirstOfMonth(t *testing.T) {
	got := CommonDateRanges(day("2025-03-01"))
	assert.Equal(t, DateRange{"2025-03-01", "2025-03-01"}, got[RangeThisMonth])
	assert.Equal(t, DateRange{"2025-02-28", "2025-02-28"}, got[RangeYesterday])
}

func TestValidateDateRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantErr    bool
		wantField  string
	}{
		{"valid", "2024-01-01", "2024-01-07", false, ""},
		{"same day", "2024-01-01", "2024-01-01", false, ""},
		{"leap day", "2024-02-29", "2024-03-01", false, ""},
		{"not a leap year", "2023-02-29", "2023-03-01", true, "start_date"},
		{"wrong layout", "01/01/2024", "2024-01-07", true, "start_date"},
		{"missing zero padding", "2024-01-01", "2024-1-7", true, "end_date"},
		{"empty end", "2024-01-01", "", true, "end_date"},
		{"start after end", "2024-02-01", "2024-01-31", true, "start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateRange(tt.start, tt.end)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
}
