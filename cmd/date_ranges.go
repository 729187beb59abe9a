package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/ga4mcp/internal/report"
	"github.com/teemow/ga4mcp/internal/service"
)

func newDateRangesCmd() *cobra.Command {
	var utc bool

	cmd := &cobra.Command{
		Use:   "date-ranges",
		Short: "Print the suggested date ranges as JSON",
		Long: `Print the same date range suggestions the get_common_date_ranges tool
returns, computed for today. Useful for checking what "last_7_days" or
"last_month" resolve to without starting the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if utc {
				now = now.UTC()
			}
			return writeDateRanges(cmd.OutOrStdout(), now)
		},
	}

	cmd.Flags().BoolVar(&utc, "utc", false, "Compute ranges in UTC instead of the local time zone")
	return cmd
}

func writeDateRanges(w io.Writer, now time.Time) error {
	env := service.DateRangesEnvelope{
		Success:     true,
		DateRanges:  report.CommonDateRanges(now),
		CurrentDate: now.Format(report.DateLayout),
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode date ranges: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
