package instrumentation

import "testing"

func TestGranularityLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"daily", GranularityDaily},
		{"Weekly", GranularityWeekly},
		{" MONTHLY ", GranularityMonthly},
		{"", GranularityNone},
		{"yearMonth", GranularityCustom},
		{"hour", GranularityCustom},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := GranularityLabel(tt.in); got != tt.want {
				t.Errorf("GranularityLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
