package scoring

import (
	"math"
	"testing"
	"time"
)

func TestTemporalRelevance(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tenDaysAgo := now.AddDate(0, 0, -10)
	tomorrow := now.AddDate(0, 0, 1)

	cases := []struct {
		name      string
		date      *time.Time
		decayRate float64
		want      float64
	}{
		{
			name:      "no_date_no_decay",
			date:      nil,
			decayRate: 0.5,
			want:      1.0,
		},
		{
			name:      "zero_rate_no_decay",
			date:      &tenDaysAgo,
			decayRate: 0,
			want:      1.0,
		},
		{
			name:      "future_date_no_decay",
			date:      &tomorrow,
			decayRate: 0.1,
			want:      1.0,
		},
		{
			name:      "ten_days_at_0.1",
			date:      &tenDaysAgo,
			decayRate: 0.1,
			want:      math.Exp(-1),
		},
		{
			name:      "huge_rate_clamps_to_zero_not_negative",
			date:      &tenDaysAgo,
			decayRate: 1e6,
			want:      0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TemporalRelevance(tc.date, tc.decayRate, now)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("TemporalRelevance=%v, want %v", got, tc.want)
			}
			if got < 0 || got > 1 {
				t.Fatalf("TemporalRelevance=%v out of [0,1]", got)
			}
		})
	}
}
