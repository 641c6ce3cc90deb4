package localday

import (
	"testing"
	"time"
)

func TestWindow(t *testing.T) {
	day := Date(2024, time.January, 15)

	start, end := Window(day)

	wantStart := time.Date(2024, time.January, 14, 15, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.January, 15, 14, 59, 59, 0, time.UTC)

	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestSameDay(t *testing.T) {
	day := Date(2024, time.January, 15)

	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{
			// +9h lands exactly on local midnight of the 15th
			name: "utc evening before maps to local day",
			ts:   time.Date(2024, time.January, 14, 15, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "last local second",
			ts:   time.Date(2024, time.January, 15, 14, 59, 59, 0, time.UTC),
			want: true,
		},
		{
			name: "first second of next local day",
			ts:   time.Date(2024, time.January, 15, 15, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "one second before local midnight",
			ts:   time.Date(2024, time.January, 14, 14, 59, 59, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameDay(tt.ts, day); got != tt.want {
				t.Errorf("SameDay(%v, %v) = %v, want %v", tt.ts, day, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	day, err := Parse("2024-03-01")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !day.Equal(Date(2024, time.March, 1)) {
		t.Errorf("Parse = %v, want JST midnight 2024-03-01", day)
	}
	if _, err := Parse("01/03/2024"); err == nil {
		t.Error("expected error for non ISO date")
	}
}

func TestYesterdayAcrossMonthBoundary(t *testing.T) {
	// 2024-03-01 08:00 JST is 2024-02-29 23:00 UTC; "yesterday" must follow
	// the local calendar, not the UTC one.
	now := time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC)
	got := Yesterday(now)
	want := Date(2024, time.February, 29)
	if !got.Equal(want) {
		t.Errorf("Yesterday = %v, want %v", got, want)
	}
}
