package leagues

import (
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Weekday
		ok   bool
	}{
		{"Saturday", time.Saturday, true},
		{" sun ", time.Sunday, true},
		{"WED", time.Wednesday, true},
		{"someday", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseWeekday(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseWeekday(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestScheduleRequestOptions(t *testing.T) {
	start := "2024-09-01"
	req := scheduleRequest{
		StartDate:    &start,
		Weekdays:     []string{"sat", "Sunday"},
		KickoffTimes: []string{"15:00"},
		VenueIDs:     []int64{3},
	}
	opts, err := req.options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if !opts.StartDate.Equal(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %s", opts.StartDate)
	}
	if !opts.EndDate.IsZero() {
		t.Fatalf("end should default to zero, got %s", opts.EndDate)
	}
	if len(opts.Weekdays) != 2 || opts.Weekdays[0] != time.Saturday {
		t.Fatalf("weekdays = %v", opts.Weekdays)
	}

	req.VenueIDs = nil
	if _, err := req.options(); err == nil {
		t.Fatal("expected error without venues")
	}

	req.VenueIDs = []int64{3}
	req.Weekdays = []string{"caturday"}
	if _, err := req.options(); err == nil {
		t.Fatal("expected error for unknown weekday")
	}
}
