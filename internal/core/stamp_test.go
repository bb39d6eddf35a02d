package core

import (
	"testing"
	"time"
)

func TestFormatStamp(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"WholeSecond", time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC), "2024-03-05 14:30:15+00:00"},
		{"Milliseconds", time.Date(2024, 3, 5, 14, 30, 15, 120*int(time.Millisecond), time.UTC), "2024-03-05 14:30:15.120000+00:00"},
		{"Microseconds", time.Date(2024, 3, 5, 14, 30, 15, 7000, time.UTC), "2024-03-05 14:30:15.000007+00:00"},
		{"SubMicrosecond", time.Date(2024, 3, 5, 14, 30, 15, 500, time.UTC), "2024-03-05 14:30:15+00:00"},
		{"Offset", time.Date(2024, 3, 5, 14, 30, 15, 0, time.FixedZone("", 2*3600)), "2024-03-05 14:30:15+02:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatStamp(tt.at); got != tt.want {
				t.Errorf("FormatStamp() = %q, want %q", got, tt.want)
			}
		})
	}
}
