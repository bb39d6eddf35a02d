package core

import "time"

const (
	stampLayout      = "2006-01-02 15:04:05-07:00"
	stampMicroLayout = "2006-01-02 15:04:05.000000-07:00"
)

// FormatStamp renders t the way exported files carry timestamps: six
// fractional digits, or none when the microseconds are zero.
func FormatStamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(stampLayout)
	}
	return t.Format(stampMicroLayout)
}
