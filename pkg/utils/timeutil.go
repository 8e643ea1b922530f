package utils

import (
	"math"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// DaysSince returns the number of whole days elapsed between t and now,
// rounded toward negative infinity. A t in the future yields a negative count.
func DaysSince(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// WithinDays reports whether t is no older than days relative to now.
func WithinDays(t, now time.Time, days int) bool {
	return !t.Before(now.AddDate(0, 0, -days))
}

// FormatDateTimeIST formats a time as "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05") + " IST"
}

// FileStamp formats a time for use in output file names.
func FileStamp(t time.Time) string {
	return t.In(IST).Format("20060102_150405")
}
