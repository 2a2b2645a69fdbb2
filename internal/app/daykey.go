package app

import (
	"fmt"
	"time"
)

// DayKeyFunc maps an instant to the calendar day it is scored under.
type DayKeyFunc func(time.Time) string

// DefaultDayOffset is the fixed offset (UTC+8) that defines a scoring day.
const DefaultDayOffset = 8 * time.Hour

// FixedOffsetDayKey returns YYYY-MM-DD dates in a fixed UTC offset, regardless
// of the caller's local time.
func FixedOffsetDayKey(offset time.Duration) DayKeyFunc {
	hours := int(offset / time.Hour)
	zone := time.FixedZone(fmt.Sprintf("UTC%+d", hours), int(offset/time.Second))
	return func(t time.Time) string {
		return t.In(zone).Format("2006-01-02")
	}
}
