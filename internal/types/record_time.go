package types

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// UnknownTime is shown in place of a record time that cannot be parsed.
const UnknownTime = "日付不明"

const (
	displayLayout     = "2006/1/2 15:04:05"
	displayLongLayout = "2006年1月2日 15:04"
	msPerDay          = 24 * 60 * 60 * 1000
)

// Location is the facility time zone used for serial dates, offset-less
// strings and day boundaries. Set once at startup.
var Location = time.Local

var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
}

// SerialToTime converts a spreadsheet serial day count to a time in Location.
// The wall clock is computed first so the calendar day never drifts with
// historical zone offsets.
func SerialToTime(serial float64) time.Time {
	ms := math.Round(serial * msPerDay)
	wall := serialEpoch.Add(time.Duration(ms) * time.Millisecond)
	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), Location)
}

// ParseRecordTime normalizes a record_time value, accepting a serial number
// or an ISO-ish string. ok is false for anything unparseable.
func ParseRecordTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case float64:
		return SerialToTime(t), true
	case int:
		return SerialToTime(float64(t)), true
	case int64:
		return SerialToTime(float64(t)), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return SerialToTime(f), true
	case string:
		return parseTimeString(t)
	}
	return time.Time{}, false
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Time returns the normalized record time.
func (r Record) Time() (time.Time, bool) {
	v, ok := r.Value(FieldRecordTime)
	if !ok {
		return time.Time{}, false
	}
	return ParseRecordTime(v)
}

// DisplayTime renders the record time for lists, or UnknownTime.
func (r Record) DisplayTime() string {
	t, ok := r.Time()
	if !ok {
		return UnknownTime
	}
	return t.In(Location).Format(displayLayout)
}

// DisplayTimeLong is the monthly resident view rendering.
func (r Record) DisplayTimeLong() string {
	t, ok := r.Time()
	if !ok {
		return UnknownTime
	}
	return t.In(Location).Format(displayLongLayout)
}

// DayRange expands a date range to whole local days: midnight of from's day
// through 23:59:59.999 of to's day (from's day when to is zero).
func DayRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = from
	}
	from = from.In(Location)
	to = to.In(Location)
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, Location)
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(999*time.Millisecond), Location)
	return start, end
}
