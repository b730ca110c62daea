package aggregator

import (
	"time"

	"care-feedback-go/internal/types"
)

// FilterByDateRange keeps the records whose time falls within the whole days
// from..to. Records with an unknown time are dropped.
func FilterByDateRange(records []types.Record, from, to time.Time) []types.Record {
	start, end := types.DayRange(from, to)
	var out []types.Record
	for _, r := range records {
		t, ok := r.Time()
		if !ok || t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// StaffRecordCount counts the records authored by staffName, ignoring
// whitespace in both names.
func StaffRecordCount(records []types.Record, staffName string) int {
	want := types.NormalizeName(staffName)
	if want == "" {
		return 0
	}
	n := 0
	for _, r := range records {
		if types.NormalizeName(r.Author()) == want {
			n++
		}
	}
	return n
}
