package aggregator

import "care-feedback-go/internal/types"

// ResidentMonthly summarizes every record about one resident in a month's
// file, across all authors and without a date filter.
func ResidentMonthly(records []types.Record, residentName, floor, yearMonth string) types.ResidentMonth {
	name := types.NormalizeName(residentName)
	var matched []types.Record
	for _, r := range records {
		if types.NormalizeName(r.Resident()) == name {
			matched = append(matched, r)
		}
	}
	return types.ResidentMonth{
		Name:            residentName,
		Floor:           floor,
		YearMonth:       yearMonth,
		Emotions:        emotionDistribution(matched),
		PersonalRecords: personalRecords(matched, types.Record.DisplayTimeLong),
	}
}
