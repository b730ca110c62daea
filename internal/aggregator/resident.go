package aggregator

import (
	"sort"
	"strings"

	"care-feedback-go/internal/types"
)

// ResidentDetail builds one entry per roster resident from the records that
// staffName wrote about them, most recorded residents first.
//
// The care plan match is an exact comparison of raw ICF strings, unlike the
// prefix matching used by Compare: "d4501" does not match a plan code "d450".
func ResidentDetail(records []types.Record, floor, staffName string, residents []types.Resident) []types.ResidentRecordInfo {
	staff := types.NormalizeName(staffName)

	out := make([]types.ResidentRecordInfo, 0, len(residents))
	for _, res := range residents {
		name := types.NormalizeName(res.Name)
		var matched []types.Record
		for _, r := range records {
			if types.NormalizeName(r.Resident()) == name && types.NormalizeName(r.Author()) == staff {
				matched = append(matched, r)
			}
		}

		out = append(out, types.ResidentRecordInfo{
			Name:                res.Name,
			Count:               len(matched),
			EmotionDistribution: emotionDistribution(matched),
			CareplanMatchRate:   careplanMatchRate(matched, res.PlanICFSet()),
			PersonalRecords:     personalRecords(matched, types.Record.DisplayTime),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func careplanMatchRate(records []types.Record, plan map[string]struct{}) int {
	if len(records) == 0 || len(plan) == 0 {
		return 0
	}
	hits := 0
	for _, r := range records {
		for _, code := range r.ICFValues() {
			if _, ok := plan[code]; ok {
				hits++
				break
			}
		}
	}
	return hits * 100 / len(records)
}

func emotionDistribution(records []types.Record) []types.EmotionCount {
	index := map[string]int{}
	out := []types.EmotionCount{}
	for _, r := range records {
		for _, label := range r.Emotions() {
			i, ok := index[label]
			if !ok {
				i = len(out)
				index[label] = i
				out = append(out, types.EmotionCount{Name: label})
			}
			out[i].Value++
		}
	}
	return out
}

func personalRecords(records []types.Record, display func(types.Record) string) []types.PersonalRecord {
	out := []types.PersonalRecord{}
	for _, r := range records {
		content := strings.Join(r.PersonalNotes(), " ")
		if content == "" {
			continue
		}
		out = append(out, types.PersonalRecord{Time: display(r), Content: content})
	}
	return out
}
