package aggregator

import (
	"math"

	"care-feedback-go/internal/types"
)

// tally holds raw per-category counts for one group of records.
type tally struct {
	records int
	icf     int
	counts  map[string]int
}

func countRecords(records []types.Record) tally {
	t := tally{records: len(records), counts: map[string]int{}}
	for _, r := range records {
		if r.HasSpeech() {
			t.counts[types.CategorySpeech]++
		}
		if r.HasPersonal() {
			t.counts[types.CategoryPersonal]++
		}
		for _, code := range r.NormalizedICF() {
			t.icf++
			for _, c := range types.Categories {
				if c.Matches(code) {
					t.counts[c.Key]++
				}
			}
		}
	}
	return t
}

func (t tally) ratios() map[string]float64 {
	recordSum := guard(t.records)
	icfSum := guard(t.icf)
	out := make(map[string]float64, len(types.Categories))
	for _, c := range types.Categories {
		if c.IsICF() {
			out[c.Key] = float64(t.counts[c.Key]) / icfSum
		} else {
			out[c.Key] = float64(t.counts[c.Key]) / recordSum
		}
	}
	return out
}

func guard(n int) float64 {
	if n == 0 {
		return 1
	}
	return float64(n)
}

// Round1 rounds half-up to one decimal place.
func Round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// OnFloor keeps the records belonging to floor.
func OnFloor(records []types.Record, floor string) []types.Record {
	var out []types.Record
	for _, r := range records {
		if r.Floor() == floor {
			out = append(out, r)
		}
	}
	return out
}

// StaffStats computes the category ratios of every staff member recorded on
// the floor, in first-seen order. Spellings of a name that differ only in
// whitespace share one row, shown under the first spelling seen.
func StaffStats(records []types.Record, floor string) []types.StaffStats {
	byAuthor := map[string][]types.Record{}
	display := map[string]string{}
	var keys []string
	for _, r := range OnFloor(records, floor) {
		key := types.NormalizeName(r.Author())
		if key == "" {
			continue
		}
		if _, seen := byAuthor[key]; !seen {
			keys = append(keys, key)
			display[key] = r.Author()
		}
		byAuthor[key] = append(byAuthor[key], r)
	}

	out := make([]types.StaffStats, 0, len(keys))
	for _, key := range keys {
		out = append(out, types.StaffStats{Name: display[key], Ratios: countRecords(byAuthor[key]).ratios()})
	}
	return out
}

// Compare scores staffName against the other staff on floor. Each category is
// normalized against the floor maximum. nil means no result: nobody recorded on
// the floor, or staffName has no records there.
func Compare(records []types.Record, staffName, floor string) *types.StaffComparison {
	stats := StaffStats(records, floor)
	if len(stats) == 0 {
		return nil
	}

	want := types.NormalizeName(staffName)
	var selected *types.StaffStats
	for i := range stats {
		if types.NormalizeName(stats[i].Name) == want {
			selected = &stats[i]
			break
		}
	}
	if selected == nil {
		return nil
	}

	scores := make([]types.CategoryScore, 0, len(types.Categories))
	for _, c := range types.Categories {
		hi, sum := 0.0, 0.0
		for _, s := range stats {
			v := s.Ratios[c.Key]
			sum += v
			if v > hi {
				hi = v
			}
		}
		mean := sum / float64(len(stats))
		denom := hi
		if denom == 0 {
			denom = 1
		}
		scores = append(scores, types.CategoryScore{
			Subject:    c.Key,
			Label:      c.Label,
			Individual: Round1(selected.Ratios[c.Key] / denom * 100),
			Average:    Round1(mean / denom * 100),
		})
	}

	return &types.StaffComparison{
		Categories: scores,
		FloorShare: FloorShare(records, floor),
	}
}

// FloorShare expresses the floor-wide count of each category as a percentage
// of all category counts on the floor.
func FloorShare(records []types.Record, floor string) []types.FloorShare {
	t := countRecords(OnFloor(records, floor))
	total := 0
	for _, c := range types.Categories {
		total += t.counts[c.Key]
	}
	denom := guard(total)

	out := make([]types.FloorShare, 0, len(types.Categories))
	for _, c := range types.Categories {
		out = append(out, types.FloorShare{
			Subject:    c.Key,
			Label:      c.Label,
			Individual: Round1(float64(t.counts[c.Key]) / denom * 100),
			FullMark:   100,
		})
	}
	return out
}
