package types

import "time"

// --------------------------------------------
// Roster entities (owned by the relational store)
// --------------------------------------------

type CarePlan struct {
	Plan     string   `json:"plan"`
	ICFCodes []string `json:"icf_codes"`
}

type Resident struct {
	Name        string     `json:"name"`
	Floor       string     `json:"floor,omitempty"`
	CareplanICF []CarePlan `json:"careplan_icf"`
}

// PlanICFSet is the union of raw ICF codes referenced by the resident's care plans.
func (r Resident) PlanICFSet() map[string]struct{} {
	set := map[string]struct{}{}
	for _, p := range r.CareplanICF {
		for _, c := range p.ICFCodes {
			set[c] = struct{}{}
		}
	}
	return set
}

type Staff struct {
	Name  string `json:"name"`
	Floor string `json:"floor"`
}

// --------------------------------------------
// Query inputs
// --------------------------------------------

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type FeedbackQuery struct {
	Range DateRange `json:"range"`
	Floor string    `json:"floor"`
	Staff string    `json:"staff"`
}

// --------------------------------------------
// Staff comparison outputs
// --------------------------------------------

// StaffStats holds one staff member's raw category ratios in [0,1].
type StaffStats struct {
	Name   string             `json:"name"`
	Ratios map[string]float64 `json:"ratios"`
}

// CategoryScore is the selected staff member and the floor mean, both
// normalized against the floor maximum (0-100).
type CategoryScore struct {
	Subject    string  `json:"subject"`
	Label      string  `json:"label"`
	Individual float64 `json:"individual"`
	Average    float64 `json:"average"`
}

// FloorShare is one category's share of all floor-wide category counts.
type FloorShare struct {
	Subject    string  `json:"subject"`
	Label      string  `json:"label"`
	Individual float64 `json:"individual"`
	FullMark   int     `json:"fullMark"`
}

type StaffComparison struct {
	Categories []CategoryScore `json:"chartData1"`
	FloorShare []FloorShare    `json:"chartData2"`
}

// --------------------------------------------
// Resident outputs
// --------------------------------------------

type EmotionCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type PersonalRecord struct {
	Time    string `json:"time"`
	Content string `json:"content"`
}

type ResidentRecordInfo struct {
	Name                string           `json:"name"`
	Count               int              `json:"count"`
	EmotionDistribution []EmotionCount   `json:"emotionDistribution"`
	CareplanMatchRate   int              `json:"careplanMatchRate"`
	PersonalRecords     []PersonalRecord `json:"personalRecords"`
}

type ResidentMonth struct {
	Name            string           `json:"name"`
	Floor           string           `json:"floor"`
	YearMonth       string           `json:"year_month"`
	Emotions        []EmotionCount   `json:"emotionData"`
	PersonalRecords []PersonalRecord `json:"personalRecords"`
}

// --------------------------------------------
// Feedback report delivered to the frontend
// --------------------------------------------

const (
	NoDataSelectStaff   = "select-staff"
	NoDataFloorEmpty    = "no-floor-data"
	NoDataStaffAbsent   = "no-staff-records"
	NoDataNoComparisons = "no-comparison"
)

type FeedbackReport struct {
	Query              FeedbackQuery        `json:"query"`
	NoData             string               `json:"no_data,omitempty"`
	Comparison         *StaffComparison     `json:"comparison,omitempty"`
	WeakestCategory    string               `json:"weakest_category,omitempty"`
	CharacterMessage   string               `json:"character_message"`
	TotalStaffRecords  int                  `json:"total_records_for_staff"`
	PlanSuggestions    map[string][]string  `json:"plan_suggestions"`
	ExamplePlan        string               `json:"example_plan,omitempty"`
	ResidentRecordInfo []ResidentRecordInfo `json:"resident_record_info"`
}

// --------------------------------------------
// Catalog
// --------------------------------------------

type AvailableDate struct {
	YearMonth string `json:"year_month"`
	Floor     string `json:"floor"`
}

// --------------------------------------------
// Staff profile reads
// --------------------------------------------

// ChecklistSubmission is one self-checklist a staff member submitted,
// answers keyed by question id.
type ChecklistSubmission struct {
	Answers     map[string]string `json:"answers"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// GoalEntry is a past personal goal: achieved, or replaced by a newer one.
type GoalEntry struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	GoalText  string    `json:"goal_text"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
