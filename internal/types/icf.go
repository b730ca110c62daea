package types

import (
	"regexp"
	"strings"
)

// Category is one axis of the staff feedback chart.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	// ICFPrefixes is empty for the two record-level categories.
	ICFPrefixes []string `json:"icf_prefixes,omitempty"`
}

// IsICF reports whether the category is measured from ICF codes.
func (c Category) IsICF() bool {
	return len(c.ICFPrefixes) > 0
}

// Matches reports whether a normalized ICF code falls into the category.
func (c Category) Matches(code string) bool {
	for _, p := range c.ICFPrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

const (
	CategorySpeech        = "speech-rate"
	CategoryPersonal      = "personal"
	CategoryBADL          = "BADL"
	CategoryIADL          = "IADL"
	CategoryCommunication = "communication"
	CategoryEnvironment   = "environment"
)

// Categories is the fixed, ordered set of feedback categories.
var Categories = []Category{
	{Key: CategorySpeech, Label: "発話率"},
	{Key: CategoryPersonal, Label: "パーソナル"},
	{Key: CategoryBADL, Label: "BADL", ICFPrefixes: []string{"d5", "d4", "b"}},
	{Key: CategoryIADL, Label: "IADL", ICFPrefixes: []string{"d6", "d2"}},
	{Key: CategoryCommunication, Label: "コミュニケーション", ICFPrefixes: []string{"d3", "d7"}},
	{Key: CategoryEnvironment, Label: "環境", ICFPrefixes: []string{"e"}},
}

// LookupCategory finds a category by key or display label.
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == name || c.Label == name {
			return c, true
		}
	}
	return Category{}, false
}

var icfPattern = regexp.MustCompile(`[bde]\d+`)

// NormalizeICF reduces a raw ICF code to its comparable prefix: "d" codes keep
// the chapter digit ("d4501" -> "d4"), "b" and "e" codes keep the letter only.
func NormalizeICF(raw string) (string, bool) {
	m := icfPattern.FindString(strings.ToLower(raw))
	if m == "" {
		return "", false
	}
	if m[0] == 'd' {
		return m[:2], true
	}
	return m[:1], true
}
