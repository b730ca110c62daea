package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// NotApplicable is the placeholder the record pipeline writes for "answered as none".
const NotApplicable = "該当なし"

// Field names written by the CSV→JSON pipeline. English aliases are accepted too.
const (
	FieldRecordTime      = "記録時間"
	FieldFloorName       = "フロア名"
	FieldAuthorSurname   = "登録者苗字"
	FieldAuthorGiven     = "登録者名前"
	FieldResidentSurname = "利用者苗字"
	FieldResidentGiven   = "利用者名前"
	FieldSpeech          = "speech"
)

var fieldAliases = map[string]string{
	FieldRecordTime:      "record_time",
	FieldFloorName:       "floor_name",
	FieldAuthorSurname:   "author_surname",
	FieldAuthorGiven:     "author_given_name",
	FieldResidentSurname: "resident_surname",
	FieldResidentGiven:   "resident_given_name",
}

const (
	prefixICF     = "icf"
	prefixEmotion = "emotion"
	prefixPerson  = "person"
)

// Record is one logged care-activity observation as decoded from a monthly
// analysis file. The icf*/emotion*/person* families are open-ended, so the
// record stays a generic object.
type Record map[string]any

// Value returns the raw value of a known field, falling back to its alias.
func (r Record) Value(field string) (any, bool) {
	if v, ok := r[field]; ok && v != nil {
		return v, true
	}
	if alias, ok := fieldAliases[field]; ok {
		if v, ok := r[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Text returns a field rendered as a string, "" when absent.
func (r Record) Text(field string) string {
	v, ok := r.Value(field)
	if !ok {
		return ""
	}
	return stringify(v)
}

// Floor is the floor label the record belongs to.
func (r Record) Floor() string {
	return r.Text(FieldFloorName)
}

// Author is the recording staff member's display name: surname + given name, trimmed.
func (r Record) Author() string {
	return strings.TrimSpace(r.Text(FieldAuthorSurname) + r.Text(FieldAuthorGiven))
}

// Resident is the subject resident's display name, built like Author.
func (r Record) Resident() string {
	return strings.TrimSpace(r.Text(FieldResidentSurname) + r.Text(FieldResidentGiven))
}

// HasSpeech reports whether the speech field holds an actual utterance.
func (r Record) HasSpeech() bool {
	return Present(r.Text(FieldSpeech))
}

// HasPersonal reports whether the first person* field holds a note.
func (r Record) HasPersonal() bool {
	keys := r.keysWithPrefix(prefixPerson)
	if len(keys) == 0 {
		return false
	}
	return Present(stringify(r[keys[0]]))
}

// ICFValues returns the raw non-empty icf* values in key order.
func (r Record) ICFValues() []string {
	return r.prefixedValues(prefixICF, false)
}

// NormalizedICF returns the comparable prefixes of every icf* value that
// matches the ICF code pattern.
func (r Record) NormalizedICF() []string {
	var out []string
	for _, k := range r.keysWithPrefix(prefixICF) {
		s, ok := r[k].(string)
		if !ok {
			continue
		}
		if code, ok := NormalizeICF(s); ok {
			out = append(out, code)
		}
	}
	return out
}

// Emotions returns the non-empty emotion* labels in key order.
func (r Record) Emotions() []string {
	return r.prefixedValues(prefixEmotion, false)
}

// PersonalNotes returns the person* values that are present, in key order.
func (r Record) PersonalNotes() []string {
	return r.prefixedValues(prefixPerson, true)
}

func (r Record) prefixedValues(prefix string, skipSentinel bool) []string {
	var out []string
	for _, k := range r.keysWithPrefix(prefix) {
		s := stringify(r[k])
		if s == "" || (skipSentinel && s == NotApplicable) {
			continue
		}
		out = append(out, s)
	}
	return out
}

var keySuffix = regexp.MustCompile(`(\d+)$`)

// keysWithPrefix lists keys starting with prefix in natural order (icf2 before icf10).
func (r Record) keysWithPrefix(prefix string) []string {
	var keys []string
	for k := range r {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := keyNumber(keys[i])
		nj, jok := keyNumber(keys[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

func keyNumber(k string) (int, bool) {
	m := keySuffix.FindString(k)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Present reports whether a text value is non-empty and not the sentinel.
func Present(s string) bool {
	return s != "" && s != NotApplicable
}

// NormalizeName trims a display name and strips every whitespace rune.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), "")
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
