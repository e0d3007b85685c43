// Package intake holds the patient profile accumulated by the kiosk wizard.
package intake

import (
	"fmt"
	"strings"
)

// Gender is the patient's declared gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender parses a gender value, accepting "male"/"female" and the
// single-letter forms.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "nam":
		return GenderMale, nil
	case "female", "f", "nữ", "nu":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("invalid gender: %q (valid: male, female)", s)
	}
}

// Label is the Vietnamese label shown on screens and receipts.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Nam"
	case GenderFemale:
		return "Nữ"
	default:
		return "N/A"
	}
}

// Vitals domains.
const (
	MinAge    = 1
	MaxAge    = 120
	MinHeight = 50
	MaxHeight = 250
	MinWeight = 10
	MaxWeight = 200
)

// Record is the patient profile for one kiosk session. It is only ever
// extended through MergeVitals and MergeDictationField; Reset on the owning
// controller replaces it with a zero Record.
type Record struct {
	Gender               Gender   `yaml:"gender"`
	Age                  int      `yaml:"age"`
	HeightCm             int      `yaml:"height_cm"`
	WeightKg             int      `yaml:"weight_kg"`
	Symptoms             string   `yaml:"symptoms"`
	Allergies            []string `yaml:"allergies"`
	UnderlyingConditions []string `yaml:"underlying_conditions"`
	CurrentMedications   []string `yaml:"current_medications"`
}

// HasVitals reports whether the vitals step has been merged.
func (r Record) HasVitals() bool {
	return r.Gender != ""
}

// HasSymptoms reports whether non-empty symptoms were captured.
func (r Record) HasSymptoms() bool {
	return strings.TrimSpace(r.Symptoms) != ""
}

// MergeVitals validates and stores the vitals fields. On a validation
// failure the record is left untouched.
func (r *Record) MergeVitals(gender Gender, age, heightCm, weightKg int) error {
	if err := ValidateVitals(gender, age, heightCm, weightKg); err != nil {
		return err
	}
	r.Gender = gender
	r.Age = age
	r.HeightCm = heightCm
	r.WeightKg = weightKg
	return nil
}

// MergeDictationField stores the value derived from raw text for a topic.
// Symptoms are kept verbatim (trimmed); list topics go through
// NormalizeList.
func (r *Record) MergeDictationField(topic Topic, raw string) {
	switch topic {
	case TopicSymptoms:
		r.Symptoms = strings.TrimSpace(raw)
	case TopicAllergies:
		r.Allergies = NormalizeList(raw)
	case TopicUnderlyingConditions:
		r.UnderlyingConditions = NormalizeList(raw)
	case TopicCurrentMedications:
		r.CurrentMedications = NormalizeList(raw)
	}
}

// Text returns the editable text form of a topic, used to pre-fill the
// dictation screen when the patient comes back to it.
func (r Record) Text(topic Topic) string {
	switch topic {
	case TopicSymptoms:
		return r.Symptoms
	case TopicAllergies:
		return strings.Join(r.Allergies, ", ")
	case TopicUnderlyingConditions:
		return strings.Join(r.UnderlyingConditions, ", ")
	case TopicCurrentMedications:
		return strings.Join(r.CurrentMedications, ", ")
	}
	return ""
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := r
	c.Allergies = cloneStrings(r.Allergies)
	c.UnderlyingConditions = cloneStrings(r.UnderlyingConditions)
	c.CurrentMedications = cloneStrings(r.CurrentMedications)
	return c
}

// Equal reports whether two records carry the same data. A nil and an
// empty list compare equal: both mean "none reported".
func (r Record) Equal(o Record) bool {
	return r.Gender == o.Gender &&
		r.Age == o.Age &&
		r.HeightCm == o.HeightCm &&
		r.WeightKg == o.WeightKg &&
		r.Symptoms == o.Symptoms &&
		equalStrings(r.Allergies, o.Allergies) &&
		equalStrings(r.UnderlyingConditions, o.UnderlyingConditions) &&
		equalStrings(r.CurrentMedications, o.CurrentMedications)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
