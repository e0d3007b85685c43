package intake

import (
	"errors"
	"reflect"
	"testing"
)

func TestMergeVitals_Valid(t *testing.T) {
	tests := []struct {
		gender              Gender
		age, height, weight int
	}{
		{GenderFemale, 30, 160, 55},
		{GenderMale, MinAge, MinHeight, MinWeight},
		{GenderMale, MaxAge, MaxHeight, MaxWeight},
	}

	for _, tc := range tests {
		var r Record
		if err := r.MergeVitals(tc.gender, tc.age, tc.height, tc.weight); err != nil {
			t.Errorf("MergeVitals(%v, %d, %d, %d) returned error: %v", tc.gender, tc.age, tc.height, tc.weight, err)
			continue
		}
		if r.Gender != tc.gender || r.Age != tc.age || r.HeightCm != tc.height || r.WeightKg != tc.weight {
			t.Errorf("MergeVitals stored %+v", r)
		}
		if !r.HasVitals() {
			t.Error("HasVitals() should be true after MergeVitals")
		}
	}
}

func TestMergeVitals_OutOfDomain(t *testing.T) {
	tests := []struct {
		name                string
		gender              Gender
		age, height, weight int
		field               string
	}{
		{"missing_gender", "", 30, 160, 55, FieldGender},
		{"unknown_gender", "other", 30, 160, 55, FieldGender},
		{"age_zero", GenderMale, 0, 160, 55, FieldAge},
		{"age_too_high", GenderMale, 121, 160, 55, FieldAge},
		{"height_too_low", GenderMale, 30, 49, 55, FieldHeight},
		{"height_too_high", GenderMale, 30, 251, 55, FieldHeight},
		{"weight_too_low", GenderMale, 30, 160, 9, FieldWeight},
		{"weight_too_high", GenderMale, 30, 160, 201, FieldWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{Symptoms: "ho"}
			before := r.Clone()

			err := r.MergeVitals(tt.gender, tt.age, tt.height, tt.weight)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected *ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, ve.Field)
			}
			if !r.Equal(before) {
				t.Errorf("Record mutated on validation failure: %+v", r)
			}
		})
	}
}

func TestMergeDictationField(t *testing.T) {
	tests := []struct {
		topic Topic
		raw   string
		want  []string
	}{
		{TopicAllergies, "Penicillin, Aspirin", []string{"Penicillin", "Aspirin"}},
		{TopicAllergies, "không có", []string{}},
		{TopicAllergies, "", []string{}},
		{TopicUnderlyingConditions, "  cao huyết áp ,, tiểu đường , ", []string{"cao huyết áp", "tiểu đường"}},
		{TopicCurrentMedications, "Paracetamol, Paracetamol", []string{"Paracetamol", "Paracetamol"}},
		{TopicCurrentMedications, "KHÔNG", []string{}},
		{TopicCurrentMedications, "None", []string{}},
	}

	for _, tc := range tests {
		var r Record
		r.MergeDictationField(tc.topic, tc.raw)

		var got []string
		switch tc.topic {
		case TopicAllergies:
			got = r.Allergies
		case TopicUnderlyingConditions:
			got = r.UnderlyingConditions
		case TopicCurrentMedications:
			got = r.CurrentMedications
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("MergeDictationField(%v, %q) = %#v, want %#v", tc.topic, tc.raw, got, tc.want)
		}
	}
}

func TestMergeDictationField_SymptomsVerbatim(t *testing.T) {
	var r Record
	r.MergeDictationField(TopicSymptoms, "  đau đầu, sốt  ")
	if r.Symptoms != "đau đầu, sốt" {
		t.Errorf("Expected symptoms kept verbatim, got %q", r.Symptoms)
	}
}

func TestRecord_TextRoundTrip(t *testing.T) {
	r := Record{Allergies: []string{"Penicillin", "Aspirin"}}
	if got := r.Text(TopicAllergies); got != "Penicillin, Aspirin" {
		t.Errorf("Text(allergies) = %q", got)
	}
	if got := r.Text(TopicCurrentMedications); got != "" {
		t.Errorf("Text(current_medications) = %q, want empty", got)
	}
}

func TestRecord_QueriesOnReturnedValue(t *testing.T) {
	r := Record{Gender: GenderFemale, Symptoms: " ho ", Allergies: []string{"Aspirin"}}
	snapshot := func() Record { return r }

	// Queries must be callable on a non-addressable copy.
	if !snapshot().HasVitals() {
		t.Error("HasVitals() on a returned record should be true")
	}
	if !r.Clone().HasSymptoms() {
		t.Error("HasSymptoms() on a cloned record should be true")
	}
	if got := snapshot().Text(TopicAllergies); got != "Aspirin" {
		t.Errorf("Text(allergies) on a returned record = %q", got)
	}
	if (Record{}).HasVitals() {
		t.Error("HasVitals() on a zero record should be false")
	}
}

func TestRecord_EqualTreatsNilAsEmpty(t *testing.T) {
	a := Record{Allergies: nil}
	b := Record{Allergies: []string{}}
	if !a.Equal(b) {
		t.Error("nil and empty lists should compare equal")
	}
	b.Allergies = []string{"x"}
	if a.Equal(b) {
		t.Error("different lists should not compare equal")
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		input    string
		expected Gender
	}{
		{"male", GenderMale},
		{"Female", GenderFemale},
		{"M", GenderMale},
		{"nữ", GenderFemale},
	}
	for _, tc := range tests {
		g, err := ParseGender(tc.input)
		if err != nil {
			t.Errorf("ParseGender(%q) returned error: %v", tc.input, err)
		}
		if g != tc.expected {
			t.Errorf("ParseGender(%q) = %v, want %v", tc.input, g, tc.expected)
		}
	}

	if _, err := ParseGender("x"); err == nil {
		t.Error("ParseGender(x) should return error")
	}
}
