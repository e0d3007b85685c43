package backend

import "github.com/mrsinham/medkiosk/internal/intake"

// AnalyzeRequest is the body of POST /api/v1/analyze_input.
type AnalyzeRequest struct {
	Symptoms             string   `json:"symptoms"`
	Gender               string   `json:"gender"`
	Age                  int      `json:"age"`
	Height               int      `json:"height"`
	Weight               int      `json:"weight"`
	Allergies            []string `json:"allergies"`
	UnderlyingConditions []string `json:"underlying_conditions"`
	CurrentMedications   []string `json:"current_medications"`
}

// MainMedicine is a medicine taken per dose.
type MainMedicine struct {
	Name            string `json:"name"`
	QuantityPerDose int    `json:"quantity_per_dose"`
	Reason          string `json:"reason"`
}

// SupportingMedicine is taken per day, or is a one-off item (masks,
// saline) carrying Quantity instead.
type SupportingMedicine struct {
	Name           string `json:"name"`
	QuantityPerDay int    `json:"quantity_per_day,omitempty"`
	Quantity       int    `json:"quantity,omitempty"`
	Reason         string `json:"reason"`
}

// Recommendation is the analysis service's answer. It is stored as
// returned; the kiosk never recomputes any of it.
type Recommendation struct {
	MainMedicines           []MainMedicine       `json:"main_medicines"`
	SupportingMedicines     []SupportingMedicine `json:"supporting_medicines"`
	DosesPerDay             int                  `json:"doses_per_day"`
	TotalDays               int                  `json:"total_days"`
	RecommendationReasoning string               `json:"recommendation_reasoning"`
	Disclaimer              string               `json:"disclaimer"`
	Diagnosis               string               `json:"diagnosis,omitempty"`
	SeverityLevel           string               `json:"severity_level,omitempty"`
	EmergencyStatus         bool                 `json:"emergency_status,omitempty"`
	ShouldSeeDoctor         bool                 `json:"should_see_doctor,omitempty"`
	SideEffectsWarning      string               `json:"side_effects_warning,omitempty"`
	MedicalAdvice           string               `json:"medical_advice,omitempty"`
}

// PatientData is the vitals block of a confirm request.
type PatientData struct {
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
}

// SupportingTotal is a supporting medicine with its total dispensed
// quantity.
type SupportingTotal struct {
	Name          string `json:"name"`
	QuantityTotal int    `json:"quantity_total"`
}

// ConfirmRequest is the body of POST /api/v1/confirm_prescription.
type ConfirmRequest struct {
	PatientData         PatientData       `json:"patient_data"`
	MainMedicines       []MainMedicine    `json:"main_medicines"`
	SupportingMedicines []SupportingTotal `json:"supporting_medicines"`
	DosesPerDay         int               `json:"doses_per_day"`
	TotalDays           int               `json:"total_days"`
	AIRecommendation    string            `json:"ai_recommendation"`
	Diagnosis           string            `json:"diagnosis"`
	SeverityLevel       string            `json:"severity_level"`
	SideEffectsWarning  string            `json:"side_effects_warning"`
	MedicalAdvice       string            `json:"medical_advice"`
	EmergencyStatus     bool              `json:"emergency_status"`
	ShouldSeeDoctor     bool              `json:"should_see_doctor"`
	Disclaimer          string            `json:"disclaimer"`
}

// PrescriptionItem is one priced line of a prescription. Prices are in VND.
type PrescriptionItem struct {
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
	Price         int64  `json:"price"`
}

// Prescription is the finalized, priced order.
type Prescription struct {
	PrescriptionID          int64              `json:"prescription_id"`
	TotalPrice              int64              `json:"total_price"`
	Diagnosis               string             `json:"diagnosis"`
	UsageInstructions       string             `json:"usage_instructions"`
	SideEffectsWarning      string             `json:"side_effects_warning"`
	MedicalAdvice           string             `json:"medical_advice"`
	RecommendationReasoning string             `json:"recommendation_reasoning"`
	SeverityLevel           string             `json:"severity_level"`
	EmergencyStatus         bool               `json:"emergency_status"`
	ShouldSeeDoctor         bool               `json:"should_see_doctor"`
	Disclaimer              string             `json:"disclaimer"`
	Items                   []PrescriptionItem `json:"items"`
}

// Medication is an inventory entry from GET /api/v1/medications.
type Medication struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	ActiveIngredient  string   `json:"active_ingredient"`
	Form              string   `json:"form"`
	UnitType          string   `json:"unit_type"`
	UnitPrice         int64    `json:"unit_price"`
	Stock             int      `json:"stock"`
	SideEffects       string   `json:"side_effects"`
	MaxPerDay         int      `json:"max_per_day"`
	IsSupporting      bool     `json:"is_supporting"`
	TreatmentClass    string   `json:"treatment_class"`
	Contraindications string   `json:"contraindications"`
	AllergyTags       []string `json:"allergy_tags"`
}

// PatientRequest is the body of POST /api/v1/patients.
type PatientRequest struct {
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Weight int    `json:"weight"`
	Height int    `json:"height"`
}

// Patient is the created patient record.
type Patient struct {
	ID     int64  `json:"id"`
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Weight int    `json:"weight"`
	Height int    `json:"height"`
}

// errorBody is the error shape returned by the service.
type errorBody struct {
	Detail string `json:"detail"`
}

// Defaults applied when a recommendation omits its schedule.
const (
	DefaultDosesPerDay = 3
	DefaultTotalDays   = 3
)

// NewAnalyzeRequest builds the analyze body from a complete record.
func NewAnalyzeRequest(r intake.Record) AnalyzeRequest {
	return AnalyzeRequest{
		Symptoms:             r.Symptoms,
		Gender:               string(r.Gender),
		Age:                  r.Age,
		Height:               r.HeightCm,
		Weight:               r.WeightKg,
		Allergies:            nonNil(r.Allergies),
		UnderlyingConditions: nonNil(r.UnderlyingConditions),
		CurrentMedications:   nonNil(r.CurrentMedications),
	}
}

// NewConfirmRequest builds the confirm body from the record and the
// recommendation it produced.
func NewConfirmRequest(r intake.Record, rec *Recommendation) ConfirmRequest {
	req := ConfirmRequest{
		PatientData: PatientData{
			Gender: string(r.Gender),
			Age:    r.Age,
			Height: r.HeightCm,
			Weight: r.WeightKg,
		},
		MainMedicines:       []MainMedicine{},
		SupportingMedicines: []SupportingTotal{},
		DosesPerDay:         DefaultDosesPerDay,
		TotalDays:           DefaultTotalDays,
	}
	if rec == nil {
		return req
	}

	if rec.MainMedicines != nil {
		req.MainMedicines = rec.MainMedicines
	}
	for _, m := range rec.SupportingMedicines {
		req.SupportingMedicines = append(req.SupportingMedicines, SupportingTotal{
			Name:          m.Name,
			QuantityTotal: supportingQuantity(m),
		})
	}
	if rec.DosesPerDay > 0 {
		req.DosesPerDay = rec.DosesPerDay
	}
	if rec.TotalDays > 0 {
		req.TotalDays = rec.TotalDays
	}
	req.AIRecommendation = rec.RecommendationReasoning
	req.Diagnosis = rec.Diagnosis
	req.SeverityLevel = rec.SeverityLevel
	req.SideEffectsWarning = rec.SideEffectsWarning
	req.MedicalAdvice = rec.MedicalAdvice
	req.EmergencyStatus = rec.EmergencyStatus
	req.ShouldSeeDoctor = rec.ShouldSeeDoctor
	req.Disclaimer = rec.Disclaimer
	return req
}

// NewPatientRequest builds the patient registration body.
func NewPatientRequest(r intake.Record) PatientRequest {
	return PatientRequest{
		Gender: string(r.Gender),
		Age:    r.Age,
		Weight: r.WeightKg,
		Height: r.HeightCm,
	}
}

func supportingQuantity(m SupportingMedicine) int {
	switch {
	case m.QuantityPerDay > 0:
		return m.QuantityPerDay
	case m.Quantity > 0:
		return m.Quantity
	default:
		return 1
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
