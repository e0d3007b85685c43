package intake

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field names used in ValidationError.
const (
	FieldGender   = "gender"
	FieldAge      = "age"
	FieldHeight   = "height"
	FieldWeight   = "weight"
	FieldSymptoms = "symptoms"
)

// ValidationError reports a field that violates its domain. Message is the
// text shown to the patient next to the field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateGender rejects anything but an explicit male or female choice.
func ValidateGender(gender Gender) error {
	if gender != GenderMale && gender != GenderFemale {
		return &ValidationError{Field: FieldGender, Message: "Vui lòng chọn giới tính"}
	}
	return nil
}

// ValidateVitals checks every vitals field in form order and returns the
// first violation.
func ValidateVitals(gender Gender, age, heightCm, weightKg int) error {
	if err := ValidateGender(gender); err != nil {
		return err
	}
	if age < MinAge || age > MaxAge {
		return &ValidationError{Field: FieldAge, Message: fmt.Sprintf("Tuổi phải từ %d đến %d", MinAge, MaxAge)}
	}
	if heightCm < MinHeight || heightCm > MaxHeight {
		return &ValidationError{Field: FieldHeight, Message: fmt.Sprintf("Chiều cao phải từ %dcm đến %dcm", MinHeight, MaxHeight)}
	}
	if weightKg < MinWeight || weightKg > MaxWeight {
		return &ValidationError{Field: FieldWeight, Message: fmt.Sprintf("Cân nặng phải từ %dkg đến %dkg", MinWeight, MaxWeight)}
	}
	return nil
}

// ValidateSymptoms rejects empty symptom text.
func ValidateSymptoms(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: FieldSymptoms, Message: "Vui lòng mô tả triệu chứng của bạn trước khi tiếp tục."}
	}
	return nil
}

// ParseBounded parses a form value and checks it against [min, max]. It is
// shared by the vitals form validators.
func ParseBounded(field, s string, min, max int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: field, Message: "Vui lòng nhập giá trị"}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: field, Message: "Giá trị phải là số nguyên"}
	}
	if v < min || v > max {
		return 0, &ValidationError{Field: field, Message: fmt.Sprintf("Giá trị phải từ %d đến %d", min, max)}
	}
	return v, nil
}
