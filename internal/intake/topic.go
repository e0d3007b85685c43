package intake

import "fmt"

// Topic is one of the dictation subjects, in the order they are asked.
type Topic int

const (
	TopicSymptoms Topic = iota
	TopicAllergies
	TopicUnderlyingConditions
	TopicCurrentMedications
)

// Topics returns the dictation topics in capture order.
func Topics() []Topic {
	return []Topic{
		TopicSymptoms,
		TopicAllergies,
		TopicUnderlyingConditions,
		TopicCurrentMedications,
	}
}

// String returns the wire/help key of the topic.
func (t Topic) String() string {
	switch t {
	case TopicSymptoms:
		return "symptoms"
	case TopicAllergies:
		return "allergies"
	case TopicUnderlyingConditions:
		return "underlying_conditions"
	case TopicCurrentMedications:
		return "current_medications"
	default:
		return fmt.Sprintf("topic(%d)", int(t))
	}
}

// Title returns the label shown to the patient.
func (t Topic) Title() string {
	switch t {
	case TopicSymptoms:
		return "Triệu chứng"
	case TopicAllergies:
		return "Dị ứng"
	case TopicUnderlyingConditions:
		return "Bệnh nền"
	case TopicCurrentMedications:
		return "Thuốc đang dùng"
	default:
		return t.String()
	}
}

// Prompt returns the spoken/displayed question for the topic.
func (t Topic) Prompt() string {
	switch t {
	case TopicSymptoms:
		return "Vui lòng mô tả các triệu chứng bạn đang gặp phải. Ví dụ: đau đầu, sổ mũi, ho, sốt..."
	case TopicAllergies:
		return "Bạn có bị dị ứng với loại thuốc nào không? Nếu không có, hãy nói 'không có'"
	case TopicUnderlyingConditions:
		return "Bạn có bệnh nền nào không? Ví dụ: cao huyết áp, tiểu đường... Nếu không có, hãy nói 'không có'"
	case TopicCurrentMedications:
		return "Bạn hiện đang dùng thuốc gì không? Nếu không có, hãy nói 'không có'"
	default:
		return ""
	}
}

// Required reports whether the topic must be answered before moving on.
func (t Topic) Required() bool {
	return t == TopicSymptoms
}
