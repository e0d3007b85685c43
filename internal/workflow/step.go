package workflow

// Step is one screen of the intake flow, in order.
type Step int

const (
	StepVitals Step = iota
	StepDictation
	StepRecommendation
	StepPrescription
	StepReceipt
)

// Steps returns every step in flow order.
func Steps() []Step {
	return []Step{StepVitals, StepDictation, StepRecommendation, StepPrescription, StepReceipt}
}

func (s Step) String() string {
	switch s {
	case StepVitals:
		return "vitals"
	case StepDictation:
		return "dictation"
	case StepRecommendation:
		return "recommendation"
	case StepPrescription:
		return "prescription"
	case StepReceipt:
		return "receipt"
	default:
		return "unknown"
	}
}

// Title is the heading shown for the step.
func (s Step) Title() string {
	switch s {
	case StepVitals:
		return "Thông tin cơ bản"
	case StepDictation:
		return "Mô tả triệu chứng"
	case StepRecommendation:
		return "Gợi ý thuốc"
	case StepPrescription:
		return "Đơn thuốc"
	case StepReceipt:
		return "Hóa đơn"
	default:
		return ""
	}
}

func (s Step) first() bool { return s == StepVitals }
func (s Step) last() bool  { return s == StepReceipt }
