// Package help holds the guidance shown next to each vitals field and
// dictation topic.
package help

// Entry is the guidance for one form key or topic key.
type Entry struct {
	Label    string
	Ask      string
	Examples []string
	Note     string
	Required bool
}

var entries = map[string]Entry{
	"gender": {
		Label:    "Giới tính",
		Ask:      "Giới tính sinh học của người dùng thuốc.",
		Note:     "Dùng để điều chỉnh liều lượng.",
		Required: true,
	},
	"age": {
		Label:    "Tuổi",
		Ask:      "Tuổi của người dùng thuốc, tính theo năm (1 đến 120).",
		Note:     "Trẻ em dưới 6 tuổi nên được bác sĩ thăm khám.",
		Required: true,
	},
	"height": {
		Label:    "Chiều cao",
		Ask:      "Chiều cao tính bằng cm (50 đến 250).",
		Required: true,
	},
	"weight": {
		Label:    "Cân nặng",
		Ask:      "Cân nặng tính bằng kg (10 đến 200).",
		Note:     "Liều thuốc được tính theo cân nặng.",
		Required: true,
	},
	"symptoms": {
		Label:    "Triệu chứng",
		Ask:      "Các triệu chứng bạn đang gặp phải, càng cụ thể càng tốt.",
		Examples: []string{"đau đầu", "sốt nhẹ từ hôm qua", "ho khan"},
		Required: true,
	},
	"allergies": {
		Label:    "Dị ứng",
		Ask:      "Các loại thuốc hoặc chất bạn bị dị ứng, cách nhau bằng dấu phẩy.",
		Examples: []string{"Penicillin", "Aspirin"},
		Note:     `Nói "không có" nếu không bị dị ứng.`,
	},
	"underlying_conditions": {
		Label:    "Bệnh nền",
		Ask:      "Các bệnh mãn tính bạn đang mắc.",
		Examples: []string{"tiểu đường", "cao huyết áp", "hen suyễn"},
		Note:     `Nói "không có" nếu không có.`,
	},
	"current_medications": {
		Label:    "Thuốc đang dùng",
		Ask:      "Các loại thuốc bạn đang sử dụng, để tránh tương tác thuốc.",
		Examples: []string{"Metformin", "Amlodipin"},
		Note:     `Nói "không có" nếu không dùng thuốc nào.`,
	},
}

// Lookup returns the guidance for key.
func Lookup(key string) (Entry, bool) {
	e, ok := entries[key]
	return e, ok
}
