package stub

import "github.com/mrsinham/medkiosk/internal/backend"

// Catalog is the stub's inventory. Prices are in VND per unit.
var Catalog = []backend.Medication{
	{
		ID: 1, Name: "Paracetamol 500mg", ActiveIngredient: "Paracetamol", Form: "viên nén",
		UnitType: "viên", UnitPrice: 1500, Stock: 500, SideEffects: "Hiếm gặp: phát ban",
		MaxPerDay: 8, TreatmentClass: "giảm đau, hạ sốt",
		Contraindications: "Suy gan nặng", AllergyTags: []string{"paracetamol"},
	},
	{
		ID: 2, Name: "Ibuprofen 200mg", ActiveIngredient: "Ibuprofen", Form: "viên nén",
		UnitType: "viên", UnitPrice: 2000, Stock: 300, SideEffects: "Đau dạ dày",
		MaxPerDay: 6, TreatmentClass: "giảm đau, kháng viêm",
		Contraindications: "Loét dạ dày", AllergyTags: []string{"ibuprofen", "nsaid", "aspirin"},
	},
	{
		ID: 3, Name: "Dextromethorphan 15mg", ActiveIngredient: "Dextromethorphan", Form: "viên nang",
		UnitType: "viên", UnitPrice: 2500, Stock: 200, SideEffects: "Buồn ngủ",
		MaxPerDay: 4, TreatmentClass: "giảm ho",
		AllergyTags: []string{"dextromethorphan"},
	},
	{
		ID: 4, Name: "Loratadine 10mg", ActiveIngredient: "Loratadine", Form: "viên nén",
		UnitType: "viên", UnitPrice: 3000, Stock: 200, SideEffects: "Khô miệng",
		MaxPerDay: 1, TreatmentClass: "kháng histamin",
		AllergyTags: []string{"loratadine"},
	},
	{
		ID: 5, Name: "Oresol", ActiveIngredient: "Natri clorid, Kali clorid, Glucose", Form: "gói bột",
		UnitType: "gói", UnitPrice: 4000, Stock: 150, MaxPerDay: 4, IsSupporting: true,
		TreatmentClass: "bù nước điện giải",
	},
	{
		ID: 6, Name: "Vitamin C 500mg", ActiveIngredient: "Acid ascorbic", Form: "viên sủi",
		UnitType: "viên", UnitPrice: 3500, Stock: 400, MaxPerDay: 2, IsSupporting: true,
		TreatmentClass: "bổ sung vitamin",
	},
	{
		ID: 7, Name: "Khẩu trang y tế", ActiveIngredient: "-", Form: "khẩu trang",
		UnitType: "cái", UnitPrice: 1000, Stock: 1000, IsSupporting: true,
		TreatmentClass: "phòng lây nhiễm",
	},
}

// symptomRule maps a symptom keyword to the main medicine that treats it.
type symptomRule struct {
	keyword  string
	medicine string
	reason   string
}

var symptomRules = []symptomRule{
	{"đau đầu", "Paracetamol 500mg", "Giảm đau đầu"},
	{"sốt", "Paracetamol 500mg", "Hạ sốt"},
	{"đau họng", "Ibuprofen 200mg", "Giảm đau và kháng viêm họng"},
	{"ho", "Dextromethorphan 15mg", "Giảm ho khan"},
	{"sổ mũi", "Loratadine 10mg", "Giảm sổ mũi, hắt hơi"},
	{"headache", "Paracetamol 500mg", "Pain relief"},
	{"fever", "Paracetamol 500mg", "Fever reduction"},
	{"cough", "Dextromethorphan 15mg", "Cough relief"},
}

func findMedication(name string) (backend.Medication, bool) {
	for _, m := range Catalog {
		if m.Name == name {
			return m, true
		}
	}
	return backend.Medication{}, false
}
