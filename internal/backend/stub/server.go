// Package stub serves a canned rendition of the analysis/prescription
// service so the kiosk can be demonstrated and tested without the real
// backend.
package stub

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/mrsinham/medkiosk/internal/backend"
)

const disclaimer = "Thông tin chỉ mang tính tham khảo, không thay thế chẩn đoán của bác sĩ."

// Server holds the stub's mutable counters.
type Server struct {
	mu             sync.Mutex
	nextPrescripID int64
	nextPatientID  int64
}

// New builds the echo instance serving /api/v1.
func New(logger zerolog.Logger) *echo.Echo {
	s := &Server{nextPrescripID: 1000, nextPatientID: 1}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))

	g := e.Group("/api/v1")
	g.POST("/analyze_input", s.analyze)
	g.POST("/confirm_prescription", s.confirm)
	g.GET("/medications", s.medications)
	g.POST("/patients", s.createPatient)

	return e
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")

			return err
		}
	}
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func (s *Server) analyze(c echo.Context) error {
	var req backend.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Dữ liệu không hợp lệ")
	}
	if strings.TrimSpace(req.Symptoms) == "" {
		return detail(c, http.StatusUnprocessableEntity, "Thiếu thông tin triệu chứng")
	}

	return c.JSON(http.StatusOK, Recommend(req))
}

// Recommend derives a recommendation from the symptom keywords, skipping
// medicines whose allergy tags match a declared allergy.
func Recommend(req backend.AnalyzeRequest) backend.Recommendation {
	words := " " + strings.Join(strings.FieldsFunc(strings.ToLower(req.Symptoms), func(r rune) bool {
		return r == ',' || r == '.' || r == ';' || r == ' '
	}), " ") + " "

	var mains []backend.MainMedicine
	seen := map[string]bool{}
	for _, rule := range symptomRules {
		if !strings.Contains(words, " "+rule.keyword+" ") || seen[rule.medicine] {
			continue
		}
		med, ok := findMedication(rule.medicine)
		if !ok || allergic(med, req.Allergies) {
			continue
		}
		seen[rule.medicine] = true
		mains = append(mains, backend.MainMedicine{Name: med.Name, QuantityPerDose: 1, Reason: rule.reason})
	}

	rec := backend.Recommendation{
		MainMedicines: mains,
		SupportingMedicines: []backend.SupportingMedicine{
			{Name: "Vitamin C 500mg", QuantityPerDay: 1, Reason: "Tăng sức đề kháng"},
			{Name: "Khẩu trang y tế", Quantity: 5, Reason: "Hạn chế lây nhiễm"},
		},
		DosesPerDay:             backend.DefaultDosesPerDay,
		TotalDays:               backend.DefaultTotalDays,
		RecommendationReasoning: "Gợi ý dựa trên các triệu chứng: " + strings.TrimSpace(req.Symptoms),
		Disclaimer:              disclaimer,
		Diagnosis:               "Triệu chứng cảm thông thường",
		SeverityLevel:           "nhẹ",
		SideEffectsWarning:      "Có thể gây buồn ngủ nhẹ.",
		MedicalAdvice:           "Uống nhiều nước và nghỉ ngơi.",
	}
	if len(mains) == 0 {
		rec.Diagnosis = "Không xác định"
		rec.SeverityLevel = "vừa"
		rec.ShouldSeeDoctor = true
		rec.MedicalAdvice = "Vui lòng gặp bác sĩ để được thăm khám."
	}
	return rec
}

func allergic(m backend.Medication, allergies []string) bool {
	for _, a := range allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if strings.Contains(strings.ToLower(m.ActiveIngredient), a) {
			return true
		}
		for _, tag := range m.AllergyTags {
			if a == tag {
				return true
			}
		}
	}
	return false
}

func (s *Server) confirm(c echo.Context) error {
	var req backend.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Dữ liệu không hợp lệ")
	}

	p, err := Price(req)
	if err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	p.PrescriptionID = s.nextPrescripID
	s.nextPrescripID++
	s.mu.Unlock()

	return c.JSON(http.StatusOK, p)
}

type unknownMedicineError string

func (e unknownMedicineError) Error() string {
	return "Không tìm thấy thuốc: " + string(e)
}

// Price computes the priced prescription for a confirm request. Main
// medicines are dispensed for the whole course; supporting items in the
// quantity requested.
func Price(req backend.ConfirmRequest) (backend.Prescription, error) {
	p := backend.Prescription{
		Diagnosis:               req.Diagnosis,
		SideEffectsWarning:      req.SideEffectsWarning,
		MedicalAdvice:           req.MedicalAdvice,
		RecommendationReasoning: req.AIRecommendation,
		SeverityLevel:           req.SeverityLevel,
		EmergencyStatus:         req.EmergencyStatus,
		ShouldSeeDoctor:         req.ShouldSeeDoctor,
		Disclaimer:              req.Disclaimer,
		Items:                   []backend.PrescriptionItem{},
	}

	var usage []string
	for _, m := range req.MainMedicines {
		med, ok := findMedication(m.Name)
		if !ok {
			return backend.Prescription{}, unknownMedicineError(m.Name)
		}
		qty := m.QuantityPerDose * req.DosesPerDay * req.TotalDays
		item := backend.PrescriptionItem{Name: med.Name, TotalQuantity: qty, Price: int64(qty) * med.UnitPrice}
		p.Items = append(p.Items, item)
		p.TotalPrice += item.Price
		usage = append(usage, m.Name+": "+strconv.Itoa(m.QuantityPerDose)+" "+med.UnitType+"/lần, "+strconv.Itoa(req.DosesPerDay)+" lần/ngày")
	}
	for _, m := range req.SupportingMedicines {
		med, ok := findMedication(m.Name)
		if !ok {
			return backend.Prescription{}, unknownMedicineError(m.Name)
		}
		item := backend.PrescriptionItem{Name: med.Name, TotalQuantity: m.QuantityTotal, Price: int64(m.QuantityTotal) * med.UnitPrice}
		p.Items = append(p.Items, item)
		p.TotalPrice += item.Price
	}
	p.UsageInstructions = strings.Join(usage, "; ")

	return p, nil
}

func (s *Server) medications(c echo.Context) error {
	return c.JSON(http.StatusOK, Catalog)
}

func (s *Server) createPatient(c echo.Context) error {
	var req backend.PatientRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Dữ liệu không hợp lệ")
	}

	s.mu.Lock()
	id := s.nextPatientID
	s.nextPatientID++
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, backend.Patient{
		ID:     id,
		Gender: req.Gender,
		Age:    req.Age,
		Weight: req.Weight,
		Height: req.Height,
	})
}
