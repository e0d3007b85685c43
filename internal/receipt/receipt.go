// Package receipt renders the purchase receipt shown on the last step and
// saved as a text file.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mrsinham/medkiosk/internal/backend"
	"github.com/mrsinham/medkiosk/internal/intake"
)

const (
	rule  = "===================================="
	thin  = "------------------------------------"
	notAv = "N/A"
)

// VND formats an amount of Vietnamese dong the way vi-VN does: dot
// thousands separator, no decimals, trailing symbol.
func VND(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + humanize.FormatInteger("#.###,", int(amount)) + " ₫"
}

// Date formats t as a long vi-VN date with hours and minutes.
func Date(t time.Time) string {
	return fmt.Sprintf("%d tháng %d, %d lúc %s", t.Day(), int(t.Month()), t.Year(), t.Format("15:04"))
}

// Filename is the name a receipt is saved under.
func Filename(p *backend.Prescription) string {
	if p == nil || p.PrescriptionID == 0 {
		return "don-thuoc-receipt.txt"
	}
	return fmt.Sprintf("don-thuoc-%d.txt", p.PrescriptionID)
}

// Render produces the receipt text. Item prices and the total are printed
// as the service returned them.
func Render(r intake.Record, p *backend.Prescription, issued time.Time) string {
	if p == nil {
		p = &backend.Prescription{}
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(rule)
	line("    MÁY BÁN THUỐC TỰ ĐỘNG AI")
	line(rule)
	line("")
	line("Ngày: %s", Date(issued))
	if p.PrescriptionID != 0 {
		line("Mã đơn: #%d", p.PrescriptionID)
	} else {
		line("Mã đơn: #%s", notAv)
	}

	line("")
	line(thin)
	line("THÔNG TIN KHÁCH HÀNG:")
	line(thin)
	line("Giới tính: %s", r.Gender.Label())
	line("Tuổi: %d", r.Age)
	line("Chiều cao: %d cm", r.HeightCm)
	line("Cân nặng: %d kg", r.WeightKg)

	line("")
	line(thin)
	line("CHẨN ĐOÁN:")
	line(thin)
	line("%s", orNA(p.Diagnosis))
	line("Mức độ: %s", orNA(p.SeverityLevel))

	line("")
	line(thin)
	line("DANH SÁCH THUỐC:")
	line(thin)
	if len(p.Items) == 0 {
		line("Không có thông tin")
	}
	for _, it := range p.Items {
		line("%s x%d - %s", it.Name, it.TotalQuantity, VND(it.Price))
	}

	line("")
	line(thin)
	line("TỔNG TIỀN: %s", VND(p.TotalPrice))
	line(thin)
	line("")
	line("HƯỚNG DẪN SỬ DỤNG:")
	line("%s", orNA(p.UsageInstructions))
	line("")
	line("LƯU Ý: %s", orNA(p.Disclaimer))
	line("")
	line("Cảm ơn quý khách đã sử dụng dịch vụ!")
	line(rule)

	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAv
	}
	return s
}

// Save writes the rendered receipt into dir and returns its path.
func Save(dir string, r intake.Record, p *backend.Prescription, issued time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating receipt directory: %w", err)
	}

	path := filepath.Join(dir, Filename(p))
	if err := os.WriteFile(path, []byte(Render(r, p, issued)), 0644); err != nil {
		return "", fmt.Errorf("writing receipt: %w", err)
	}
	return path, nil
}
