package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/fdg312/meal-lens/internal/nutrition"
	"github.com/jung-kurt/gofpdf"
)

const pdfFont = "Helvetica"

// Generator renders summaries as PDF or CSV.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders s in the requested format.
func (g *Generator) Generate(s Summary, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(s)
	case FormatCSV:
		return g.generateCSV(s)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// generatePDF uses the core Helvetica font; text is translated to cp1252.
func (g *Generator) generatePDF(s Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(s.GeneratedAt)
	pdf.SetTitle("Meal Summary", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.Cell(0, 10, "Meal Summary")
	pdf.Ln(8)

	pdf.SetFont(pdfFont, "", 10)
	pdf.Cell(0, 6, "Generated: "+s.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(10)

	// Profile section
	pdf.SetFont(pdfFont, "B", 14)
	pdf.Cell(0, 8, "Profile")
	pdf.Ln(8)

	pdf.SetFont(pdfFont, "", 10)
	for _, row := range profileRows(s) {
		pdf.CellFormat(50, 6, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	a := s.Assessment
	if a.Assessed {
		pdf.SetFont(pdfFont, "B", 14)
		pdf.Cell(0, 8, "Assessment")
		pdf.Ln(8)

		pdf.SetFont(pdfFont, "", 10)
		pdf.Cell(0, 6, "BMI: "+formatBMI(a))
		pdf.Ln(5)
		pdf.Cell(0, 6, "BMI Category: "+a.BMICategory)
		pdf.Ln(5)
		pdf.Cell(0, 6, "Daily Caloric Needs: "+formatCalories(a))
		pdf.Ln(8)

		if len(a.Advice) > 0 {
			pdf.SetFont(pdfFont, "B", 12)
			pdf.Cell(0, 7, "Nutrition Advice")
			pdf.Ln(7)
			pdf.SetFont(pdfFont, "", 10)
			for _, line := range a.Advice {
				pdf.MultiCell(0, 5, tr("- "+line), "", "L", false)
			}
			pdf.Ln(4)
		}
	} else if a.Hint != nil {
		pdf.SetFont(pdfFont, "B", 14)
		pdf.Cell(0, 8, tr(a.Hint.Title))
		pdf.Ln(8)
		pdf.SetFont(pdfFont, "", 10)
		for _, line := range a.Hint.Lines {
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
		pdf.Ln(4)
	}

	if meal := strings.TrimSpace(s.MealAnalysis); meal != "" {
		pdf.SetFont(pdfFont, "B", 14)
		pdf.Cell(0, 8, "Meal Analysis")
		pdf.Ln(8)
		pdf.SetFont(pdfFont, "", 10)
		pdf.MultiCell(0, 5, tr(meal), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// generateCSV writes one field/value pair per row.
func (g *Generator) generateCSV(s Summary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"field", "value"}); err != nil {
		return nil, err
	}

	rows := [][]string{{"generated_at", s.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")}}
	rows = append(rows, profileRows(s)...)

	a := s.Assessment
	rows = append(rows, []string{"assessed", fmt.Sprintf("%t", a.Assessed)})
	if a.Assessed {
		rows = append(rows,
			[]string{"bmi", formatBMI(a)},
			[]string{"bmi_category", a.BMICategory},
			[]string{"daily_calories", formatCalories(a)},
		)
		for _, line := range a.Advice {
			rows = append(rows, []string{"advice", line})
		}
	}
	if meal := strings.TrimSpace(s.MealAnalysis); meal != "" {
		rows = append(rows, []string{"meal_analysis", meal})
	}

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func profileRows(s Summary) [][]string {
	r := s.Request
	return [][]string{
		{"Weight (kg)", fmt.Sprintf("%.1f", r.WeightKg)},
		{"Height (m)", fmt.Sprintf("%.2f", r.HeightM)},
		{"Age", fmt.Sprintf("%d", r.Age)},
		{"Gender", orDash(r.Gender)},
		{"Activity Level", orDash(r.ActivityLevel)},
		{"Health Goal", orDash(r.HealthGoal)},
		{"Dietary Preference", orDash(r.DietaryPreference)},
	}
}

func formatBMI(a nutrition.Assessment) string {
	if a.BMI == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *a.BMI)
}

func formatCalories(a nutrition.Assessment) string {
	if a.DailyCalories == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f calories", *a.DailyCalories)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
