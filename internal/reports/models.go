package reports

import (
	"errors"
	"time"

	"github.com/fdg312/meal-lens/internal/nutrition"
)

var (
	ErrInvalidFormat  = errors.New("invalid format")
	ErrInvalidRequest = errors.New("invalid request")
)

// Constants for validation
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// SummaryRequest is the request body for POST /v1/reports/summary.
type SummaryRequest struct {
	nutrition.AssessmentRequest
	MealAnalysis string `json:"meal_analysis"`
	Format       string `json:"format"` // "pdf" (default) or "csv"
}

// Summary is everything printed on one report.
type Summary struct {
	GeneratedAt  time.Time
	Request      nutrition.AssessmentRequest
	Assessment   nutrition.Assessment
	MealAnalysis string
}
