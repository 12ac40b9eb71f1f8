package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/meal-lens/internal/nutrition"
)

// Service builds downloadable summaries. Nothing is stored.
type Service struct {
	assessor  *nutrition.Service
	generator *Generator
	now       func() time.Time
}

func NewService(assessor *nutrition.Service) *Service {
	return &Service{
		assessor:  assessor,
		generator: NewGenerator(),
		now:       time.Now,
	}
}

// Document is a rendered summary ready to be served.
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
}

// CreateSummary assesses the request and renders it together with the
// optional meal analysis.
func (s *Service) CreateSummary(req SummaryRequest) (Document, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		return Document{}, ErrInvalidFormat
	}

	assessment, err := s.assessor.Assess(req.AssessmentRequest)
	if err != nil {
		if errors.Is(err, nutrition.ErrInvalidRequest) {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return Document{}, err
	}

	now := s.now()
	data, err := s.generator.Generate(Summary{
		GeneratedAt:  now,
		Request:      req.AssessmentRequest,
		Assessment:   assessment,
		MealAnalysis: req.MealAnalysis,
	}, format)
	if err != nil {
		return Document{}, fmt.Errorf("failed to generate report: %w", err)
	}

	return Document{
		Data:        data,
		ContentType: contentTypeFor(format),
		Filename:    fmt.Sprintf("meal_summary_%s.%s", now.UTC().Format("20060102_150405"), format),
	}, nil
}

func contentTypeFor(format string) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/pdf"
}
