package nutrition

import (
	"errors"
	"fmt"
)

var ErrInvalidRequest = errors.New("invalid_request")

// Hint is returned instead of an assessment when weight or height is missing.
type Hint struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

var caloricNeedsHint = Hint{
	Title: "Get Accurate Caloric Needs",
	Lines: []string{
		"To get personalized daily calorie intake recommendations based on your health profile, please use the BMI calculator in the sidebar.",
		"By entering your weight, height, gender, age, and activity level, you can receive a tailored caloric intake estimate that suits your lifestyle and health goals.",
	},
}

// AssessmentRequest is the request body for POST /v1/assessment.
type AssessmentRequest struct {
	WeightKg          float64 `json:"weight_kg"`
	HeightM           float64 `json:"height_m"`
	Age               int     `json:"age"`
	Gender            string  `json:"gender"`
	ActivityLevel     string  `json:"activity_level"`
	HealthGoal        string  `json:"health_goal"`
	DietaryPreference string  `json:"dietary_preference"`
}

// Validate rejects negative inputs. Zero weight or height is allowed and
// yields an unassessed response.
func (r *AssessmentRequest) Validate() error {
	if r.WeightKg < 0 {
		return fmt.Errorf("%w: weight_kg must not be negative", ErrInvalidRequest)
	}
	if r.HeightM < 0 {
		return fmt.Errorf("%w: height_m must not be negative", ErrInvalidRequest)
	}
	if r.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrInvalidRequest)
	}
	return nil
}

// Assessment is the response body for POST /v1/assessment.
type Assessment struct {
	Assessed      bool     `json:"assessed"`
	BMI           *float64 `json:"bmi,omitempty"`
	BMICategory   string   `json:"bmi_category,omitempty"`
	DailyCalories *float64 `json:"daily_calories,omitempty"`
	Advice        []string `json:"advice,omitempty"`
	AdviceText    string   `json:"advice_text,omitempty"`
	Hint          *Hint    `json:"hint,omitempty"`
}
