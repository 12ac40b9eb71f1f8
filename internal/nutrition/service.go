package nutrition

import (
	"github.com/fdg312/meal-lens/internal/advice"
	"github.com/fdg312/meal-lens/internal/biometrics"
)

// Service combines the biometric calculations with nutrition advice.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Assess validates the request and computes BMI, daily calories and advice.
// When weight or height is not positive nothing is calculated and the
// response carries the caloric needs hint instead.
func (s *Service) Assess(req AssessmentRequest) (Assessment, error) {
	if err := req.Validate(); err != nil {
		return Assessment{}, err
	}

	if req.WeightKg <= 0 || req.HeightM <= 0 {
		hint := caloricNeedsHint
		return Assessment{Assessed: false, Hint: &hint}, nil
	}

	profile := ProfileFromRequest(req)
	bmi, calories := biometrics.Assess(profile)
	lines := advice.Generate(bmi.Category, advice.ParseGoal(req.HealthGoal), advice.ParseDiet(req.DietaryPreference))

	return Assessment{
		Assessed:      true,
		BMI:           bmi.BMI,
		BMICategory:   string(bmi.Category),
		DailyCalories: &calories,
		Advice:        lines,
		AdviceText:    advice.Text(lines),
	}, nil
}

// ProfileFromRequest maps request labels onto a biometric profile.
func ProfileFromRequest(req AssessmentRequest) biometrics.Profile {
	return biometrics.Profile{
		WeightKg: req.WeightKg,
		HeightM:  req.HeightM,
		Age:      req.Age,
		Gender:   biometrics.ParseGender(req.Gender),
		Activity: biometrics.ParseActivity(req.ActivityLevel),
	}
}
