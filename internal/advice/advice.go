// Package advice maps a BMI category, health goal and dietary preference to
// nutrition advice lines.
package advice

import (
	"strings"

	"github.com/fdg312/meal-lens/internal/biometrics"
)

// Goal is the user's stated health goal.
type Goal string

const (
	GoalMaintainWeight Goal = "Maintain Weight"
	GoalWeightLoss     Goal = "Weight Loss"
	GoalMuscleGain     Goal = "Muscle Gain"
)

// Diet is the user's dietary preference.
type Diet string

const (
	DietNone       Diet = "None"
	DietVegetarian Diet = "Vegetarian"
	DietVegan      Diet = "Vegan"
	DietGlutenFree Diet = "Gluten-Free"
)

// weightClass groups BMI categories that share goal advice.
type weightClass int

const (
	classNone weightClass = iota
	classLean
	classHeavy
)

var categoryClasses = map[biometrics.Category]weightClass{
	biometrics.CategoryUnderweight:  classLean,
	biometrics.CategoryNormalWeight: classLean,
	biometrics.CategoryOverweight:   classHeavy,
	biometrics.CategoryObesity:      classHeavy,
}

var goalAdvice = map[weightClass]map[Goal]string{
	classLean: {
		GoalWeightLoss: "To lose weight, focus on a balanced diet with a calorie deficit.",
		GoalMuscleGain: "To gain muscle, ensure adequate protein intake and strength training.",
	},
	classHeavy: {
		GoalWeightLoss: "To lose weight, focus on reducing calorie intake and increasing physical activity.",
		GoalMuscleGain: "To gain muscle, incorporate strength training while managing caloric intake.",
	},
}

var dietAdvice = map[Diet]string{
	DietVegetarian: "Include a variety of plant-based proteins and ensure sufficient iron and B12 intake.",
	DietVegan:      "Ensure adequate protein intake and consider supplements for B12 and iron.",
	DietGlutenFree: "Focus on naturally gluten-free grains and avoid processed gluten-free products that may be high in sugar.",
}

// Generate returns goal advice (if any) followed by diet advice (if any).
// An empty slice is a valid result.
func Generate(category biometrics.Category, goal Goal, diet Diet) []string {
	lines := make([]string, 0, 2)

	if msg, ok := goalAdvice[categoryClasses[category]][goal]; ok {
		lines = append(lines, msg)
	}
	if msg, ok := dietAdvice[diet]; ok {
		lines = append(lines, msg)
	}

	return lines
}

// Text joins advice lines one per line.
func Text(lines []string) string {
	return strings.Join(lines, "\n")
}

// ParseGoal accepts "Weight Loss", "weight_loss" and similar labels.
// Unknown input is GoalMaintainWeight.
func ParseGoal(raw string) Goal {
	switch normalize(raw) {
	case "weightloss", "loseweight":
		return GoalWeightLoss
	case "musclegain", "gainmuscle":
		return GoalMuscleGain
	default:
		return GoalMaintainWeight
	}
}

// ParseDiet accepts "Gluten-Free", "gluten_free" and similar labels.
// Unknown input is DietNone.
func ParseDiet(raw string) Diet {
	switch normalize(raw) {
	case "vegetarian":
		return DietVegetarian
	case "vegan":
		return DietVegan
	case "glutenfree":
		return DietGlutenFree
	default:
		return DietNone
	}
}

func normalize(raw string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(raw)))
}
