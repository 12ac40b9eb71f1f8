package biometrics

import "strings"

// Gender selects the BMI threshold set and the BMR constant.
type Gender string

const (
	GenderMale        Gender = "Male"
	GenderFemale      Gender = "Female"
	GenderUnspecified Gender = "Unspecified"
)

// Activity is the lifestyle level used to scale BMR into daily calories.
type Activity string

const (
	ActivitySedentary        Activity = "Sedentary"
	ActivityModeratelyActive Activity = "Moderately Active"
	ActivityActive           Activity = "Active"
	ActivityUnknown          Activity = "Unknown"
)

// Category is the BMI classification.
type Category string

const (
	CategoryUnderweight  Category = "Underweight"
	CategoryNormalWeight Category = "Normal weight"
	CategoryOverweight   Category = "Overweight"
	CategoryObesity      Category = "Obesity"
	CategoryUnknown      Category = "Unknown"
)

// Profile holds the biometrics entered by the user. It is read fresh for
// every calculation and never stored.
type Profile struct {
	WeightKg float64
	HeightM  float64
	Age      int
	Gender   Gender
	Activity Activity
}

// BMIResult is the outcome of CalculateBMI. BMI is nil when height <= 0.
type BMIResult struct {
	BMI      *float64
	Category Category
}

// ParseGender maps form labels ("Male", "female") to a Gender.
// Anything else is GenderUnspecified.
func ParseGender(raw string) Gender {
	switch normalizeLabel(raw) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderUnspecified
	}
}

// ParseActivity accepts "Moderately Active", "moderately_active" and
// "ModeratelyActive" style labels.
func ParseActivity(raw string) Activity {
	switch normalizeLabel(raw) {
	case "sedentary":
		return ActivitySedentary
	case "moderatelyactive", "moderate":
		return ActivityModeratelyActive
	case "active":
		return ActivityActive
	default:
		return ActivityUnknown
	}
}

func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
