package biometrics

// band is a half-open BMI range [lower, upper) mapped to a category.
type band struct {
	lower    float64
	upper    float64
	category Category
}

// categoryBands lists the threshold sets side by side. Bands are checked in
// order; a BMI that matches none of them is Obesity. For Male this means the
// 24.9–25 gap classifies as Obesity.
var categoryBands = map[Gender][]band{
	GenderMale: {
		{lower: 0, upper: 18.5, category: CategoryUnderweight},
		{lower: 18.5, upper: 24.9, category: CategoryNormalWeight},
		{lower: 25, upper: 29.9, category: CategoryOverweight},
	},
	GenderFemale: {
		{lower: 0, upper: 19.0, category: CategoryUnderweight},
		{lower: 19.0, upper: 24.0, category: CategoryNormalWeight},
		{lower: 24.0, upper: 29.0, category: CategoryOverweight},
	},
}

// bmrOffsets is the sex constant of the Mifflin-St Jeor equation.
var bmrOffsets = map[Gender]float64{
	GenderMale:   5,
	GenderFemale: -161,
}

// activityMultipliers scale BMR to total daily energy expenditure.
var activityMultipliers = map[Activity]float64{
	ActivitySedentary:        1.2,
	ActivityModeratelyActive: 1.55,
	ActivityActive:           1.9,
}

const defaultActivityMultiplier = 1.2

// CalculateBMI returns weight/height² and its gender-specific category.
// A non-positive height yields a nil BMI and CategoryUnknown.
func CalculateBMI(weightKg, heightM float64, gender Gender) BMIResult {
	if heightM <= 0 {
		return BMIResult{Category: CategoryUnknown}
	}

	bmi := weightKg / (heightM * heightM)
	return BMIResult{
		BMI:      &bmi,
		Category: classify(bmi, gender),
	}
}

func classify(bmi float64, gender Gender) Category {
	bands, ok := categoryBands[gender]
	if !ok {
		return CategoryUnknown
	}

	for i, b := range bands {
		// The first band is open below.
		if (i == 0 || bmi >= b.lower) && bmi < b.upper {
			return b.category
		}
	}
	return CategoryObesity
}

// ActivityMultiplier returns the multiplier for a level, 1.2 when unknown.
func ActivityMultiplier(activity Activity) float64 {
	if m, ok := activityMultipliers[activity]; ok {
		return m
	}
	return defaultActivityMultiplier
}

// BMR is the Mifflin-St Jeor basal metabolic rate with height given in
// meters. It is 0 for an unrecognized gender.
func BMR(weightKg, heightM float64, age int, gender Gender) float64 {
	offset, ok := bmrOffsets[gender]
	if !ok {
		return 0
	}
	// The conversions round each product and rule out fused multiply-add,
	// so results match across architectures.
	return float64(10*weightKg) + float64(6.25*heightM*100) - float64(5*float64(age)) + offset
}

// DailyCalorieNeeds is BMR times the activity multiplier. The result is not
// clamped and can be negative for implausible inputs.
func DailyCalorieNeeds(weightKg, heightM float64, age int, gender Gender, activity Activity) float64 {
	return BMR(weightKg, heightM, age, gender) * ActivityMultiplier(activity)
}

// Assess runs both calculations for a profile.
func Assess(p Profile) (BMIResult, float64) {
	return CalculateBMI(p.WeightKg, p.HeightM, p.Gender),
		DailyCalorieNeeds(p.WeightKg, p.HeightM, p.Age, p.Gender, p.Activity)
}
