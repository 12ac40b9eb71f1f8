package meals

const (
	MissingImageMessage  = "Please upload an image or take a photo to proceed."
	UnprocessedMessage   = "The response could not be processed."
	dailyCaloriesNoteFmt = "Note: Your daily caloric needs are approximately %.0f calories."
	goalAlignmentNote    = "Ensure that your daily calorie intake aligns with your health goals."
)

// AnalyzeResponse is returned by POST /v1/meals/analyze.
type AnalyzeResponse struct {
	ID            string   `json:"id"`
	Provider      string   `json:"provider"`
	Response      string   `json:"response"`
	Labels        []string `json:"labels,omitempty"`
	DailyCalories *float64 `json:"daily_calories,omitempty"`
	Notes         []string `json:"notes,omitempty"`
}
