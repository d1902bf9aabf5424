package models

// WeeklySummary is the trailing 7-day aggregate for one user
type WeeklySummary struct {
	AverageSteps    float64 `json:"average_steps"`
	AverageDistance float64 `json:"average_distance"`
	AverageCalories float64 `json:"average_calories"`
	TotalCalories   int     `json:"total_calories"`
}
