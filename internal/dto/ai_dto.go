package dto

// FormatCheckRequest carries the report text submitted for AI review.
type FormatCheckRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// FormatCheckResponse wraps the opaque analysis report. Report is plain text
// produced by the model and is never parsed server-side; Available is false
// when the report field holds the inline unavailability message instead.
type FormatCheckResponse struct {
	Report    string `json:"report"`
	Available bool   `json:"available"`
}

// TeachingInsightRequest asks for a short pedagogical note on a topic.
type TeachingInsightRequest struct {
	Topic string `json:"topic" validate:"required,min=1,max=255"`
}

// TeachingInsightResponse wraps the generated insight text.
type TeachingInsightResponse struct {
	Insight   string `json:"insight"`
	Available bool   `json:"available"`
}
