package ai

import "context"

// FormatChecker performs the academic format review of survey report text.
// CheckFormat returns the model's plain-text Chinese report; callers must
// treat it as an opaque string and never parse its sections.
type FormatChecker interface {
	CheckFormat(ctx context.Context, text string) (string, error)
	TeachingInsight(ctx context.Context, topic string) (string, error)
}
