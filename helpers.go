package advisorflow

import (
	"strings"
	"time"
)

// CalculateBackoff calculates the backoff delay for a retry attempt.
// It supports three strategies:
//   - EXPONENTIAL: baseDelay * 2^(attempt-1)
//   - LINEAR: baseDelay * attempt
//   - NONE: no backoff delay
//
// Returns 0 for attempt 0. Unknown strategies fall back to linear.
func CalculateBackoff(baseDelayMs int, attempt int, strategy BackoffStrategy) time.Duration {
	if attempt <= 0 {
		return 0
	}

	baseDelay := time.Duration(baseDelayMs) * time.Millisecond

	switch strategy {
	case BackoffExponential:
		multiplier := 1 << (attempt - 1)
		return baseDelay * time.Duration(multiplier)
	case BackoffLinear:
		return baseDelay * time.Duration(attempt)
	case BackoffNone:
		return 0
	default:
		return baseDelay * time.Duration(attempt)
	}
}

// normalizeInput trims surrounding whitespace and case-folds
func normalizeInput(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// truncateLabel shortens a label to MaxActionLabelLen runes, ending in "..."
func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= MaxActionLabelLen {
		return label
	}
	return string(runes[:truncatedLabelLen]) + "..."
}
