package advisorflow

import "time"

// Default command tokens applied when a definition omits them
const (
	DefaultTrigger        = "start"
	DefaultAdvanceCommand = "next"
	DefaultCancelCommand  = "quit"

	// SkipCommand is recognized regardless of definition
	SkipCommand = "skip"
)

// controlTokens carry no content and are left out of collected-answer summaries
var controlTokens = map[string]struct{}{
	DefaultAdvanceCommand: {},
	DefaultTrigger:        {},
	DefaultCancelCommand:  {},
	SkipCommand:           {},
}

// IsControlToken reports whether text is one of the fixed control tokens (case-insensitive)
func IsControlToken(text string) bool {
	_, ok := controlTokens[normalizeInput(text)]
	return ok
}

// Action label limits
const (
	MaxActionLabelLen = 60
	truncatedLabelLen = 57
)

// Labels used for workflow actions and progress readouts
const (
	LabelNextSection   = "Next section →"
	LabelSkip          = "Skip"
	LabelExitModule    = "Exit module"
	LabelStartAnother  = "Start another module"
	LabelCompleteTitle = "Complete!"
)

// BackoffStrategy defines retry backoff behavior
type BackoffStrategy string

const (
	BackoffLinear      BackoffStrategy = "LINEAR"
	BackoffExponential BackoffStrategy = "EXPONENTIAL"
	BackoffNone        BackoffStrategy = "NONE"
)

// RetryConfig holds retry parameters for calls to upstream services
type RetryConfig struct {
	MaxRetries   int
	RetryDelayMs int
	RetryBackoff BackoffStrategy
}

// DefaultRetryConfig provides sensible defaults
var DefaultRetryConfig = RetryConfig{
	MaxRetries:   3,
	RetryDelayMs: 1000,
	RetryBackoff: BackoffExponential,
}

// DefaultCacheTTL bounds how long a raw definition blob is served from cache
const DefaultCacheTTL = 5 * time.Minute
