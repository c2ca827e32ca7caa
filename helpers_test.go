package advisorflow

import (
	"strings"
	"testing"
	"time"
)

func TestCalculateBackoff_FirstAttempt(t *testing.T) {
	strategies := []BackoffStrategy{BackoffExponential, BackoffLinear, BackoffNone, "unknown"}

	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			delay := CalculateBackoff(100, 0, strategy)
			if delay != 0 {
				t.Errorf("CalculateBackoff(100, 0, %s) = %v, want 0", strategy, delay)
			}
		})
	}
}

func TestCalculateBackoff_Strategies(t *testing.T) {
	tests := []struct {
		name        string
		baseDelayMs int
		attempt     int
		strategy    BackoffStrategy
		want        time.Duration
	}{
		{"exponential 1", 100, 1, BackoffExponential, 100 * time.Millisecond},
		{"exponential 3", 100, 3, BackoffExponential, 400 * time.Millisecond},
		{"exponential 5", 100, 5, BackoffExponential, 1600 * time.Millisecond},
		{"linear 2", 100, 2, BackoffLinear, 200 * time.Millisecond},
		{"linear 5", 50, 5, BackoffLinear, 250 * time.Millisecond},
		{"none", 100, 4, BackoffNone, 0},
		{"unknown defaults to linear", 100, 3, "UNKNOWN", 300 * time.Millisecond},
		{"zero base delay", 0, 3, BackoffExponential, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBackoff(tt.baseDelayMs, tt.attempt, tt.strategy)
			if got != tt.want {
				t.Errorf("CalculateBackoff(%d, %d, %s) = %v, want %v",
					tt.baseDelayMs, tt.attempt, tt.strategy, got, tt.want)
			}
		})
	}
}

func TestTruncateLabel(t *testing.T) {
	short := "What is your monthly revenue?"
	if got := truncateLabel(short); got != short {
		t.Errorf("truncateLabel(short) = %q, want unchanged", got)
	}

	exact := strings.Repeat("a", MaxActionLabelLen)
	if got := truncateLabel(exact); got != exact {
		t.Errorf("truncateLabel(60 chars) should be unchanged, got %q", got)
	}

	long := strings.Repeat("b", MaxActionLabelLen+1)
	got := truncateLabel(long)
	if len([]rune(got)) != MaxActionLabelLen {
		t.Errorf("truncated length = %d, want %d", len([]rune(got)), MaxActionLabelLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated label %q should end with ellipsis", got)
	}
}

func TestIsControlToken(t *testing.T) {
	for _, token := range []string{"next", "START", " quit ", "Skip"} {
		if !IsControlToken(token) {
			t.Errorf("IsControlToken(%q) = false, want true", token)
		}
	}
	for _, text := range []string{"", "next step", "continue", "exit"} {
		if IsControlToken(text) {
			t.Errorf("IsControlToken(%q) = true, want false", text)
		}
	}
}
